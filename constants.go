package gochunk

import "time"

// Default option values applied by New when not overridden.
// See Options for the meaning of each setting.
const (
	// DefaultChunkSize is the number of source elements collected into
	// one unit of work.
	DefaultChunkSize = 10

	// DefaultTimeout is the maximum wall time allotted to a single unit
	// of work before the run is aborted.
	DefaultTimeout = 5 * time.Second
)
