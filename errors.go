package gochunk

import (
	"fmt"
	"time"
)

// ConfigError is returned when an option value is invalid. It is always
// returned synchronously, from New or Validate, before any work is
// dispatched.
type ConfigError struct {
	Field  string
	Reason string
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// ChunkError is returned when the chunk function fails. Index identifies
// the chunk in submission order, and Unwrap exposes the original error.
type ChunkError struct {
	Index int
	Err   error
}

func (e ChunkError) Error() string {
	return fmt.Sprintf("chunk %d: %v", e.Index, e.Err)
}

func (e ChunkError) Unwrap() error {
	return e.Err
}

// TimeoutError is returned when a chunk does not complete within the
// configured timeout. Index identifies the chunk in submission order.
// A timeout carries the same severity as a ChunkError but is reported as
// a distinct kind.
type TimeoutError struct {
	Index   int
	Timeout time.Duration
}

func (e TimeoutError) Error() string {
	return fmt.Sprintf("chunk %d: timed out after %v", e.Index, e.Timeout)
}
