package gochunk

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// fileOptions mirrors the TOML schema accepted by LoadOptions.
type fileOptions struct {
	ChunkSize       int  `toml:"chunk_size"`
	MaxConcurrency  int  `toml:"max_concurrency"`
	TimeoutMS       int  `toml:"timeout_ms"`
	Ordered         bool `toml:"ordered"`
	ContinueOnError bool `toml:"continue_on_error"`
	BufferSize      int  `toml:"buffer_size"`
}

// LoadOptions reads processor options from a TOML file. Keys that are
// absent keep their defaults; unknown keys are rejected so a typo cannot
// silently configure nothing.
//
//	chunk_size      = 25
//	max_concurrency = 8
//	timeout_ms      = 2000
//	ordered         = false
//
// The returned options are not validated here; pass them to New, which
// validates the combined result.
func LoadOptions(path string) ([]Option, error) {
	var raw fileOptions
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("load options: %w", err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, &ConfigError{
			Field:  undecoded[0].String(),
			Reason: "unknown key",
		}
	}

	var opts []Option
	if meta.IsDefined("chunk_size") {
		opts = append(opts, WithChunkSize(raw.ChunkSize))
	}
	if meta.IsDefined("max_concurrency") {
		opts = append(opts, WithMaxConcurrency(raw.MaxConcurrency))
	}
	if meta.IsDefined("timeout_ms") {
		opts = append(opts, WithTimeout(time.Duration(raw.TimeoutMS)*time.Millisecond))
	}
	if meta.IsDefined("ordered") {
		opts = append(opts, WithOrdered(raw.Ordered))
	}
	if meta.IsDefined("continue_on_error") {
		opts = append(opts, WithContinueOnError(raw.ContinueOnError))
	}
	if meta.IsDefined("buffer_size") {
		opts = append(opts, WithBufferSize(raw.BufferSize))
	}
	return opts, nil
}
