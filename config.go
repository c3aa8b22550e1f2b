package gochunk

import (
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
)

// Options contains the configuration for a Processor. New resolves the
// options once, validates them, and the result is immutable for the
// lifetime of the Processor.
//
// The zero value is not usable directly; construct a Processor with New,
// which starts from the defaults below before applying Option functions.
type Options struct {
	// ChunkSize is the number of source elements collected into one unit
	// of work. Must be positive. The default is DefaultChunkSize.
	ChunkSize int

	// MaxConcurrency caps the number of units of work in flight at once.
	// Must be positive. The default is the host parallelism,
	// runtime.GOMAXPROCS(0).
	MaxConcurrency int

	// Timeout is the maximum wall time for a single unit of work. When a
	// unit exceeds it, the run aborts with a TimeoutError carrying the
	// chunk index. Zero disables the limit; negative values are
	// rejected. The default is DefaultTimeout.
	Timeout time.Duration

	// Ordered controls output emission. When true, results are emitted
	// in chunk submission order even if later chunks finish first, with
	// later completions buffered until their turn. When false, results
	// are emitted in completion order, trading ordering for latency.
	// The default is true.
	Ordered bool

	// ContinueOnError selects the lenient failure policy: a failed or
	// timed-out chunk is reported inline on the output sequence and
	// processing continues with the remaining chunks. When false, the
	// first failure aborts the whole run. The default is false.
	ContinueOnError bool

	// BufferSize is the capacity of the completed-result buffer between
	// the workers and the output sequence. Zero means MaxConcurrency;
	// negative values are rejected.
	BufferSize int

	// Logger receives structured progress and failure events. Defaults
	// to a no-op logger.
	Logger *zap.Logger

	// Stats collects processing metrics. Defaults to NoOpStatsCollector.
	Stats StatsCollector
}

// Option modifies Options before validation.
type Option func(*Options)

// WithChunkSize sets the number of source elements per unit of work.
func WithChunkSize(size int) Option {
	return func(o *Options) {
		o.ChunkSize = size
	}
}

// WithMaxConcurrency caps the number of chunks processed in parallel.
func WithMaxConcurrency(n int) Option {
	return func(o *Options) {
		o.MaxConcurrency = n
	}
}

// WithTimeout sets the wall-time limit for one unit of work. Zero
// disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithOrdered selects between submission-order output (true) and
// completion-order output (false).
func WithOrdered(ordered bool) Option {
	return func(o *Options) {
		o.Ordered = ordered
	}
}

// WithContinueOnError selects between aborting on the first chunk
// failure (false) and reporting failures inline on the output sequence
// while processing continues (true).
func WithContinueOnError(on bool) Option {
	return func(o *Options) {
		o.ContinueOnError = on
	}
}

// WithBufferSize sets the capacity of the completed-result buffer.
func WithBufferSize(n int) Option {
	return func(o *Options) {
		o.BufferSize = n
	}
}

// WithLogger sets the logger for progress and failure events.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithStats sets the collector that receives processing metrics.
func WithStats(stats StatsCollector) Option {
	return func(o *Options) {
		o.Stats = stats
	}
}

// defaultOptions returns the starting point New applies Option functions
// to.
func defaultOptions() Options {
	return Options{
		ChunkSize:      DefaultChunkSize,
		MaxConcurrency: runtime.GOMAXPROCS(0),
		Timeout:        DefaultTimeout,
		Ordered:        true,
	}
}

// Validate checks the option values and returns a ConfigError naming the
// first offending field. It is called by New; callers only need it when
// assembling an Options value by hand.
func (o *Options) Validate() error {
	if o.ChunkSize <= 0 {
		return &ConfigError{
			Field:  "ChunkSize",
			Reason: fmt.Sprintf("must be positive, got %d", o.ChunkSize),
		}
	}
	if o.MaxConcurrency <= 0 {
		return &ConfigError{
			Field:  "MaxConcurrency",
			Reason: fmt.Sprintf("must be positive, got %d", o.MaxConcurrency),
		}
	}
	if o.Timeout < 0 {
		return &ConfigError{
			Field:  "Timeout",
			Reason: fmt.Sprintf("must not be negative, got %v", o.Timeout),
		}
	}
	if o.BufferSize < 0 {
		return &ConfigError{
			Field:  "BufferSize",
			Reason: fmt.Sprintf("must not be negative, got %d", o.BufferSize),
		}
	}
	return nil
}

// resolve fills the run-time fallbacks that Validate allows to be unset.
func (o *Options) resolve() {
	if o.BufferSize == 0 {
		o.BufferSize = o.MaxConcurrency
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Stats == nil {
		o.Stats = &NoOpStatsCollector{}
	}
}
