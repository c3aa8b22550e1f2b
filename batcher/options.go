package batcher

import (
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/MasterOfBinary/gochunk"
)

// Default option values used by New when not overridden.
const (
	DefaultMaxItems      = 10
	DefaultFlushInterval = 50 * time.Millisecond
)

// Options configures a Batcher.
type Options struct {
	// MaxItems is the batch size at which a batch is cut immediately.
	MaxItems int

	// FlushInterval bounds how long the first item of a batch waits
	// before the batch is cut short.
	FlushInterval time.Duration

	// MaxConcurrency limits how many batches run at once. Defaults to
	// the host's parallelism.
	MaxConcurrency int

	// Timeout is the per-batch deadline. Zero disables the deadline.
	Timeout time.Duration

	// Logger receives lifecycle and per-batch events. Defaults to a
	// no-op logger.
	Logger *zap.Logger

	// Stats collects per-batch metrics. Defaults to no collection.
	Stats gochunk.StatsCollector
}

// Option mutates Options during New.
type Option func(*Options)

// WithMaxItems sets the batch size.
func WithMaxItems(n int) Option {
	return func(o *Options) { o.MaxItems = n }
}

// WithFlushInterval sets the partial-batch flush interval.
func WithFlushInterval(d time.Duration) Option {
	return func(o *Options) { o.FlushInterval = d }
}

// WithMaxConcurrency sets the batch concurrency limit.
func WithMaxConcurrency(n int) Option {
	return func(o *Options) { o.MaxConcurrency = n }
}

// WithTimeout sets the per-batch deadline. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithStats sets the stats collector.
func WithStats(s gochunk.StatsCollector) Option {
	return func(o *Options) { o.Stats = s }
}

func defaultOptions() Options {
	return Options{
		MaxItems:       DefaultMaxItems,
		FlushInterval:  DefaultFlushInterval,
		MaxConcurrency: runtime.GOMAXPROCS(0),
		Timeout:        gochunk.DefaultTimeout,
	}
}

func (o *Options) validate() error {
	if o.MaxItems <= 0 {
		return &gochunk.ConfigError{
			Field:  "MaxItems",
			Reason: fmt.Sprintf("must be positive, got %d", o.MaxItems),
		}
	}
	if o.FlushInterval <= 0 {
		return &gochunk.ConfigError{
			Field:  "FlushInterval",
			Reason: fmt.Sprintf("must be positive, got %v", o.FlushInterval),
		}
	}
	if o.MaxConcurrency <= 0 {
		return &gochunk.ConfigError{
			Field:  "MaxConcurrency",
			Reason: fmt.Sprintf("must be positive, got %d", o.MaxConcurrency),
		}
	}
	if o.Timeout < 0 {
		return &gochunk.ConfigError{
			Field:  "Timeout",
			Reason: fmt.Sprintf("must not be negative, got %v", o.Timeout),
		}
	}
	return nil
}

func (o *Options) resolve() {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Stats == nil {
		o.Stats = &gochunk.NoOpStatsCollector{}
	}
}
