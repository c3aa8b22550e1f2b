package gochunk

import (
	"sync"
	"sync/atomic"
	"time"
)

// StatsCollector defines the interface for collecting metrics while
// chunks are processed. Implementations can keep metrics in memory or
// forward them to monitoring systems. The StatsCollector is optional; if
// not provided, no statistics are collected.
type StatsCollector interface {
	// RecordChunkStart is called when a unit of work begins executing.
	RecordChunkStart(size int)

	// RecordChunkComplete is called when a unit of work finishes
	// successfully. duration is the time the chunk function took.
	RecordChunkComplete(size int, duration time.Duration)

	// RecordChunkError is called when the chunk function fails.
	RecordChunkError()

	// RecordChunkTimeout is called when a unit of work exceeds the
	// configured timeout.
	RecordChunkTimeout()

	// GetStats returns a snapshot of the current statistics.
	GetStats() Stats
}

// Stats holds aggregated statistics about chunk processing.
type Stats struct {
	// ChunksStarted is the total number of chunks that began executing.
	ChunksStarted uint64

	// ChunksCompleted is the total number of chunks that finished
	// successfully.
	ChunksCompleted uint64

	// ItemsProcessed is the total number of source elements in completed
	// chunks.
	ItemsProcessed uint64

	// ChunkErrors is the total number of chunks whose function failed.
	ChunkErrors uint64

	// ChunkTimeouts is the total number of chunks that exceeded the
	// timeout.
	ChunkTimeouts uint64

	// TotalProcessingTime is the cumulative execution time of completed
	// chunks.
	TotalProcessingTime time.Duration

	// MinChunkTime is the shortest completed chunk execution.
	MinChunkTime time.Duration

	// MaxChunkTime is the longest completed chunk execution.
	MaxChunkTime time.Duration

	// MinChunkSize is the smallest chunk that began executing.
	MinChunkSize int

	// MaxChunkSize is the largest chunk that began executing.
	MaxChunkSize int

	// StartTime is when statistics collection began.
	StartTime time.Time

	// LastUpdateTime is when statistics were last updated.
	LastUpdateTime time.Time
}

// NoOpStatsCollector is a stats collector that discards all metrics. It
// is the default collector when none is specified.
type NoOpStatsCollector struct{}

// RecordChunkStart implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordChunkStart(size int) {}

// RecordChunkComplete implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordChunkComplete(size int, duration time.Duration) {}

// RecordChunkError implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordChunkError() {}

// RecordChunkTimeout implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordChunkTimeout() {}

// GetStats implements the StatsCollector interface.
func (n *NoOpStatsCollector) GetStats() Stats {
	return Stats{}
}

// BasicStatsCollector is a simple in-memory implementation of
// StatsCollector. All operations are safe for concurrent use.
type BasicStatsCollector struct {
	mu    sync.RWMutex
	stats Stats

	// Atomic counters for lock-free updates
	chunksStarted   uint64
	chunksCompleted uint64
	itemsProcessed  uint64
	chunkErrors     uint64
	chunkTimeouts   uint64
}

// NewBasicStatsCollector creates a new BasicStatsCollector.
func NewBasicStatsCollector() *BasicStatsCollector {
	return &BasicStatsCollector{
		stats: Stats{
			StartTime:      time.Now(),
			LastUpdateTime: time.Now(),
			MinChunkTime:   time.Duration(1<<63 - 1), // Max duration as initial value
		},
	}
}

// RecordChunkStart implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordChunkStart(size int) {
	atomic.AddUint64(&b.chunksStarted, 1)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.stats.LastUpdateTime = time.Now()

	if size < b.stats.MinChunkSize || b.stats.MinChunkSize == 0 {
		b.stats.MinChunkSize = size
	}
	if size > b.stats.MaxChunkSize {
		b.stats.MaxChunkSize = size
	}
}

// RecordChunkComplete implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordChunkComplete(size int, duration time.Duration) {
	atomic.AddUint64(&b.chunksCompleted, 1)
	atomic.AddUint64(&b.itemsProcessed, uint64(size))

	b.mu.Lock()
	defer b.mu.Unlock()

	b.stats.LastUpdateTime = time.Now()
	b.stats.TotalProcessingTime += duration

	if duration < b.stats.MinChunkTime {
		b.stats.MinChunkTime = duration
	}
	if duration > b.stats.MaxChunkTime {
		b.stats.MaxChunkTime = duration
	}
}

// RecordChunkError implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordChunkError() {
	atomic.AddUint64(&b.chunkErrors, 1)
}

// RecordChunkTimeout implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordChunkTimeout() {
	atomic.AddUint64(&b.chunkTimeouts, 1)
}

// GetStats implements the StatsCollector interface. It returns a snapshot
// of the current statistics.
func (b *BasicStatsCollector) GetStats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	// Copy the stats and fold in the atomic counters
	stats := b.stats
	stats.ChunksStarted = atomic.LoadUint64(&b.chunksStarted)
	stats.ChunksCompleted = atomic.LoadUint64(&b.chunksCompleted)
	stats.ItemsProcessed = atomic.LoadUint64(&b.itemsProcessed)
	stats.ChunkErrors = atomic.LoadUint64(&b.chunkErrors)
	stats.ChunkTimeouts = atomic.LoadUint64(&b.chunkTimeouts)

	// Fix min chunk time if no chunks completed
	if stats.ChunksCompleted == 0 {
		stats.MinChunkTime = 0
	}

	return stats
}

// AverageChunkTime returns the average execution time of completed
// chunks. It returns 0 if no chunks have completed.
func (s *Stats) AverageChunkTime() time.Duration {
	if s.ChunksCompleted == 0 {
		return 0
	}
	return s.TotalProcessingTime / time.Duration(s.ChunksCompleted)
}

// AverageChunkSize returns the average size of completed chunks. It
// returns 0 if no chunks have completed.
func (s *Stats) AverageChunkSize() float64 {
	if s.ChunksCompleted == 0 {
		return 0
	}
	return float64(s.ItemsProcessed) / float64(s.ChunksCompleted)
}

// ErrorRate returns the percentage of started chunks that failed or
// timed out. It returns 0 if no chunks have started.
func (s *Stats) ErrorRate() float64 {
	if s.ChunksStarted == 0 {
		return 0
	}
	failed := s.ChunkErrors + s.ChunkTimeouts
	return float64(failed) / float64(s.ChunksStarted) * 100
}

// Duration returns the time between the first and the most recent
// statistics update.
func (s *Stats) Duration() time.Duration {
	return s.LastUpdateTime.Sub(s.StartTime)
}
