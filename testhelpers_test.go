package gochunk_test

import (
	"context"
	"iter"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	. "github.com/MasterOfBinary/gochunk"
)

// sumChunk adds up a chunk's items.
func sumChunk(_ context.Context, c Chunk[int]) (int, error) {
	total := 0
	for _, v := range c.Items {
		total += v
	}
	return total, nil
}

// sleepValue returns a chunk function that sleeps item-value times unit
// before returning the chunk's first item. It honors ctx so abandoned or
// timed-out calls exit promptly.
func sleepValue(unit time.Duration) Func[int, int] {
	return func(ctx context.Context, c Chunk[int]) (int, error) {
		v := c.Items[0]
		select {
		case <-time.After(time.Duration(v) * unit):
			return v, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

// collectValues drains seq, failing the test on any error.
func collectValues[R any](t *testing.T, seq iter.Seq2[R, error]) []R {
	t.Helper()
	var out []R
	for v, err := range seq {
		require.NoError(t, err)
		out = append(out, v)
	}
	return out
}

// collectAll drains seq until its first error.
func collectAll[R any](seq iter.Seq2[R, error]) ([]R, error) {
	var out []R
	for v, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

// countingSeq counts how many elements pass through a wrapped sequence.
type countingSeq struct {
	pulled atomic.Int64
}

func (c *countingSeq) wrap(src iter.Seq[int]) iter.Seq[int] {
	return func(yield func(int) bool) {
		for v := range src {
			c.pulled.Add(1)
			if !yield(v) {
				return
			}
		}
	}
}

// gate tracks how many chunk functions are running at once.
type gate struct {
	cur  atomic.Int32
	peak atomic.Int32
}

func (g *gate) enter() {
	cur := g.cur.Add(1)
	for {
		peak := g.peak.Load()
		if cur <= peak || g.peak.CompareAndSwap(peak, cur) {
			return
		}
	}
}

func (g *gate) exit() {
	g.cur.Add(-1)
}

func (g *gate) highWater() int {
	return int(g.peak.Load())
}
