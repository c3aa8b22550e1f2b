package gochunk

import (
	"context"
	"iter"
)

// Chunk is a contiguous group of source elements processed as one unit of
// work. Index is the chunk's position in submission order, starting at
// zero. Only the final chunk of a finite source may hold fewer than the
// configured chunk size.
type Chunk[T any] struct {
	Index int
	Items []T
}

// Func processes one chunk and produces a single result. The processor
// treats it as an opaque, potentially slow, potentially failing operation:
// it is never retried, and it cannot be preempted. ctx is canceled when
// the unit times out or the run is aborted, and a well-behaved function
// returns promptly after that.
type Func[T, R any] func(ctx context.Context, chunk Chunk[T]) (R, error)

// FlatFunc processes one chunk and produces a sequence of results that
// are emitted individually on the output sequence. The ctx contract is
// the same as for Func.
type FlatFunc[T, R any] func(ctx context.Context, chunk Chunk[T]) ([]R, error)

// Chunks partitions src into chunks of up to size elements. The returned
// sequence is lazy and forward-only: src is pulled only as far as needed
// to fill the next chunk, so it is safe to chunk an unbounded source. A
// non-positive size yields nothing.
func Chunks[T any](src iter.Seq[T], size int) iter.Seq[Chunk[T]] {
	return func(yield func(Chunk[T]) bool) {
		if size <= 0 {
			return
		}

		buf := make([]T, 0, size)
		idx := 0
		for v := range src {
			buf = append(buf, v)
			if len(buf) < size {
				continue
			}
			if !yield(Chunk[T]{Index: idx, Items: buf}) {
				return
			}
			idx++
			buf = make([]T, 0, size)
		}

		if len(buf) > 0 {
			yield(Chunk[T]{Index: idx, Items: buf})
		}
	}
}
