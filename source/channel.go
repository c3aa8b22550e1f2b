package source

import (
	"context"
	"iter"
)

// Channel returns a sequence that yields values received from ch until
// ch is closed or ctx is done. A nil ctx behaves like
// context.Background.
//
// The ctx matters when the consumer may walk away: a plain channel range
// would block forever on a quiet channel, while this sequence can be
// unblocked by canceling ctx. Values already buffered in ch when ctx is
// canceled are not drained.
func Channel[T any](ctx context.Context, ch <-chan T) iter.Seq[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	return func(yield func(T) bool) {
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-ch:
				if !ok {
					return
				}
				if !yield(v) {
					return
				}
			}
		}
	}
}
