package source

import "iter"

// Slice returns a sequence over the elements of items in order. The
// slice is not copied; the sequence can be ranged any number of times.
func Slice[T any](items []T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range items {
			if !yield(v) {
				return
			}
		}
	}
}

// Empty returns a sequence that yields nothing.
func Empty[T any]() iter.Seq[T] {
	return func(yield func(T) bool) {}
}

// Collect drains src into a slice. It does not return until src is
// exhausted, so do not call it on an infinite sequence without Take.
func Collect[T any](src iter.Seq[T]) []T {
	var out []T
	for v := range src {
		out = append(out, v)
	}
	return out
}
