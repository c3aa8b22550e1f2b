// Package result provides a small success-or-error container and the
// combinators needed to thread fallible values through transformation
// chains without intermediate error checks at every step.
//
// The package complements the processor's (value, error) sequences: the
// Collect bridge drains one of those sequences into a single Result, and
// Traverse and Sequence lift slice-shaped work into the same shape.
package result

import "iter"

// Result holds either a value or an error, never both. The zero value
// is Ok with the zero value of T.
type Result[T any] struct {
	value T
	err   error
}

// Ok returns a successful Result carrying v.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Err returns a failed Result carrying err. A nil err produces Ok with
// the zero value of T.
func Err[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// From converts an ordinary (value, error) return into a Result.
func From[T any](v T, err error) Result[T] {
	if err != nil {
		return Err[T](err)
	}
	return Ok(v)
}

// IsOk reports whether the Result holds a value.
func (r Result[T]) IsOk() bool {
	return r.err == nil
}

// IsErr reports whether the Result holds an error.
func (r Result[T]) IsErr() bool {
	return r.err != nil
}

// Value returns the held value, or the zero value of T if the Result is
// an error.
func (r Result[T]) Value() T {
	return r.value
}

// ErrValue returns the held error, or nil if the Result is a value.
func (r Result[T]) ErrValue() error {
	return r.err
}

// Unpack returns the Result as an ordinary (value, error) pair.
func (r Result[T]) Unpack() (T, error) {
	return r.value, r.err
}

// OrElse returns the held value, or fallback if the Result is an error.
func (r Result[T]) OrElse(fallback T) T {
	if r.err != nil {
		return fallback
	}
	return r.value
}

// Map applies fn to the value of r. An error Result passes through
// unchanged. Methods cannot introduce type parameters, so Map and the
// other combinators are free functions.
func Map[T, R any](r Result[T], fn func(T) R) Result[R] {
	if r.err != nil {
		return Err[R](r.err)
	}
	return Ok(fn(r.value))
}

// FlatMap applies a Result-returning fn to the value of r, collapsing
// the nesting. An error Result passes through unchanged.
func FlatMap[T, R any](r Result[T], fn func(T) Result[R]) Result[R] {
	if r.err != nil {
		return Err[R](r.err)
	}
	return fn(r.value)
}

// Fold reduces a Result to a single value by applying onOk or onErr.
func Fold[T, A any](r Result[T], onOk func(T) A, onErr func(error) A) A {
	if r.err != nil {
		return onErr(r.err)
	}
	return onOk(r.value)
}

// Sequence turns a slice of Results into a Result of a slice. The first
// error encountered wins and the values are discarded.
func Sequence[T any](rs []Result[T]) Result[[]T] {
	out := make([]T, 0, len(rs))
	for _, r := range rs {
		if r.err != nil {
			return Err[[]T](r.err)
		}
		out = append(out, r.value)
	}
	return Ok(out)
}

// Traverse applies fn to every element of xs and collects the values,
// stopping at the first error.
func Traverse[T, R any](xs []T, fn func(T) Result[R]) Result[[]R] {
	out := make([]R, 0, len(xs))
	for _, x := range xs {
		r := fn(x)
		if r.err != nil {
			return Err[[]R](r.err)
		}
		out = append(out, r.value)
	}
	return Ok(out)
}

// Collect drains a (value, error) sequence into one Result, stopping at
// the first error. It is the bridge from a processor output sequence to
// a single value:
//
//	res := result.Collect(p.Map(ctx, src, fn))
func Collect[T any](seq iter.Seq2[T, error]) Result[[]T] {
	var out []T
	for v, err := range seq {
		if err != nil {
			return Err[[]T](err)
		}
		out = append(out, v)
	}
	return Ok(out)
}
