package gochunk

import (
	"context"
	"iter"
	"strings"

	"github.com/samber/lo"
)

// Map applies fn to every element of src and yields the results
// element by element. Elements within a chunk are transformed together
// on one worker, so fn should be cheap relative to chunk size or the
// chunk size should be small.
func (p *Processor[T, R]) Map(ctx context.Context, src iter.Seq[T], fn func(T) R) iter.Seq2[R, error] {
	return p.ProcessFlat(ctx, src, func(_ context.Context, c Chunk[T]) ([]R, error) {
		return lo.Map(c.Items, func(item T, _ int) R {
			return fn(item)
		}), nil
	})
}

// FlatMap applies fn to every element of src and yields the elements of
// each returned slice in order.
func (p *Processor[T, R]) FlatMap(ctx context.Context, src iter.Seq[T], fn func(T) []R) iter.Seq2[R, error] {
	return p.ProcessFlat(ctx, src, func(_ context.Context, c Chunk[T]) ([]R, error) {
		return lo.FlatMap(c.Items, func(item T, _ int) []R {
			return fn(item)
		}), nil
	})
}

// Filter yields the elements of src for which pred is true.
func (p *Processor[T, R]) Filter(ctx context.Context, src iter.Seq[T], pred func(T) bool) iter.Seq2[T, error] {
	q := &Processor[T, T]{opts: p.opts}
	return q.ProcessFlat(ctx, src, func(_ context.Context, c Chunk[T]) ([]T, error) {
		return lo.Filter(c.Items, func(item T, _ int) bool {
			return pred(item)
		}), nil
	})
}

// Reject yields the elements of src for which pred is false.
func (p *Processor[T, R]) Reject(ctx context.Context, src iter.Seq[T], pred func(T) bool) iter.Seq2[T, error] {
	q := &Processor[T, T]{opts: p.opts}
	return q.ProcessFlat(ctx, src, func(_ context.Context, c Chunk[T]) ([]T, error) {
		return lo.Reject(c.Items, func(item T, _ int) bool {
			return pred(item)
		}), nil
	})
}

// Reduce folds fn over each chunk independently and yields one partial
// accumulator per chunk, each seeded with init. The partials are not
// combined into a single value; how to merge them depends on whether fn
// is associative, which only the caller knows.
//
//	sums := p.Reduce(ctx, src, 0, func(acc, n int) int { return acc + n })
//
// yields one per-chunk sum per chunk. Fold the partials yourself for a
// grand total.
func (p *Processor[T, R]) Reduce(ctx context.Context, src iter.Seq[T], init R, fn func(R, T) R) iter.Seq2[R, error] {
	return p.Process(ctx, src, func(_ context.Context, c Chunk[T]) (R, error) {
		return lo.Reduce(c.Items, func(acc R, item T, _ int) R {
			return fn(acc, item)
		}, init), nil
	})
}

// MapJoin applies fn to every element of src and joins the results with
// sep into a single string.
func (p *Processor[T, R]) MapJoin(ctx context.Context, src iter.Seq[T], sep string, fn func(T) string) (string, error) {
	q := &Processor[T, string]{opts: p.opts}
	var parts []string
	for s, err := range q.Map(ctx, src, fn) {
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, sep), nil
}

// All reports whether pred is true for every element of src. It stops
// consuming the source as soon as any chunk contains a false element,
// releasing outstanding work.
func (p *Processor[T, R]) All(ctx context.Context, src iter.Seq[T], pred func(T) bool) (bool, error) {
	q := &Processor[T, bool]{opts: p.opts}
	seq := q.Process(ctx, src, func(_ context.Context, c Chunk[T]) (bool, error) {
		return lo.EveryBy(c.Items, pred), nil
	})
	for ok, err := range seq {
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Any reports whether pred is true for at least one element of src. It
// stops consuming the source as soon as any chunk contains a true
// element.
func (p *Processor[T, R]) Any(ctx context.Context, src iter.Seq[T], pred func(T) bool) (bool, error) {
	q := &Processor[T, bool]{opts: p.opts}
	seq := q.Process(ctx, src, func(_ context.Context, c Chunk[T]) (bool, error) {
		return lo.SomeBy(c.Items, pred), nil
	})
	for ok, err := range seq {
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
