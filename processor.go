package gochunk

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Processor dispatches chunked work to a bounded worker pool and turns
// the completions back into a lazy output sequence. Create one with New.
//
// A Processor is immutable and safe for concurrent use; every call to
// Process, ProcessFlat, or one of the convenience methods starts an
// independent run with its own pool and buffers.
//
//	p, err := gochunk.New[int, int](
//		gochunk.WithChunkSize(25),
//		gochunk.WithMaxConcurrency(8),
//	)
//	if err != nil {
//		// invalid options are reported here, before any work starts
//	}
//	for v, err := range p.Map(ctx, src, square) {
//		...
//	}
//
// Consumption is pull-based: the source is read and units are dispatched
// only while the caller keeps draining the output sequence. Breaking out
// of the range loop abandons the run and releases all in-flight work.
type Processor[T, R any] struct {
	opts Options
}

// New creates a Processor from the given options. Invalid option values
// are reported here as a ConfigError, before any source is consumed.
func New[T, R any](opts ...Option) (*Processor[T, R], error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	if err := o.Validate(); err != nil {
		return nil, err
	}
	o.resolve()

	return &Processor[T, R]{opts: o}, nil
}

// Options returns a copy of the resolved options.
func (p *Processor[T, R]) Options() Options {
	return p.opts
}

// outcome carries one completed unit from the workers to the sequencer.
type outcome[R any] struct {
	idx  int
	vals []R
	err  error
}

// Process dispatches each chunk of src to fn and yields one result per
// chunk, so the output length equals the chunk count, not the source
// length. Results arrive in submission order unless WithOrdered(false)
// was set.
//
// The first chunk failure or timeout terminates the sequence with that
// error unless WithContinueOnError was set, in which case the error is
// yielded in the failed chunk's place and processing continues. An empty
// source yields an empty sequence.
//
// The returned sequence is single-use and forward-only. It can be ranged
// again only if src itself can, and doing so starts a fresh run.
func (p *Processor[T, R]) Process(ctx context.Context, src iter.Seq[T], fn Func[T, R]) iter.Seq2[R, error] {
	if fn == nil {
		return errSeq[R](errors.New("gochunk: nil chunk function"))
	}
	return p.run(ctx, src, func(ctx context.Context, c Chunk[T]) ([]R, error) {
		v, err := fn(ctx, c)
		if err != nil {
			return nil, err
		}
		return []R{v}, nil
	})
}

// ProcessFlat is Process for chunk functions that produce a sequence of
// results: the returned slices are flattened into the output, element by
// element, instead of being emitted as one value per chunk.
func (p *Processor[T, R]) ProcessFlat(ctx context.Context, src iter.Seq[T], fn FlatFunc[T, R]) iter.Seq2[R, error] {
	if fn == nil {
		return errSeq[R](errors.New("gochunk: nil chunk function"))
	}
	return p.run(ctx, src, fn)
}

// errSeq returns a sequence that yields a single error.
func errSeq[R any](err error) iter.Seq2[R, error] {
	return func(yield func(R, error) bool) {
		yield(lo.Empty[R](), err)
	}
}

// run wires the engine together: a feeder goroutine chunks the source and
// submits units to an errgroup limited to MaxConcurrency, workers push
// indexed outcomes onto a buffered channel, and the sequencer drains that
// channel on the consumer's goroutine.
//
// Nothing starts until the returned sequence is ranged. The feeder blocks
// inside eg.Go whenever the pool is at capacity, which is what keeps
// source consumption bounded: at most MaxConcurrency units in flight plus
// BufferSize completed outcomes awaiting the consumer.
func (p *Processor[T, R]) run(ctx context.Context, src iter.Seq[T], fn FlatFunc[T, R]) iter.Seq2[R, error] {
	if ctx == nil {
		ctx = context.Background()
	}
	if src == nil {
		return errSeq[R](errors.New("gochunk: nil source"))
	}

	return func(yield func(R, error) bool) {
		runCtx, cancel := context.WithCancel(ctx)
		eg, egCtx := errgroup.WithContext(runCtx)
		eg.SetLimit(p.opts.MaxConcurrency)

		results := make(chan outcome[R], p.opts.BufferSize)

		go func() {
			defer close(results)

			start := time.Now()
			count := 0
			for chunk := range Chunks(src, p.opts.ChunkSize) {
				if egCtx.Err() != nil {
					break
				}
				c := chunk
				count++
				eg.Go(func() error {
					return p.execute(egCtx, c, fn, results)
				})
			}

			if err := eg.Wait(); err != nil {
				p.opts.Logger.Debug("processing aborted",
					zap.Int("chunks", count),
					zap.Error(err))
				return
			}
			p.opts.Logger.Info("processing complete",
				zap.Int("chunks", count),
				zap.Duration("elapsed", time.Since(start)))
		}()

		defer func() {
			cancel()
			// Wait for the feeder to close the results channel so that
			// no worker outlives the run.
			for range results {
			}
		}()

		var alive bool
		if p.opts.Ordered {
			alive = p.emitOrdered(results, yield)
		} else {
			alive = p.emitUnordered(results, yield)
		}

		// A canceled caller context truncates the output; surface it so
		// the truncation is not mistaken for exhaustion.
		if err := ctx.Err(); err != nil && alive {
			yield(lo.Empty[R](), err)
		}
	}
}

// execute runs one unit of work and reports its outcome. The returned
// error is non-nil exactly when the run must abort: a failure or timeout
// under the fail-fast policy, or a cancellation already in progress.
func (p *Processor[T, R]) execute(ctx context.Context, c Chunk[T], fn FlatFunc[T, R], results chan<- outcome[R]) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.opts.Stats.RecordChunkStart(len(c.Items))
	p.opts.Logger.Debug("chunk dispatched",
		zap.Int("chunk", c.Index),
		zap.Int("size", len(c.Items)))

	start := time.Now()
	vals, err := p.invoke(ctx, c, fn)
	if err == nil {
		p.opts.Stats.RecordChunkComplete(len(c.Items), time.Since(start))
		p.opts.Logger.Debug("chunk complete",
			zap.Int("chunk", c.Index),
			zap.Duration("elapsed", time.Since(start)))
		return p.send(ctx, results, outcome[R]{idx: c.Index, vals: vals})
	}

	var timeoutErr *TimeoutError
	var chunkErr *ChunkError
	switch {
	case errors.As(err, &timeoutErr):
		p.opts.Stats.RecordChunkTimeout()
		p.opts.Logger.Error("chunk timed out",
			zap.Int("chunk", c.Index),
			zap.Duration("timeout", p.opts.Timeout))
	case errors.As(err, &chunkErr):
		p.opts.Stats.RecordChunkError()
		p.opts.Logger.Error("chunk failed",
			zap.Int("chunk", c.Index),
			zap.Error(chunkErr.Err))
	default:
		// Bare context error: the run is already shutting down and this
		// unit is collateral, not a reportable outcome.
		return err
	}

	if sendErr := p.send(ctx, results, outcome[R]{idx: c.Index, err: err}); sendErr != nil {
		return sendErr
	}
	if p.opts.ContinueOnError {
		return nil
	}
	return err
}

// send delivers an outcome unless the run is canceled first.
func (p *Processor[T, R]) send(ctx context.Context, results chan<- outcome[R], out outcome[R]) error {
	select {
	case results <- out:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// invoke applies the timeout policy to one chunk function call. The
// function runs on its own goroutine; if it ignores ctx and keeps
// running past the deadline it is abandoned, not preempted, and its
// goroutine exits whenever the function returns.
//
// The returned error is a *TimeoutError on deadline, a *ChunkError for a
// function failure or panic, or the bare context error when the run was
// canceled around this unit.
func (p *Processor[T, R]) invoke(ctx context.Context, c Chunk[T], fn FlatFunc[T, R]) ([]R, error) {
	callCtx := ctx
	cancel := context.CancelFunc(func() {})
	if p.opts.Timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
	}
	defer cancel()

	type callResult struct {
		vals []R
		err  error
	}

	ch := make(chan callResult, 1)
	go func() {
		vals, err := p.call(callCtx, c, fn)
		ch <- callResult{vals: vals, err: err}
	}()

	select {
	case r := <-ch:
		if r.err == nil {
			return r.vals, nil
		}
		if callCtx.Err() != nil {
			// The deadline or a shutdown raced the function's own
			// error return; classify by the run state.
			return nil, p.abortError(ctx, c)
		}
		return nil, &ChunkError{Index: c.Index, Err: r.err}
	case <-callCtx.Done():
		return nil, p.abortError(ctx, c)
	}
}

// abortError distinguishes a unit timeout from a run-level cancellation.
func (p *Processor[T, R]) abortError(ctx context.Context, c Chunk[T]) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return &TimeoutError{Index: c.Index, Timeout: p.opts.Timeout}
}

// call invokes the chunk function, converting a panic into an error.
func (p *Processor[T, R]) call(ctx context.Context, c Chunk[T], fn FlatFunc[T, R]) (vals []R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("chunk function panicked: %v", r)
		}
	}()
	return fn(ctx, c)
}

// emitOrdered yields outcomes in submission order: outcome i is held back
// until every outcome j < i has been yielded. Completed chunks that
// arrive early are parked in a pending map, so a slow early chunk bounds
// latency but not correctness.
//
// The return value reports whether the consumer is still accepting
// values after the loop ends.
func (p *Processor[T, R]) emitOrdered(results <-chan outcome[R], yield func(R, error) bool) bool {
	pending := make(map[int]outcome[R])
	next := 0
	for out := range results {
		if out.err != nil && !p.opts.ContinueOnError {
			yield(lo.Empty[R](), out.err)
			return false
		}

		pending[out.idx] = out
		for {
			cur, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			if !p.emitOutcome(cur, yield) {
				return false
			}
		}
	}
	return true
}

// emitUnordered yields outcomes as they complete.
func (p *Processor[T, R]) emitUnordered(results <-chan outcome[R], yield func(R, error) bool) bool {
	for out := range results {
		if out.err != nil && !p.opts.ContinueOnError {
			yield(lo.Empty[R](), out.err)
			return false
		}
		if !p.emitOutcome(out, yield) {
			return false
		}
	}
	return true
}

// emitOutcome yields one outcome's values, or its error under the
// lenient policy. It reports whether the consumer wants more.
func (p *Processor[T, R]) emitOutcome(out outcome[R], yield func(R, error) bool) bool {
	if out.err != nil {
		return yield(lo.Empty[R](), out.err)
	}
	for _, v := range out.vals {
		if !yield(v, nil) {
			return false
		}
	}
	return true
}
