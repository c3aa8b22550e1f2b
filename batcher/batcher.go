package batcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MasterOfBinary/gochunk"
)

// ErrClosed is returned by Submit after Close has been called.
var ErrClosed = errors.New("batcher: closed")

// BatchFunc performs one batched operation. It must return exactly one
// result per input item, in input order; any other length fails the
// batch for every caller in it.
type BatchFunc[T, R any] func(ctx context.Context, items []T) ([]R, error)

// Batcher groups individually submitted items into batches and runs a
// BatchFunc over each batch. Create one with New and release it with
// Close.
type Batcher[T, R any] struct {
	fn   BatchFunc[T, R]
	opts Options

	// mu guards input against Submit racing Close.
	mu     sync.RWMutex
	input  chan *request[T, R]
	closed bool

	done chan struct{}
	seq  atomic.Int64
}

// request is one caller's item waiting for its batched result.
type request[T, R any] struct {
	ctx  context.Context
	item T
	resp chan response[R]
}

type response[R any] struct {
	val R
	err error
}

// reply never blocks; the response channel is buffered and a caller that
// gave up stops reading it.
func (r *request[T, R]) reply(resp response[R]) {
	select {
	case r.resp <- resp:
	default:
	}
}

// New creates a Batcher running fn over cut batches. Option validation
// happens here, before any goroutine starts.
func New[T, R any](fn BatchFunc[T, R], opts ...Option) (*Batcher[T, R], error) {
	if fn == nil {
		return nil, &gochunk.ConfigError{Field: "BatchFunc", Reason: "must not be nil"}
	}

	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	o.resolve()

	b := &Batcher[T, R]{
		fn:    fn,
		opts:  o,
		input: make(chan *request[T, R], o.MaxItems),
		done:  make(chan struct{}),
	}
	go b.run()
	return b, nil
}

// Submit enqueues item and blocks until its batch completes or ctx is
// done. Concurrent Submit calls are batched together. A nil ctx behaves
// like context.Background.
func (b *Batcher[T, R]) Submit(ctx context.Context, item T) (R, error) {
	var zero R

	if ctx == nil {
		ctx = context.Background()
	}

	req := &request[T, R]{
		ctx:  ctx,
		item: item,
		resp: make(chan response[R], 1),
	}

	// The send happens under the read lock so that Close cannot close
	// the input channel between the closed check and the send.
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return zero, ErrClosed
	}
	select {
	case b.input <- req:
		b.mu.RUnlock()
	case <-ctx.Done():
		b.mu.RUnlock()
		return zero, ctx.Err()
	}

	select {
	case resp := <-req.resp:
		return resp.val, resp.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Close stops intake, flushes queued requests, and waits for in-flight
// batches to finish. It is safe to call more than once. Submit calls
// after Close return ErrClosed.
func (b *Batcher[T, R]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	close(b.input)
	<-b.done
}

// run is the collection loop: it accumulates requests until the batch is
// full or the flush interval expires, then hands the batch to the pool.
func (b *Batcher[T, R]) run() {
	defer close(b.done)

	eg := new(errgroup.Group)
	eg.SetLimit(b.opts.MaxConcurrency)

	var (
		pending []*request[T, R]
		flush   <-chan time.Time
	)

	dispatch := func() {
		if len(pending) == 0 {
			return
		}
		reqs := pending
		pending = nil
		flush = nil
		eg.Go(func() error {
			b.execute(reqs)
			return nil
		})
	}

	for {
		select {
		case req, ok := <-b.input:
			if !ok {
				dispatch()
				// Batch errors are delivered to the waiting callers,
				// so the group itself never carries one.
				_ = eg.Wait()
				b.opts.Logger.Info("batcher stopped",
					zap.Int64("batches", b.seq.Load()))
				return
			}
			pending = append(pending, req)
			if len(pending) == 1 {
				flush = time.After(b.opts.FlushInterval)
			}
			if len(pending) >= b.opts.MaxItems {
				dispatch()
			}
		case <-flush:
			dispatch()
		}
	}
}

// execute runs one batch and fans the outcome out to its requests.
// Requests whose context is already done are answered with that error
// and excluded from the batch.
func (b *Batcher[T, R]) execute(reqs []*request[T, R]) {
	active := make([]*request[T, R], 0, len(reqs))
	for _, req := range reqs {
		if err := req.ctx.Err(); err != nil {
			req.reply(response[R]{err: err})
			continue
		}
		active = append(active, req)
	}
	if len(active) == 0 {
		return
	}

	items := lo.Map(active, func(r *request[T, R], _ int) T {
		return r.item
	})
	idx := int(b.seq.Add(1) - 1)

	b.opts.Stats.RecordChunkStart(len(items))
	b.opts.Logger.Debug("batch dispatched",
		zap.Int("batch", idx),
		zap.Int("size", len(items)))

	start := time.Now()
	vals, err := b.invoke(idx, items)
	if err == nil && len(vals) != len(active) {
		err = &gochunk.ChunkError{
			Index: idx,
			Err:   fmt.Errorf("batcher: %d results for %d items", len(vals), len(active)),
		}
	}

	if err != nil {
		var timeoutErr *gochunk.TimeoutError
		if errors.As(err, &timeoutErr) {
			b.opts.Stats.RecordChunkTimeout()
			b.opts.Logger.Error("batch timed out",
				zap.Int("batch", idx),
				zap.Duration("timeout", b.opts.Timeout))
		} else {
			b.opts.Stats.RecordChunkError()
			b.opts.Logger.Error("batch failed",
				zap.Int("batch", idx),
				zap.Error(err))
		}
		for _, req := range active {
			req.reply(response[R]{err: err})
		}
		return
	}

	b.opts.Stats.RecordChunkComplete(len(items), time.Since(start))
	b.opts.Logger.Debug("batch complete",
		zap.Int("batch", idx),
		zap.Duration("elapsed", time.Since(start)))

	for i, req := range active {
		req.reply(response[R]{val: vals[i]})
	}
}

// invoke applies the per-batch timeout. Like the chunk processor, a
// function that ignores its context is abandoned at the deadline, not
// preempted.
func (b *Batcher[T, R]) invoke(idx int, items []T) ([]R, error) {
	ctx := context.Background()
	cancel := context.CancelFunc(func() {})
	if b.opts.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, b.opts.Timeout)
	}
	defer cancel()

	type callResult struct {
		vals []R
		err  error
	}

	ch := make(chan callResult, 1)
	go func() {
		vals, err := b.call(ctx, items)
		ch <- callResult{vals: vals, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, &gochunk.ChunkError{Index: idx, Err: r.err}
		}
		return r.vals, nil
	case <-ctx.Done():
		return nil, &gochunk.TimeoutError{Index: idx, Timeout: b.opts.Timeout}
	}
}

// call invokes the batch function, converting a panic into an error.
func (b *Batcher[T, R]) call(ctx context.Context, items []T) (vals []R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("batch function panicked: %v", r)
		}
	}()
	return b.fn(ctx, items)
}
