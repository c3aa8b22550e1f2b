package batcher_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/MasterOfBinary/gochunk"
	"github.com/MasterOfBinary/gochunk/batcher"
)

// doubler is a well-behaved batch function: one result per item.
func doubler(_ context.Context, items []int) ([]int, error) {
	out := make([]int, len(items))
	for i, v := range items {
		out[i] = v * 2
	}
	return out, nil
}

func TestNew_InvalidConfig(t *testing.T) {
	cases := []struct {
		name  string
		fn    batcher.BatchFunc[int, int]
		opts  []batcher.Option
		field string
	}{
		{name: "nil function", fn: nil, field: "BatchFunc"},
		{name: "zero max items", fn: doubler, opts: []batcher.Option{batcher.WithMaxItems(0)}, field: "MaxItems"},
		{name: "zero flush interval", fn: doubler, opts: []batcher.Option{batcher.WithFlushInterval(0)}, field: "FlushInterval"},
		{name: "zero concurrency", fn: doubler, opts: []batcher.Option{batcher.WithMaxConcurrency(0)}, field: "MaxConcurrency"},
		{name: "negative timeout", fn: doubler, opts: []batcher.Option{batcher.WithTimeout(-time.Second)}, field: "Timeout"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := batcher.New(tc.fn, tc.opts...)
			require.Error(t, err)

			var cfgErr *gochunk.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tc.field, cfgErr.Field)
		})
	}
}

func TestSubmit_SingleItemFlushedByInterval(t *testing.T) {
	defer goleak.VerifyNone(t)

	b, err := batcher.New(doubler, batcher.WithFlushInterval(20*time.Millisecond))
	require.NoError(t, err)
	defer b.Close()

	got, err := b.Submit(context.Background(), 21)
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestSubmit_FullBatchCutBySize(t *testing.T) {
	defer goleak.VerifyNone(t)

	var (
		mu    sync.Mutex
		sizes []int
	)
	fn := func(ctx context.Context, items []int) ([]int, error) {
		mu.Lock()
		sizes = append(sizes, len(items))
		mu.Unlock()
		return doubler(ctx, items)
	}

	// The flush interval is far longer than the test: only the size
	// trigger can cut the batch.
	b, err := batcher.New(fn,
		batcher.WithMaxItems(4),
		batcher.WithFlushInterval(10*time.Second),
	)
	require.NoError(t, err)
	defer b.Close()

	results := make(chan int, 4)
	for i := 0; i < 4; i++ {
		go func(v int) {
			got, err := b.Submit(context.Background(), v)
			assert.NoError(t, err)
			results <- got
		}(i)
	}

	var got []int
	for i := 0; i < 4; i++ {
		select {
		case v := <-results:
			got = append(got, v)
		case <-time.After(2 * time.Second):
			t.Fatal("submits did not complete; batch was never cut")
		}
	}

	assert.ElementsMatch(t, []int{0, 2, 4, 6}, got)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{4}, sizes)
}

func TestSubmit_EachCallerGetsOwnResult(t *testing.T) {
	defer goleak.VerifyNone(t)

	b, err := batcher.New(doubler,
		batcher.WithMaxItems(10),
		batcher.WithFlushInterval(10*time.Millisecond),
	)
	require.NoError(t, err)
	defer b.Close()

	const n = 25

	type pair struct{ in, out int }
	results := make(chan pair, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			got, err := b.Submit(context.Background(), v)
			assert.NoError(t, err)
			results <- pair{in: v, out: got}
		}(i)
	}
	wg.Wait()
	close(results)

	count := 0
	for p := range results {
		assert.Equal(t, p.in*2, p.out, "caller %d received someone else's result", p.in)
		count++
	}
	assert.Equal(t, n, count)
}

func TestSubmit_BatchErrorFansOut(t *testing.T) {
	defer goleak.VerifyNone(t)

	cause := errors.New("backend down")
	fn := func(_ context.Context, items []int) ([]int, error) {
		return nil, cause
	}

	b, err := batcher.New(fn,
		batcher.WithMaxItems(3),
		batcher.WithFlushInterval(10*time.Millisecond),
	)
	require.NoError(t, err)
	defer b.Close()

	errs := make(chan error, 3)
	for i := 0; i < 3; i++ {
		go func(v int) {
			_, err := b.Submit(context.Background(), v)
			errs <- err
		}(i)
	}

	for i := 0; i < 3; i++ {
		err := <-errs
		require.Error(t, err)
		assert.True(t, errors.Is(err, cause))

		var chunkErr *gochunk.ChunkError
		assert.ErrorAs(t, err, &chunkErr)
	}
}

func TestSubmit_LengthMismatchFailsBatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	fn := func(_ context.Context, items []int) ([]int, error) {
		return []int{1}, nil
	}

	b, err := batcher.New(fn,
		batcher.WithMaxItems(2),
		batcher.WithFlushInterval(10*time.Millisecond),
	)
	require.NoError(t, err)
	defer b.Close()

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func(v int) {
			_, err := b.Submit(context.Background(), v)
			errs <- err
		}(i)
	}

	for i := 0; i < 2; i++ {
		err := <-errs
		require.Error(t, err)
		assert.Contains(t, err.Error(), "results for")
	}
}

func TestSubmit_Timeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	fn := func(ctx context.Context, items []int) ([]int, error) {
		select {
		case <-time.After(time.Second):
			return doubler(ctx, items)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	b, err := batcher.New(fn,
		batcher.WithFlushInterval(5*time.Millisecond),
		batcher.WithTimeout(30*time.Millisecond),
	)
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Submit(context.Background(), 1)
	require.Error(t, err)

	var timeoutErr *gochunk.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 30*time.Millisecond, timeoutErr.Timeout)
}

func TestSubmit_PanicBecomesError(t *testing.T) {
	defer goleak.VerifyNone(t)

	fn := func(_ context.Context, items []int) ([]int, error) {
		panic("kaboom")
	}

	b, err := batcher.New(fn, batcher.WithFlushInterval(5*time.Millisecond))
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Submit(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
	assert.Contains(t, err.Error(), "kaboom")
}

func TestSubmit_CanceledContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	var (
		mu   sync.Mutex
		seen []int
	)
	fn := func(ctx context.Context, items []int) ([]int, error) {
		mu.Lock()
		seen = append(seen, items...)
		mu.Unlock()
		return doubler(ctx, items)
	}

	b, err := batcher.New(fn, batcher.WithFlushInterval(10*time.Millisecond))
	require.NoError(t, err)
	defer b.Close()

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = b.Submit(canceled, 111)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	// A live submission still works, and the dead request's item never
	// reaches the batch function.
	got, err := b.Submit(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 10, got)

	b.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.NotContains(t, seen, 111)
	assert.Contains(t, seen, 5)
}

func TestClose_FlushesPending(t *testing.T) {
	defer goleak.VerifyNone(t)

	// A huge batch size and interval: only Close can flush these.
	b, err := batcher.New(doubler,
		batcher.WithMaxItems(100),
		batcher.WithFlushInterval(10*time.Second),
	)
	require.NoError(t, err)

	results := make(chan int, 3)
	for i := 0; i < 3; i++ {
		go func(v int) {
			got, err := b.Submit(context.Background(), v)
			assert.NoError(t, err)
			results <- got
		}(i)
	}

	// Give the submissions time to enqueue before closing.
	time.Sleep(50 * time.Millisecond)
	b.Close()

	var got []int
	for i := 0; i < 3; i++ {
		select {
		case v := <-results:
			got = append(got, v)
		case <-time.After(2 * time.Second):
			t.Fatal("pending submits were not flushed by Close")
		}
	}
	assert.ElementsMatch(t, []int{0, 2, 4}, got)
}

func TestSubmit_AfterClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	b, err := batcher.New(doubler)
	require.NoError(t, err)

	b.Close()

	_, err = b.Submit(context.Background(), 1)
	assert.True(t, errors.Is(err, batcher.ErrClosed))
}

func TestClose_Idempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	b, err := batcher.New(doubler)
	require.NoError(t, err)

	b.Close()
	b.Close()
}
