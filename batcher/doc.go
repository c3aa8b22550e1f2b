// Package batcher provides a synchronous, blocking API for operations
// that are batched behind the scenes. Callers submit one item at a time
// and block for that item's result; concurrent submissions are grouped
// into batches by size and time, and each batch is handed to a single
// user function.
//
// A batch is cut when it reaches MaxItems or when FlushInterval elapses
// after its first item arrived, whichever comes first, so a lone caller
// is never stuck waiting for company. Cut batches run on a pool bounded
// by MaxConcurrency with a per-batch timeout, the same dispatch
// discipline the gochunk processor applies to chunks.
//
// Basic usage:
//
//	// A function that performs the batched operation.
//	lookup := func(ctx context.Context, ids []string) ([]User, error) {
//		return db.GetUsers(ctx, ids)
//	}
//
//	b, err := batcher.New(lookup,
//		batcher.WithMaxItems(25),
//		batcher.WithFlushInterval(20*time.Millisecond),
//	)
//	if err != nil {
//		// invalid options
//	}
//	defer b.Close()
//
//	// Calls from many goroutines are batched together.
//	user, err := b.Submit(ctx, "user-42")
//
// Results correspond to items by position: the function must return
// exactly one result per input item, in input order. A shorter or longer
// result slice fails the whole batch.
//
// The package handles per-request context cancellation, request queuing,
// error fan-out, and graceful shutdown: Close stops intake, flushes the
// queue, and waits for in-flight batches to finish.
package batcher
