// Package gochunk processes lazy sequences in concurrent chunks. The main
// type is Processor, created with New. It pulls from an iter.Seq source,
// groups consecutive elements into fixed-size chunks, hands each chunk to
// a user function on a bounded worker pool, and yields the results as a
// lazy iter.Seq2 of value and error pairs.
//
// The unit of work is the chunk, not the element. Process yields exactly
// one result per chunk, so a source of 100 elements with a chunk size of
// 10 produces 10 results. The Map, FlatMap, Filter, and Reject methods
// instead apply an element function across each chunk and flatten the
// output, so the result count follows the element count. Reduce sits in
// between: it folds each chunk to one partial accumulator and yields the
// partials without combining them.
//
// By default results are yielded in submission order, with chunks that
// finish early held back until their predecessors are delivered. With
// WithOrdered(false) results are yielded as they complete instead, which
// lowers latency when chunk durations vary widely.
//
// Work is pull-driven. Nothing runs until the returned sequence is
// ranged, and the source is consumed only as fast as the pool and the
// consumer drain it, so infinite sources are fine: taking the first few
// results touches only the first few chunks. Breaking out of the range
// loop tears the run down and waits for in-flight chunks to settle.
//
// A chunk that fails or exceeds the per-chunk timeout ends the sequence
// with a ChunkError or TimeoutError identifying the chunk by index.
// Results that other chunks had already produced for that run are
// discarded with it. WithContinueOnError trades that for a lenient mode
// in which each failure is yielded in its chunk's place and the rest of
// the run proceeds.
package gochunk
