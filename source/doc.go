// Package source provides constructors for the lazy sequences consumed
// by the gochunk processor, covering the common cases:
//
// - Slice, Empty: sequences over in-memory data
// - Channel: bridges an existing channel into a sequence
// - Range, Count, Repeat: generated sequences, finite and infinite
// - Take, Collect: prefix limiting and draining
//
// All constructors return plain iter.Seq values, so they compose with
// anything that understands the standard iteration protocol, not just
// this module.
//
// Basic usage with a channel:
//
//	input := make(chan string, 2)
//	input <- "a"
//	input <- "b"
//	close(input)
//
//	for s := range source.Channel(context.Background(), input) {
//	    fmt.Println(s)
//	}
//
// Output:
//
//	a
//	b
package source
