// Package obstack implements a stack of objects: a region-based allocator
// for building many small, variable-length objects whose final size is not
// known up front.
//
// # Overview
//
// An obstack holds mature objects with frozen addresses and at most one
// growing object on top. Bytes are appended to the growing object one piece
// at a time; when it is complete, Finish freezes it and returns an address
// that never changes again. The classic use is reading identifiers of
// unknown length into a symbol table: grow the name byte by byte, finish it
// when the delimiter arrives, and if the symbol already exists, free the
// freshly built copy.
//
// Because objects are stacked, they are also freed as a stack: Free with
// the address of any finished object releases that object and everything
// finished after it, in one step.
//
// # Basic Usage
//
//	o := obstack.NewObstack(0) // default chunk size
//	defer o.Free(nil)          // release every chunk
//
//	// Build an object incrementally
//	for _, tok := range tokens {
//		o.GrowString(tok)
//	}
//	name := o.Finish() // address is now permanent
//
//	// One-shot allocations
//	sym := obstack.New[Symbol](o)
//	buf := o.Copy0([]byte("literal")) // NUL-terminated copy
//
//	// Unwind everything finished after name, name included
//	o.Free(name)
//
// # Memory Layout
//
// Storage comes in chunks from an injected allocator (the Go heap unless
// SpecifyAllocation says otherwise), linked newest to oldest. Growing
// appends into the current chunk; when the chunk runs out, the partial
// object is promoted to a larger chunk and keeps growing there. Finished
// objects never move, and every finished object starts on an alignment
// boundary (DefaultAlignment unless configured).
//
// # Thread Safety
//
// An Obstack is not goroutine-safe; give each goroutine its own. Distinct
// obstacks may share one chunk allocator if that allocator is itself safe,
// like SlabAllocator.
//
// # Important Notes
//
//   - Base is provisional while an object grows; only Finish returns a
//     stable address.
//   - There is no per-object free. Free unwinds to a mark, releasing every
//     object after it in bulk.
//   - Addresses are valid while the obstack is reachable and the covering
//     mark has not been freed. Keep the obstack alive past the last use of
//     any address derived from it.
//   - Chunk allocation failure invokes AllocFailedHandler (or a per-obstack
//     handler), which does not return.
package obstack
