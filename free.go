package obstack

import "unsafe"

// Free releases every object finished after mark was, mark's own object
// included, and restarts the growing object at mark. mark must be an
// address returned by Finish (or a one-shot Alloc/Copy) on this obstack
// that has not already been freed. A mark that lies in no live chunk
// panics; other misuse (a freed mark, or an address inside a live chunk
// that Finish never returned) is not detected.
//
// A nil mark releases every chunk and leaves the obstack destroyed; any
// further growth panics.
func (o *Obstack) Free(mark unsafe.Pointer) {
	obj := uintptr(mark)
	lp := o.chunk
	// A chunk contains obj iff obj > base and obj <= limit. The strict low
	// bound admits an empty object sitting exactly at the aligned contents
	// start while rejecting the chunk's own address. Everything newer gets
	// released.
	for lp != nil && (lp.base() >= obj || lp.limit() < obj) {
		plp := lp.prev
		o.callFreefun(lp.buf)
		lp = plp
		// Once the walk switches chunks there is no telling whether the
		// chunk it lands in holds an empty object; assume it does.
		o.maybeEmptyObject = true
	}
	switch {
	case lp != nil:
		o.objectBase = obj
		o.nextFree = obj
		o.chunkLimit = lp.limit()
		o.chunk = lp
	case mark != nil:
		panic("obstack: free target outside any live chunk")
	default:
		o.chunk = nil
		o.objectBase = 0
		o.nextFree = 0
		o.chunkLimit = 0
	}
}

// Allocated reports whether p lies within any live chunk. It walks the whole
// chain; debugging aid only.
func (o *Obstack) Allocated(p unsafe.Pointer) bool {
	obj := uintptr(p)
	lp := o.chunk
	// Same containment test as Free: an object can never sit at a chunk's
	// base address, but an empty one can sit at its limit.
	for lp != nil && (lp.base() >= obj || lp.limit() < obj) {
		lp = lp.prev
	}
	return lp != nil
}
