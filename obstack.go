package obstack

import (
	"math"
	"unsafe"
)

// DefaultChunkSize is used when a constructor is given a chunk size of zero.
// It sits a little under 4 KiB so the request plus allocator bookkeeping
// stays within one page.
const DefaultChunkSize = 4096 - 32

// DefaultAlignment is the boundary finished objects start on when no
// explicit alignment is given: the widest natural alignment among pointers,
// integers and floats on the target.
const DefaultAlignment = max(
	unsafe.Alignof(uintptr(0)),
	unsafe.Alignof(uint64(0)),
	unsafe.Alignof(float64(0)),
)

// chunkHeaderSize bytes at the front of every chunk buffer are reserved as
// the header region. Contents begin past it, so an object's address is
// always strictly greater than its chunk's base address; Free and Allocated
// rely on that ordering when a zero-length object sits exactly at a chunk's
// aligned contents start.
const chunkHeaderSize = 2 * unsafe.Sizeof(uintptr(0))

const (
	ptrSize = unsafe.Sizeof(uintptr(0))
	intSize = unsafe.Sizeof(int(0))
)

// AllocFunc obtains a chunk buffer of at least size bytes. It returns nil
// when no memory is available.
type AllocFunc func(size int) []byte

// FreeFunc releases a buffer previously returned by the paired AllocFunc.
type FreeFunc func(buf []byte)

// AllocArgFunc and FreeArgFunc are the extra-argument allocator shapes.
// They thread a caller-supplied context through every chunk request and
// release, for obstacks embedded in multi-heap environments.
type (
	AllocArgFunc func(arg any, size int) []byte
	FreeArgFunc  func(arg any, buf []byte)
)

// chunk is one region in the back-linked chain, newest first. The
// {limit, prev} metadata lives in this struct rather than inside buf, but
// buf's first chunkHeaderSize bytes stay reserved so that address
// comparisons against the chunk base behave as if the header were in-band.
type chunk struct {
	buf  []byte
	prev *chunk
}

func (c *chunk) base() uintptr     { return uintptr(unsafe.Pointer(unsafe.SliceData(c.buf))) }
func (c *chunk) limit() uintptr    { return c.base() + uintptr(len(c.buf)) }
func (c *chunk) contents() uintptr { return c.base() + chunkHeaderSize }

// ptr converts an address inside the chunk back to a pointer.
func (c *chunk) ptr(addr uintptr) unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(unsafe.SliceData(c.buf)), addr-c.base())
}

// alignUp rounds p up to the next multiple of mask+1.
func alignUp(p, mask uintptr) uintptr { return (p + mask) &^ mask }

// Obstack is a stack of objects: mature objects with frozen addresses below,
// at most one growing object on top. Grow appends to the growing object,
// Finish freezes it, Free unwinds to any earlier finished object.
//
// An Obstack is not goroutine-safe. Distinct obstacks may be used
// concurrently provided their chunk allocator is itself safe to share.
type Obstack struct {
	chunkSize int     // preferred size for new chunks
	alignMask uintptr // objects start on multiples of alignMask+1

	chunk      *chunk  // current (newest) chunk
	objectBase uintptr // start of the growing object
	nextFree   uintptr // where the next byte goes
	chunkLimit uintptr // cached chunk end

	// Allocator hooks, two shapes discriminated by useExtraArg.
	chunkfun    AllocFunc
	freefun     FreeFunc
	chunkfunArg AllocArgFunc
	freefunArg  FreeArgFunc
	extraArg    any
	useExtraArg bool

	// The newest finished object may have zero length, in which case the
	// chunk holding it must survive promotion even if it looks vacant.
	maybeEmptyObject bool

	allocFailed func() // overrides AllocFailedHandler when non-nil
}

// NewObstack returns an obstack backed by the Go heap. chunkSize is the
// preferred chunk size; 0 selects DefaultChunkSize. Finished objects are
// aligned to DefaultAlignment.
func NewObstack(chunkSize int) *Obstack {
	return SpecifyAllocation(chunkSize, 0, nil, nil)
}

// SpecifyAllocation returns an obstack with an explicit alignment and chunk
// allocator. Zero chunkSize or alignment selects the defaults; nil alloc or
// free selects the Go heap.
func SpecifyAllocation(chunkSize, alignment int, alloc AllocFunc, free FreeFunc) *Obstack {
	if alloc == nil {
		alloc = heapChunk
	}
	if free == nil {
		free = heapFree
	}
	o := &Obstack{chunkfun: alloc, freefun: free}
	o.begin(chunkSize, alignment)
	return o
}

// SpecifyAllocationArg is SpecifyAllocation for the extra-argument allocator
// shape: arg is passed as the first parameter of every alloc and free call.
func SpecifyAllocationArg(chunkSize, alignment int, alloc AllocArgFunc, free FreeArgFunc, arg any) *Obstack {
	o := &Obstack{
		chunkfunArg: alloc,
		freefunArg:  free,
		extraArg:    arg,
		useExtraArg: true,
	}
	o.begin(chunkSize, alignment)
	return o
}

// heapChunk and heapFree are the default allocator pair. Released buffers
// are left to the collector.
func heapChunk(size int) []byte { return make([]byte, size) }
func heapFree([]byte)           {}

// begin establishes the control block and requests the first chunk.
func (o *Obstack) begin(size, alignment int) {
	if alignment == 0 {
		alignment = int(DefaultAlignment)
	}
	if size <= 0 {
		size = DefaultChunkSize
	}
	o.chunkSize = size
	o.alignMask = uintptr(alignment) - 1

	buf := o.callChunkfun(o.chunkSize)
	if buf == nil {
		o.fail()
	}
	c := &chunk{buf: buf}
	o.chunk = c
	o.objectBase = alignUp(c.contents(), o.alignMask)
	o.nextFree = o.objectBase
	o.chunkLimit = c.limit()
	o.maybeEmptyObject = false
}

// SetChunkFuncs swaps in a plain allocator pair for all future chunk
// requests and releases. Chunks already held are released through the new
// free function; it must accept them.
func (o *Obstack) SetChunkFuncs(alloc AllocFunc, free FreeFunc) {
	o.chunkfun = alloc
	o.freefun = free
	o.useExtraArg = false
}

// SetChunkFuncsArg swaps in an extra-argument allocator pair.
func (o *Obstack) SetChunkFuncsArg(alloc AllocArgFunc, free FreeArgFunc, arg any) {
	o.chunkfunArg = alloc
	o.freefunArg = free
	o.extraArg = arg
	o.useExtraArg = true
}

func (o *Obstack) callChunkfun(size int) []byte {
	if o.useExtraArg {
		return o.chunkfunArg(o.extraArg, size)
	}
	return o.chunkfun(size)
}

func (o *Obstack) callFreefun(buf []byte) {
	if o.useExtraArg {
		o.freefunArg(o.extraArg, buf)
	} else {
		o.freefun(buf)
	}
}

// Base returns the provisional address of the growing object. Any grow call
// may still move it; only Finish produces a stable address.
func (o *Obstack) Base() unsafe.Pointer {
	if o.chunk == nil {
		return nil
	}
	return o.chunk.ptr(o.objectBase)
}

// Size returns the number of bytes in the growing object.
func (o *Obstack) Size() int { return int(o.nextFree - o.objectBase) }

// Room returns how many bytes can be added to the growing object before a
// new chunk has to be allocated.
func (o *Obstack) Room() int { return int(o.chunkLimit - o.nextFree) }

// Empty reports whether the obstack holds no finished objects and no
// pending bytes.
func (o *Obstack) Empty() bool {
	return o.chunk != nil && o.chunk.prev == nil &&
		o.nextFree == alignUp(o.chunk.contents(), o.alignMask)
}

// ChunkSize returns the preferred chunk size.
func (o *Obstack) ChunkSize() int { return o.chunkSize }

// AlignmentMask returns the mask of low bits clear in every finished
// object's address.
func (o *Obstack) AlignmentMask() int { return int(o.alignMask) }

// MemoryUsed returns the total bytes held in live chunks, headers included.
func (o *Obstack) MemoryUsed() int {
	n := 0
	for c := o.chunk; c != nil; c = c.prev {
		n += len(c.buf)
	}
	return n
}

// newchunk allocates a bigger chunk and moves the growing object into it, on
// the assumption that length more bytes are about to be added. The control
// block is only touched once the new chunk is in hand.
func (o *Obstack) newchunk(length int) {
	if o.chunk == nil {
		panic("obstack: use after Free(nil)")
	}
	old := o.chunk
	objSize := o.nextFree - o.objectBase

	// Chunk size with room for the pending object, the requested bytes,
	// worst-case alignment padding, and an eighth extra so repeated spills
	// grow geometrically. All unsigned; overflow lands in the fail path.
	sum1 := objSize + uintptr(length)
	sum2 := sum1 + o.alignMask
	newSize := sum2 + (objSize >> 3) + 100
	if newSize < sum2 {
		newSize = sum2
	}
	if newSize < uintptr(o.chunkSize) {
		newSize = uintptr(o.chunkSize)
	}

	var buf []byte
	if objSize <= sum1 && sum1 <= sum2 && newSize <= math.MaxInt {
		buf = o.callChunkfun(int(newSize))
	}
	if buf == nil {
		o.fail()
	}
	c := &chunk{buf: buf, prev: old}
	o.chunk = c
	o.chunkLimit = c.limit()

	base := alignUp(c.contents(), o.alignMask)
	if objSize > 0 {
		copy(c.buf[base-c.base():], old.buf[o.objectBase-old.base():o.nextFree-old.base()])
	}

	// If the object just moved was the only data in the old chunk, splice
	// the chunk out and give it back. Not if it might hold an empty object.
	if !o.maybeEmptyObject && o.objectBase == alignUp(old.contents(), o.alignMask) {
		c.prev = old.prev
		o.callFreefun(old.buf)
	}

	o.objectBase = base
	o.nextFree = base + objSize
	// The new chunk starts with a fresh growing object, never an empty one.
	o.maybeEmptyObject = false
}

// fail hands control to the allocation-failure handler. Handlers must not
// return; one that does trips the panic below.
func (o *Obstack) fail() {
	if o.allocFailed != nil {
		o.allocFailed()
	} else {
		AllocFailedHandler()
	}
	panic("obstack: allocation failure handler returned")
}
