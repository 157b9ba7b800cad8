package obstack

import "unsafe"

// window returns the writable bytes [nextFree, nextFree+n) of the current
// chunk. Callers have already ensured the room.
func (o *Obstack) window(n int) []byte {
	off := o.nextFree - o.chunk.base()
	return o.chunk.buf[off : off+uintptr(n)]
}

// MakeRoom ensures at least n bytes can be appended without another chunk
// allocation. The growing object's provisional address may change.
func (o *Obstack) MakeRoom(n int) {
	if o.Room() < n {
		o.newchunk(n)
	}
}

// Grow appends p to the growing object.
func (o *Obstack) Grow(p []byte) {
	if o.Room() < len(p) {
		o.newchunk(len(p))
	}
	copy(o.window(len(p)), p)
	o.nextFree += uintptr(len(p))
}

// GrowString appends s to the growing object without an intermediate copy.
func (o *Obstack) GrowString(s string) {
	if o.Room() < len(s) {
		o.newchunk(len(s))
	}
	copy(o.window(len(s)), s)
	o.nextFree += uintptr(len(s))
}

// Grow0 appends p followed by a single zero byte.
func (o *Obstack) Grow0(p []byte) {
	if o.Room() < len(p)+1 {
		o.newchunk(len(p) + 1)
	}
	w := o.window(len(p) + 1)
	copy(w, p)
	w[len(p)] = 0
	o.nextFree += uintptr(len(p)) + 1
}

// Grow1 appends a single byte.
func (o *Obstack) Grow1(c byte) {
	if o.Room() < 1 {
		o.newchunk(1)
	}
	o.window(1)[0] = c
	o.nextFree++
}

// GrowPtr appends a pointer-sized value. The bytes grown since the last
// Finish must already share pointer alignment; no padding is inserted.
//
// The stored pointer is invisible to the collector: the referent must stay
// reachable through some ordinary Go reference for as long as the object is
// read back.
func (o *Obstack) GrowPtr(p unsafe.Pointer) {
	if o.Room() < int(ptrSize) {
		o.newchunk(int(ptrSize))
	}
	*(*unsafe.Pointer)(o.chunk.ptr(o.nextFree)) = p
	o.nextFree += ptrSize
}

// GrowInt appends an int-sized value. The alignment precondition of GrowPtr
// applies.
func (o *Obstack) GrowInt(v int) {
	if o.Room() < int(intSize) {
		o.newchunk(int(intSize))
	}
	*(*int)(o.chunk.ptr(o.nextFree)) = v
	o.nextFree += intSize
}

// Blank advances the growing object by n bytes, leaving them uninitialized.
func (o *Obstack) Blank(n int) {
	if o.Room() < n {
		o.newchunk(n)
	}
	o.nextFree += uintptr(n)
}

// Room is a reservation handle. Its append methods skip the per-call room
// check: the Reserve call that produced the handle has already made room,
// and the caller must not append more than was reserved.
type Room struct {
	o *Obstack
}

// Reserve makes room for at least n more bytes and returns a handle for
// appending them unchecked. The handle is invalidated by any checked grow,
// Finish, or Free on the obstack.
func (o *Obstack) Reserve(n int) Room {
	o.MakeRoom(n)
	return Room{o}
}

// Byte appends one byte.
func (r Room) Byte(c byte) {
	o := r.o
	o.window(1)[0] = c
	o.nextFree++
}

// Bytes appends p.
func (r Room) Bytes(p []byte) {
	o := r.o
	copy(o.window(len(p)), p)
	o.nextFree += uintptr(len(p))
}

// String appends s.
func (r Room) String(s string) {
	o := r.o
	copy(o.window(len(s)), s)
	o.nextFree += uintptr(len(s))
}

// Ptr appends a pointer-sized value. See GrowPtr for the alignment and
// reachability preconditions.
func (r Room) Ptr(p unsafe.Pointer) {
	o := r.o
	*(*unsafe.Pointer)(o.chunk.ptr(o.nextFree)) = p
	o.nextFree += ptrSize
}

// Int appends an int-sized value.
func (r Room) Int(v int) {
	o := r.o
	*(*int)(o.chunk.ptr(o.nextFree)) = v
	o.nextFree += intSize
}

// Skip advances past n bytes without writing them.
func (r Room) Skip(n int) {
	r.o.nextFree += uintptr(n)
}

// Finish freezes the growing object and returns its address. The address
// does not change for the rest of the object's life: it survives every
// later grow, finish, and free up to (but not including) a Free that covers
// it. A new, empty growing object starts where the finished one ends.
func (o *Obstack) Finish() unsafe.Pointer {
	value := o.objectBase
	if o.nextFree == o.objectBase {
		// The finished object is empty: it shares its address with
		// whatever is finished next, and its chunk must not be recycled
		// out from under it during promotion.
		o.maybeEmptyObject = true
	}
	o.nextFree = alignUp(o.nextFree, o.alignMask)
	if o.nextFree > o.chunkLimit {
		// Alignment padding would spill past the chunk; park the cursor at
		// the limit and let the next grow promote.
		o.nextFree = o.chunkLimit
	}
	o.objectBase = o.nextFree
	if o.chunk == nil {
		return nil
	}
	return o.chunk.ptr(value)
}

// Alloc finishes an object of n uninitialized bytes in one shot and returns
// its address.
func (o *Obstack) Alloc(n int) unsafe.Pointer {
	o.Blank(n)
	return o.Finish()
}

// Copy finishes an object holding a copy of p.
func (o *Obstack) Copy(p []byte) unsafe.Pointer {
	o.Grow(p)
	return o.Finish()
}

// Copy0 finishes an object holding a copy of p plus a trailing zero byte.
func (o *Obstack) Copy0(p []byte) unsafe.Pointer {
	o.Grow0(p)
	return o.Finish()
}

// CopyString finishes an object holding a copy of s.
func (o *Obstack) CopyString(s string) unsafe.Pointer {
	o.GrowString(s)
	return o.Finish()
}
