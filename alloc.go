package obstack

import (
	"runtime"
	"unsafe"

	"github.com/modern-go/reflect2"
)

// New finishes a zeroed T inside the obstack and returns a pointer to it.
// The pointer stays valid until a Free covering it. The obstack's alignment
// must be at least T's natural alignment.
func New[T any](o *Obstack) *T {
	var zero T
	size := unsafe.Sizeof(zero)
	p := o.Alloc(int(size))
	clear(unsafe.Slice((*byte)(p), size))
	return (*T)(p)
}

// NewUninitialized is New without the zeroing. The contents are undefined;
// initialize every field before use.
func NewUninitialized[T any](o *Obstack) *T {
	var zero T
	return (*T)(o.Alloc(int(unsafe.Sizeof(zero))))
}

// Clone finishes a copy of v in the obstack and returns its address.
func Clone[T any](o *Obstack, v T) *T {
	p := NewUninitialized[T](o)
	*p = v
	return p
}

// MakeSlice finishes a slice of n uninitialized elements of type T backed by
// the obstack. Returns nil if n <= 0.
func MakeSlice[T any](o *Obstack, n int) []T {
	if n <= 0 {
		return nil
	}
	var zero T
	p := o.Alloc(int(unsafe.Sizeof(zero)) * n)
	return unsafe.Slice((*T)(p), n)
}

// MakeSliceZeroed is MakeSlice with the elements zeroed.
func MakeSliceZeroed[T any](o *Obstack, n int) []T {
	if n <= 0 {
		return nil
	}
	var zero T
	size := int(unsafe.Sizeof(zero)) * n
	p := o.Alloc(size)
	clear(unsafe.Slice((*byte)(p), size))
	return unsafe.Slice((*T)(p), n)
}

// Bytes returns the n bytes of the finished object at mark as a slice.
func (o *Obstack) Bytes(mark unsafe.Pointer, n int) []byte {
	return unsafe.Slice((*byte)(mark), n)
}

// Get stores the address of the object at mark through ptr, which must be a
// pointer to a pointer type (e.g. **Symbol). It writes the interface's data
// word directly rather than going through reflection values.
func (o *Obstack) Get(mark unsafe.Pointer, ptr any) {
	*(*unsafe.Pointer)(reflect2.PtrOf(ptr)) = mark
}

// KeepAlive pins the obstack (and with it every chunk) past the program
// point it is called at. Place it after the last use of any address derived
// from the obstack in unsafe code.
func (o *Obstack) KeepAlive() { runtime.KeepAlive(o) }
