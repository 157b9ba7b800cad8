//go:build unix

package obstack

import (
	"sync"

	"golang.org/x/sys/unix"
)

// DefaultSlabSize is the size of the anonymous mappings SlabAllocator carves
// chunks out of (4 MiB).
const DefaultSlabSize = 1 << 22

// SlabAllocator is a chunk source that carves chunk buffers out of large
// anonymous mmap regions, keeping chunk allocation off the Go heap. One
// SlabAllocator may back any number of obstacks: Alloc and Free serialize on
// an internal mutex, which is exactly the safety a shared chunk allocator
// must provide for concurrent obstacks.
//
// Wire it up with its method values:
//
//	s := obstack.NewSlabAllocator(0)
//	o := obstack.SpecifyAllocation(0, 0, s.Alloc, s.Free)
type SlabAllocator struct {
	mu       sync.Mutex
	slabSize int
	cur      []byte   // remainder of the slab being carved
	slabs    [][]byte // every mapping taken, for Release
	reuse    [][]byte // buffers handed back through Free
	mapped   int
}

// NewSlabAllocator returns a slab-backed chunk source. slabSize is the mmap
// region size; 0 selects DefaultSlabSize.
func NewSlabAllocator(slabSize int) *SlabAllocator {
	if slabSize <= 0 {
		slabSize = DefaultSlabSize
	}
	return &SlabAllocator{slabSize: slabSize}
}

// Alloc returns a chunk buffer of at least size bytes, or nil if the kernel
// refuses the backing mapping. Buffers handed back through Free are reused
// before new slab space is carved.
func (s *SlabAllocator) Alloc(size int) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, b := range s.reuse {
		if len(b) >= size {
			last := len(s.reuse) - 1
			s.reuse[i] = s.reuse[last]
			s.reuse = s.reuse[:last]
			return b
		}
	}

	size = int(alignUp(uintptr(size), 15))
	if size > s.slabSize {
		// Too big to carve; give it a mapping of its own.
		return s.mmap(size)
	}
	if len(s.cur) < size {
		slab := s.mmap(s.slabSize)
		if slab == nil {
			return nil
		}
		s.cur = slab
	}
	buf := s.cur[:size:size]
	s.cur = s.cur[size:]
	return buf
}

// Free records buf for reuse by a later Alloc. The backing mapping is only
// returned to the kernel by Release.
func (s *SlabAllocator) Free(buf []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reuse = append(s.reuse, buf)
}

// Mapped returns the total bytes currently mapped from the kernel.
func (s *SlabAllocator) Mapped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mapped
}

// Release unmaps every slab. Every obstack backed by this allocator must be
// done before the call; their chunks are gone afterwards.
func (s *SlabAllocator) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var first error
	for _, b := range s.slabs {
		if err := unix.Munmap(b); err != nil && first == nil {
			first = err
		}
	}
	s.slabs, s.cur, s.reuse = nil, nil, nil
	s.mapped = 0
	return first
}

func (s *SlabAllocator) mmap(size int) []byte {
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil
	}
	s.slabs = append(s.slabs, b)
	s.mapped += size
	return b
}
