package obstack_test

import (
	"bytes"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/pavanmanishd/obstack"
)

func view(mark unsafe.Pointer, n int) []byte {
	return unsafe.Slice((*byte)(mark), n)
}

// Two short copies land 8 bytes apart under the default alignment.
func TestAdjacentCopies(t *testing.T) {
	o := obstack.SpecifyAllocation(64, 0, nil, nil)
	a := o.CopyString("hi")
	b := o.CopyString("world")

	require.EqualValues(t, 8, uintptr(b)-uintptr(a))
	require.Equal(t, "hi", string(view(a, 2)))
	require.Equal(t, "world", string(view(b, 5)))
}

func TestGrowThenFinishSpacing(t *testing.T) {
	o := obstack.SpecifyAllocation(64, 0, nil, nil)
	o.GrowString("abcdefghij")
	a := o.Finish()
	o.GrowString("x")
	b := o.Finish()

	require.Equal(t, "abcdefghij", string(view(a, 10)))
	require.EqualValues(t, 16, uintptr(b)-uintptr(a))
}

func TestPromotionOnTinyChunks(t *testing.T) {
	o := obstack.SpecifyAllocation(16, 0, nil, nil)
	a := o.Copy(bytes.Repeat([]byte{0xAA}, 30))

	require.Equal(t, bytes.Repeat([]byte{0xAA}, 30), view(a, 30))
	require.GreaterOrEqual(t, o.MemoryUsed(), 30)
}

func TestUnwindThenRebuild(t *testing.T) {
	o := obstack.NewObstack(0)
	m := o.CopyString("anchor")
	o.CopyString("later")
	o.CopyString("latest")

	o.Free(m)
	require.Equal(t, m, o.Base())

	// alloc(0) refinishes at m itself; a positive alloc ends at m's aligned
	// successor.
	a := o.Alloc(0)
	require.Equal(t, m, a)
	next := o.Finish()
	require.Equal(t, m, next)

	b := o.Alloc(5)
	require.Equal(t, m, b)
	after := o.Finish()
	require.EqualValues(t, 8, uintptr(after)-uintptr(m))
}

func TestThousandSingleByteObjects(t *testing.T) {
	o := obstack.NewObstack(0)
	mask := uintptr(o.AlignmentMask())

	seen := make(map[uintptr]bool, 1000)
	marks := make([]unsafe.Pointer, 0, 1000)
	for i := 0; i < 1000; i++ {
		o.Grow1('x')
		m := o.Finish()
		require.Zero(t, uintptr(m)&mask, "object %d misaligned", i)
		require.False(t, seen[uintptr(m)], "object %d address reused", i)
		seen[uintptr(m)] = true
		marks = append(marks, m)
	}
	for i, m := range marks {
		require.Equal(t, byte('x'), view(m, 1)[0], "object %d", i)
	}
}

// Finished addresses and contents survive every later grow, finish, and
// free-to-a-later-mark.
func TestStability(t *testing.T) {
	o := obstack.SpecifyAllocation(64, 0, nil, nil)

	type obj struct {
		mark unsafe.Pointer
		data []byte
	}
	var live []obj
	check := func() {
		for _, ob := range live {
			require.Equal(t, ob.data, view(ob.mark, len(ob.data)))
		}
	}

	for i := 0; i < 64; i++ {
		data := bytes.Repeat([]byte{byte(i + 1)}, i*5%97+1)
		m := o.Copy(data)
		live = append(live, obj{m, data})
		check()
	}

	// Unwind the newest half; the older half must be untouched.
	o.Free(live[32].mark)
	live = live[:32]
	check()

	// Keep building after the unwind.
	for i := 0; i < 16; i++ {
		data := bytes.Repeat([]byte{0xC0}, 40)
		live = append(live, obj{o.Copy(data), data})
		check()
	}
}

func TestRoundTripConcat(t *testing.T) {
	o := obstack.NewObstack(32)
	pieces := [][]byte{
		[]byte("a"),
		bytes.Repeat([]byte{2}, 17),
		[]byte("the quick brown fox"),
		bytes.Repeat([]byte{0}, 64),
		[]byte("tail"),
	}
	var want []byte
	for _, p := range pieces {
		o.Grow(p)
		want = append(want, p...)
	}
	m := o.Finish()
	require.Equal(t, want, view(m, len(want)))
}

func TestIdempotentEmptyFinish(t *testing.T) {
	o := obstack.NewObstack(0)
	o.CopyString("something")
	a1 := o.Finish()
	a2 := o.Finish()
	d := uintptr(a2) - uintptr(a1)
	require.True(t, d == 0 || d == uintptr(o.AlignmentMask())+1,
		"empty finishes %d bytes apart", d)
	require.True(t, o.Allocated(a1))
	require.True(t, o.Allocated(a2))
}

func TestAlignmentProperty(t *testing.T) {
	for _, alignment := range []int{1, 2, 8, 16, 64} {
		o := obstack.SpecifyAllocation(0, alignment, nil, nil)
		mask := uintptr(alignment - 1)
		for i := 0; i < 100; i++ {
			o.Blank(i % 13)
			m := o.Finish()
			require.Zero(t, uintptr(m)&mask, "alignment %d object %d", alignment, i)
		}
	}
}
