//go:build linux || darwin

package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// carveFree lays out free chunks of the given payload sizes back to back in a
// fresh mapping without filing them. The chunks are scratch objects for
// exercising the bins directly; they are not registered as an arena.
func carveFree(t *testing.T, a *Allocator, sizes ...uintptr) []*chunk {
	t.Helper()
	total := uintptr(0)
	for _, s := range sizes {
		total += s + overheadWords
	}
	length := (total*wordBytes + a.pageBytes - 1) / a.pageBytes * a.pageBytes
	base, err := a.mapper.Map(nil, length)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.mapper.Unmap(base, length) })

	out := make([]*chunk, 0, len(sizes))
	c := (*chunk)(base)
	for i, s := range sizes {
		c.format(s, false, i == 0, i == len(sizes)-1)
		out = append(out, c)
		if i < len(sizes)-1 {
			c = c.next()
		}
	}
	return out
}

// binSizes lists the chunk sizes of bin sc head to tail, checking back links.
func binSizes(t *testing.T, a *Allocator, sc int) []uintptr {
	t.Helper()
	var sizes []uintptr
	var prev *chunk
	for c := a.bins[sc].head; c != nil; c = c.links().next {
		require.Equal(t, prev, c.links().prev, "prev link of %d-word chunk", c.size())
		sizes = append(sizes, c.size())
		prev = c
	}
	require.Len(t, sizes, a.bins[sc].count)
	return sizes
}

func newBinTestAllocator(t *testing.T) *Allocator {
	t.Helper()
	a, err := New(&Options{SizeClasses: &ConfigCompact})
	require.NoError(t, err)
	return a
}

// logClassSizes returns four ascending sizes that share the first logarithmic class.
func logClassSizes(a *Allocator) (uintptr, uintptr, uintptr, uintptr) {
	lo := a.classes.smallWords
	return lo + 4, lo + 14, lo + 24, 2*lo - 1
}

func TestFreeList_InsertKeepsOrder(t *testing.T) {
	a := newBinTestAllocator(t)
	s0, s1, s2, s3 := logClassSizes(a)
	cs := carveFree(t, a, s2, s0, s3, s1, s0)
	sc := a.classes.classOf(s0)
	for _, c := range cs {
		require.Equal(t, sc, a.classes.classOf(c.size()))
		a.insertFree(c)
	}
	require.Equal(t, []uintptr{s0, s0, s1, s2, s3}, binSizes(t, a, sc))
}

func TestFreeList_HeadInsertHasNilPrev(t *testing.T) {
	a := newBinTestAllocator(t)
	s0, s1, _, _ := logClassSizes(a)
	cs := carveFree(t, a, s1, s0)
	big, small := cs[0], cs[1]
	sc := a.classes.classOf(s0)

	a.insertFree(big)
	a.insertFree(small) // lands at the head of a non-empty bin

	require.Equal(t, small, a.bins[sc].head)
	require.Nil(t, small.links().prev, "head must carry a nil prev link")
	require.Equal(t, big, small.links().next)
	require.Equal(t, small, big.links().prev)
}

func TestFreeList_RemoveAfterHeadInsertKeepsNeighbors(t *testing.T) {
	a := newBinTestAllocator(t)
	s0, s1, s2, _ := logClassSizes(a)
	cs := carveFree(t, a, s1, s2, s0)
	mid, tail, head := cs[0], cs[1], cs[2]
	sc := a.classes.classOf(s0)

	a.insertFree(mid)
	a.insertFree(tail)
	a.insertFree(head)
	require.Equal(t, []uintptr{s0, s1, s2}, binSizes(t, a, sc))

	a.removeFree(head)
	require.Equal(t, mid, a.bins[sc].head)
	require.Nil(t, mid.links().prev)
	require.Equal(t, tail, mid.links().next, "unrelated forward link must survive")
	require.Equal(t, []uintptr{s1, s2}, binSizes(t, a, sc))
	require.Nil(t, head.links().next)
	require.Nil(t, head.links().prev)
}

func TestFreeList_RemoveMiddleAndTail(t *testing.T) {
	a := newBinTestAllocator(t)
	s0, s1, s2, s3 := logClassSizes(a)
	cs := carveFree(t, a, s0, s1, s2, s3)
	sc := a.classes.classOf(s0)
	for _, c := range cs {
		a.insertFree(c)
	}

	a.removeFree(cs[1])
	require.Equal(t, []uintptr{s0, s2, s3}, binSizes(t, a, sc))

	a.removeFree(cs[3])
	require.Equal(t, []uintptr{s0, s2}, binSizes(t, a, sc))
	require.Nil(t, cs[2].links().next)

	a.removeFree(cs[0])
	a.removeFree(cs[2])
	require.Nil(t, a.bins[sc].head)
	require.Zero(t, a.bins[sc].count)
}

func TestFreeList_FindFreeScansUpward(t *testing.T) {
	a := newBinTestAllocator(t)
	s0, _, _, s3 := logClassSizes(a)
	cs := carveFree(t, a, 4, s0, s3)
	for _, c := range cs {
		a.insertFree(c)
	}

	require.Equal(t, cs[0], a.findFree(3), "exact classes scan upward")
	require.Equal(t, cs[0], a.findFree(4))
	require.Equal(t, cs[1], a.findFree(5), "first admissible class")
	require.Equal(t, cs[1], a.findFree(s0))
	require.Equal(t, cs[2], a.findFree(s0+1), "first fit within the class")
	require.Nil(t, a.findFree(s3+1))
	require.Nil(t, a.findFree(1<<20))
}

func TestFreeList_LogClassSizesShareABin(t *testing.T) {
	a := newBinTestAllocator(t)
	s0, s1, s2, s3 := logClassSizes(a)
	sc := a.classes.classOf(s0)
	require.Equal(t, sc, a.classes.classOf(s1))
	require.Equal(t, sc, a.classes.classOf(s2))
	require.Equal(t, sc, a.classes.classOf(s3))
	require.Equal(t, sc+1, a.classes.classOf(s3+1))
}
