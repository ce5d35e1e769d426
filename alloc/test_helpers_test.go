//go:build linux || darwin

package alloc

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/pagealloc/internal/osmem"
)

var errSimulated = errors.New("simulated mapping failure")

// regionMapper carves mappings out of one large reserved region, placing each
// new mapping right after the previous one. With honorHints off it leaves a
// one-page gap so no mapping is ever contiguous with its predecessor.
type regionMapper struct {
	os         *osmem.Mapper
	base       unsafe.Pointer
	size       uintptr
	next       uintptr
	page       uintptr
	honorHints bool
	fail       bool

	maps   int
	unmaps int
}

func newRegionMapper(t testing.TB, pages int, honorHints bool) *regionMapper {
	t.Helper()
	m := osmem.New()
	page := uintptr(m.PageSize())
	size := page * uintptr(pages)
	base, err := m.Map(nil, size)
	require.NoError(t, err)
	t.Cleanup(func() {
		// Unmapping pages already released by the allocator is harmless.
		_ = m.Unmap(base, size)
	})
	return &regionMapper{os: m, base: base, size: size, page: page, honorHints: honorHints}
}

func (r *regionMapper) Map(hint unsafe.Pointer, length uintptr) (unsafe.Pointer, error) {
	if r.fail {
		return nil, errSimulated
	}
	off := r.next
	if hint != nil && !r.honorHints {
		off += r.page
	}
	if off+length > r.size {
		return nil, errSimulated
	}
	r.next = off + length
	r.maps++
	return unsafe.Add(r.base, off), nil
}

func (r *regionMapper) Unmap(addr unsafe.Pointer, length uintptr) error {
	r.unmaps++
	return r.os.Unmap(addr, length)
}

func (r *regionMapper) PageSize() int {
	return int(r.page)
}

// failingMapper forwards to the OS until fail is set.
type failingMapper struct {
	os   *osmem.Mapper
	fail bool
}

func (f *failingMapper) Map(hint unsafe.Pointer, length uintptr) (unsafe.Pointer, error) {
	if f.fail {
		return nil, errSimulated
	}
	return f.os.Map(hint, length)
}

func (f *failingMapper) Unmap(addr unsafe.Pointer, length uintptr) error {
	return f.os.Unmap(addr, length)
}

func (f *failingMapper) PageSize() int {
	return f.os.PageSize()
}

// newTestAllocator builds an allocator, verifies the heap when the test ends,
// and unmaps everything it still holds.
func newTestAllocator(t testing.TB, opts *Options) *Allocator {
	t.Helper()
	a, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, a.Verify())
		for _, r := range a.arenas {
			_ = a.mapper.Unmap(r.base, r.bytes)
		}
		a.arenas = nil
	})
	return a
}

// fill writes a repeating pattern derived from seed.
func fill(p unsafe.Pointer, n uintptr, seed byte) {
	b := Bytes(p, n)
	for i := range b {
		b[i] = seed + byte(i)
	}
}

// requirePattern checks the pattern written by fill.
func requirePattern(t testing.TB, p unsafe.Pointer, n uintptr, seed byte) {
	t.Helper()
	b := Bytes(p, n)
	for i := range b {
		if b[i] != seed+byte(i) {
			require.Failf(t, "pattern mismatch", "byte %d = %#x, want %#x", i, b[i], seed+byte(i))
		}
	}
}

// pagePayloadWords is the payload a single-page arena offers.
func pagePayloadWords(a *Allocator) uintptr {
	return a.pageBytes/wordBytes - overheadWords
}
