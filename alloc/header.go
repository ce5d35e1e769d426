package alloc

import "unsafe"

// tag is a boundary-tag word: the header or the footer of a chunk. The top
// bit is the in-use flag, the next bit is the arena-boundary flag, and the
// remaining low bits hold the payload size in words.
type tag uintptr

const (
	wordBytes = unsafe.Sizeof(uintptr(0))

	sizeMask     = ^tag(0) >> 2
	usedMask     = ^(^tag(0) >> 1)
	boundaryMask = ^(sizeMask | usedMask)

	// overheadWords is one header word plus one footer word.
	overheadWords = 2

	// minPayloadWords leaves room for the next and prev links of a free chunk.
	minPayloadWords = 2

	// maxChunkWords is the largest payload a tag can describe.
	maxChunkWords = uintptr(sizeMask)
)

func makeTag(size uintptr, used, boundary bool) tag {
	t := tag(size) & sizeMask
	if used {
		t |= usedMask
	}
	if boundary {
		t |= boundaryMask
	}
	return t
}

func (t tag) size() uintptr  { return uintptr(t & sizeMask) }
func (t tag) used() bool     { return t&usedMask != 0 }
func (t tag) boundary() bool { return t&boundaryMask != 0 }

func (t tag) withUsed(used bool) tag {
	return makeTag(t.size(), used, t.boundary())
}

func (t tag) withBoundary(boundary bool) tag {
	return makeTag(t.size(), t.used(), boundary)
}

// EncodeTag packs a chunk size (in words), in-use flag, and boundary flag into
// a single word using the allocator's on-memory layout.
func EncodeTag(sizeWords uintptr, used, boundary bool) uintptr {
	return uintptr(makeTag(sizeWords, used, boundary))
}

// DecodeTag unpacks a word produced by EncodeTag or read from arena memory.
func DecodeTag(w uintptr) (sizeWords uintptr, used, boundary bool) {
	t := tag(w)
	return t.size(), t.used(), t.boundary()
}

// chunk is a view over a chunk header in mapped memory. The header word is the
// only field; the payload and footer follow it in memory.
type chunk struct {
	hdr tag
}

// freeLinks overlays the first two payload words of a free chunk.
type freeLinks struct {
	next *chunk
	prev *chunk
}

// chunkOf returns the chunk owning the payload at p.
func chunkOf(p unsafe.Pointer) *chunk {
	return (*chunk)(unsafe.Add(p, -int(wordBytes)))
}

func (c *chunk) size() uintptr { return c.hdr.size() }
func (c *chunk) used() bool    { return c.hdr.used() }

// arenaStart reports whether c is the first chunk of its arena.
func (c *chunk) arenaStart() bool { return c.hdr.boundary() }

// arenaEnd reports whether c is the last chunk of its arena.
func (c *chunk) arenaEnd() bool { return c.footer().boundary() }

func (c *chunk) payload() unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(c), wordBytes)
}

func (c *chunk) footer() *tag {
	return (*tag)(unsafe.Add(unsafe.Pointer(c), (c.size()+1)*wordBytes))
}

// next returns the physical successor. Only valid when !c.arenaEnd().
func (c *chunk) next() *chunk {
	return (*chunk)(unsafe.Add(unsafe.Pointer(c), (c.size()+overheadWords)*wordBytes))
}

// prevFooter is the footer of the physical predecessor, one word back.
func (c *chunk) prevFooter() *tag {
	return (*tag)(unsafe.Add(unsafe.Pointer(c), -int(wordBytes)))
}

// prev returns the physical predecessor. Only valid when !c.arenaStart().
func (c *chunk) prev() *chunk {
	back := (c.prevFooter().size() + overheadWords) * wordBytes
	return (*chunk)(unsafe.Add(unsafe.Pointer(c), -int(back)))
}

func (c *chunk) links() *freeLinks {
	return (*freeLinks)(c.payload())
}

// bytes is the footprint of c including header and footer.
func (c *chunk) bytes() uintptr {
	return (c.size() + overheadWords) * wordBytes
}

// format writes a matching header and footer. start goes on the header and end
// on the footer; size and used are mirrored on both.
func (c *chunk) format(size uintptr, used, start, end bool) {
	c.hdr = makeTag(size, used, start)
	*c.footer() = makeTag(size, used, end)
}

func (c *chunk) setUsed(used bool) {
	c.hdr = c.hdr.withUsed(used)
	f := c.footer()
	*f = f.withUsed(used)
}

// bytesToWords converts a request in bytes to payload words, never less than
// the two words a free chunk needs for its links.
func bytesToWords(n uintptr) uintptr {
	w := n / wordBytes
	if n%wordBytes != 0 {
		w++
	}
	return max(w, minPayloadWords)
}
