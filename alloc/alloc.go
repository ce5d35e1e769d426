package alloc

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/joshuapare/pagealloc/internal/buf"
)

// maxRequestBytes bounds a single request so that its word count, plus header
// and footer, always fits a tag.
const maxRequestBytes = (maxChunkWords >> 1) * wordBytes

// Allocator is a boundary-tag allocator over anonymous OS mappings.
//
// An Allocator is not safe for concurrent use; confine it to one goroutine
// or guard every call with a lock.
type Allocator struct {
	opts    Options
	mapper  Mapper
	log     *slog.Logger
	classes *sizeClassTable

	// Segregated free lists, one per size class
	bins []bin

	// Most recent OS mapping, the placement hint for the next one
	last mapping

	// Live arenas ordered by base address (for Walk, Verify and Stats)
	arenas []arenaRange

	pageBytes uintptr
	stats     Stats
}

// New creates an allocator. A nil opts selects DefaultOptions().
func New(opts *Options) (*Allocator, error) {
	o, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	classes, err := newSizeClassTable(*o.SizeClasses)
	if err != nil {
		return nil, err
	}
	pageBytes := uintptr(o.Mapper.PageSize())
	if pageBytes == 0 || pageBytes%wordBytes != 0 || pageBytes&(pageBytes-1) != 0 {
		return nil, fmt.Errorf("%w: page size %d", ErrBadOptions, pageBytes)
	}
	return &Allocator{
		opts:      o,
		mapper:    o.Mapper,
		log:       o.Logger,
		classes:   classes,
		bins:      make([]bin, classes.NumClasses()),
		pageBytes: pageBytes,
	}, nil
}

// PageSize reports the mapping granularity in bytes.
func (a *Allocator) PageSize() uintptr {
	return a.pageBytes
}

// Malloc returns at least size bytes of uninitialized memory, or nil when size
// is zero or the OS refuses more memory.
func (a *Allocator) Malloc(size uintptr) unsafe.Pointer {
	p, err := a.TryMalloc(size)
	if err != nil {
		a.log.Debug("malloc failed", "size", size, "error", err)
	}
	return p
}

// TryMalloc is Malloc with the failure reason.
func (a *Allocator) TryMalloc(size uintptr) (unsafe.Pointer, error) {
	if size == 0 {
		return nil, ErrZeroSize
	}
	if size > maxRequestBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrOverflow, size)
	}
	c, err := a.alloc(bytesToWords(size))
	if err != nil {
		return nil, err
	}
	return c.payload(), nil
}

// Calloc returns zeroed memory for count elements of size bytes each, or nil
// when either is zero, their product overflows, or the OS refuses more memory.
func (a *Allocator) Calloc(count, size uintptr) unsafe.Pointer {
	p, err := a.TryCalloc(count, size)
	if err != nil {
		a.log.Debug("calloc failed", "count", count, "size", size, "error", err)
	}
	return p
}

// TryCalloc is Calloc with the failure reason.
func (a *Allocator) TryCalloc(count, size uintptr) (unsafe.Pointer, error) {
	if count == 0 || size == 0 {
		return nil, ErrZeroSize
	}
	total, ok := buf.MulOverflowSafe(count, size)
	if !ok {
		return nil, fmt.Errorf("%w: %d * %d", ErrOverflow, count, size)
	}
	p, err := a.TryMalloc(total)
	if err != nil {
		return nil, err
	}
	c := chunkOf(p)
	buf.Zero(p, c.size()*wordBytes)
	return p, nil
}

// Realloc resizes the block at p to at least size bytes, preserving the first
// min(old, new) bytes. Realloc(nil, n) is Malloc(n); Realloc(p, 0) frees p and
// returns nil. When the block has to move, the old block is freed. On failure
// nil is returned and p is left untouched.
func (a *Allocator) Realloc(p unsafe.Pointer, size uintptr) unsafe.Pointer {
	np, err := a.TryRealloc(p, size)
	if err != nil {
		a.log.Debug("realloc failed", "addr", p, "size", size, "error", err)
	}
	return np
}

// TryRealloc is Realloc with the failure reason. Shrinking to zero is not an
// error: it returns (nil, nil).
func (a *Allocator) TryRealloc(p unsafe.Pointer, size uintptr) (unsafe.Pointer, error) {
	if p == nil {
		return a.TryMalloc(size)
	}
	if size == 0 {
		a.Free(p)
		return nil, nil
	}
	if size > maxRequestBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrOverflow, size)
	}
	a.stats.ReallocCalls++
	return a.resize(chunkOf(p), bytesToWords(size))
}

// Free returns the block at p to the allocator. Free(nil) is a no-op.
func (a *Allocator) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	a.stats.FreeCalls++
	a.release(chunkOf(p))
}

// release marks c free, merges it with free neighbors, and either unmaps the
// result or files it on a free list.
func (a *Allocator) release(c *chunk) {
	c.setUsed(false)
	c = a.coalesce(c)

	if c.arenaStart() && c.arenaEnd() && c.bytes()/a.pageBytes >= a.opts.UnmapThresholdPages {
		if a.releaseArena(c) {
			return
		}
	}
	a.insertFree(c)
}

// UsableSize reports how many bytes the block at p can hold, which may exceed
// the size originally requested.
func (a *Allocator) UsableSize(p unsafe.Pointer) uintptr {
	if p == nil {
		return 0
	}
	return chunkOf(p).size() * wordBytes
}

// Bytes views n bytes of a block as a slice. The slice must not be used after
// the block is freed or moved by Realloc.
func Bytes(p unsafe.Pointer, n uintptr) []byte {
	return buf.Bytes(p, n)
}

// alloc finds or maps a chunk with at least words of payload and trims it.
func (a *Allocator) alloc(words uintptr) (*chunk, error) {
	a.stats.AllocCalls++

	if c := a.findFree(words); c != nil {
		a.removeFree(c)
		c.setUsed(true)
		a.shrink(c, words)
		a.stats.FreeListHits++
		return c, nil
	}

	c, err := a.mapChunk(words)
	if err != nil {
		return nil, err
	}
	a.shrink(c, words)
	return c, nil
}

// resize grows or shrinks the used chunk c, trying in order: the chunk
// itself, absorbing a free successor, absorbing a free predecessor (payload
// shifts down), and finally relocation.
func (a *Allocator) resize(c *chunk, words uintptr) (unsafe.Pointer, error) {
	old := c.size()

	if old >= words {
		a.shrink(c, words)
		a.stats.ReallocInPlace++
		return c.payload(), nil
	}

	if !c.arenaEnd() {
		if n := c.next(); !n.used() && old+n.size()+overheadWords >= words {
			end := n.arenaEnd()
			a.removeFree(n)
			c.format(old+n.size()+overheadWords, true, c.arenaStart(), end)
			a.shrink(c, words)
			a.stats.ReallocForward++
			return c.payload(), nil
		}
	}

	if !c.arenaStart() {
		if p := c.prev(); !p.used() && p.size()+old+overheadWords >= words {
			end := c.arenaEnd()
			src := c.payload()
			a.removeFree(p)
			p.format(p.size()+old+overheadWords, true, p.arenaStart(), end)
			buf.Move(p.payload(), src, old*wordBytes)
			a.shrink(p, words)
			a.stats.ReallocBackward++
			return p.payload(), nil
		}
	}

	n, err := a.alloc(words)
	if err != nil {
		return nil, err
	}
	buf.Move(n.payload(), c.payload(), old*wordBytes)
	a.stats.ReallocMoved++
	a.log.Debug("realloc moved", "from", c.payload(), "to", n.payload(), "words", words)
	a.release(c)
	return n.payload(), nil
}
