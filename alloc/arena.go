package alloc

import (
	"fmt"
	"slices"
	"unsafe"

	"github.com/joshuapare/pagealloc/internal/buf"
)

// arenaRange is one arena: a run of contiguous mapped memory.
type arenaRange struct {
	base  unsafe.Pointer
	bytes uintptr
}

func (r arenaRange) start() uintptr { return uintptr(r.base) }
func (r arenaRange) end() uintptr   { return uintptr(r.base) + r.bytes }

// mapping records the most recent OS mapping, used as the placement hint for
// the next one.
type mapping struct {
	base  unsafe.Pointer
	bytes uintptr
}

// mapChunk obtains fresh memory holding at least words of payload and returns
// it as a single used chunk. When the OS places the mapping right after the
// previous one, the new memory joins that mapping's arena and absorbs its
// tail chunk if it is free. On failure no allocator state is touched.
func (a *Allocator) mapChunk(words uintptr) (*chunk, error) {
	pageWords := a.pageBytes / wordBytes
	need, ok := buf.AddOverflowSafe(words, overheadWords)
	if !ok {
		return nil, fmt.Errorf("%w: %d words", ErrOverflow, words)
	}
	pages := max(buf.CeilDiv(need, pageWords), a.opts.MinMapPages)
	length, ok := buf.MulOverflowSafe(pages, a.pageBytes)
	if !ok {
		return nil, fmt.Errorf("%w: %d pages", ErrOverflow, pages)
	}

	var hint unsafe.Pointer
	if a.last.base != nil {
		hint = unsafe.Add(a.last.base, a.last.bytes)
	}

	p, err := a.mapper.Map(hint, length)
	if err != nil {
		a.stats.MapFailures++
		a.log.Debug("map failed", "bytes", length, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrMapFailed, err)
	}
	a.stats.Maps++
	a.stats.MappedBytes += length

	avail := pages*pageWords - overheadWords
	c := (*chunk)(p)

	if hint != nil && p == hint {
		tail := c.prevFooter()
		if !tail.used() {
			prev := c.prev()
			a.removeFree(prev)
			avail += prev.size() + overheadWords
			c = prev
			c.format(avail, true, prev.arenaStart(), true)
		} else {
			*tail = tail.withBoundary(false)
			c.format(avail, true, false, true)
		}
		a.extendArena(uintptr(hint), length)
		a.stats.Extensions++
		a.log.Debug("mapping extends arena", "addr", p, "bytes", length)
	} else {
		c.format(avail, true, true, true)
		a.addArena(p, length)
		a.log.Debug("new arena", "addr", p, "bytes", length)
	}

	a.last = mapping{base: p, bytes: length}
	return c, nil
}

// releaseArena hands the whole-arena free chunk c back to the OS. It reports
// false, leaving c intact, when the OS refuses.
func (a *Allocator) releaseArena(c *chunk) bool {
	base := unsafe.Pointer(c)
	length := c.bytes()
	if err := a.mapper.Unmap(base, length); err != nil {
		a.log.Debug("unmap failed", "addr", base, "bytes", length, "error", err)
		return false
	}
	a.stats.Unmaps++
	a.stats.MappedBytes -= length
	a.removeArena(base)

	lo, hi := uintptr(base), uintptr(base)+length
	if last := uintptr(a.last.base); last >= lo && last < hi {
		a.last = mapping{}
	}
	a.log.Debug("arena released", "addr", base, "bytes", length)
	return true
}

func (a *Allocator) arenaIndex(start uintptr) (int, bool) {
	return slices.BinarySearchFunc(a.arenas, start, func(r arenaRange, s uintptr) int {
		switch {
		case r.start() < s:
			return -1
		case r.start() > s:
			return 1
		default:
			return 0
		}
	})
}

func (a *Allocator) addArena(base unsafe.Pointer, length uintptr) {
	i, _ := a.arenaIndex(uintptr(base))
	a.arenas = slices.Insert(a.arenas, i, arenaRange{base: base, bytes: length})
}

// extendArena grows the arena ending at end by length bytes.
func (a *Allocator) extendArena(end, length uintptr) {
	i, _ := a.arenaIndex(end)
	if i > 0 && a.arenas[i-1].end() == end {
		a.arenas[i-1].bytes += length
	}
}

func (a *Allocator) removeArena(base unsafe.Pointer) {
	if i, ok := a.arenaIndex(uintptr(base)); ok {
		a.arenas = slices.Delete(a.arenas, i, i+1)
	}
}
