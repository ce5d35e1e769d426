package alloc

import (
	"fmt"
	"unsafe"
)

// ChunkInfo describes one chunk for Walk.
type ChunkInfo struct {
	Payload    unsafe.Pointer // first payload byte
	Size       uintptr        // payload bytes
	Used       bool
	ArenaStart bool // first chunk of its arena
	ArenaEnd   bool // last chunk of its arena
}

// Walk visits every chunk of every arena in address order until fn returns
// false. The heap must not be modified during the walk.
func (a *Allocator) Walk(fn func(ChunkInfo) bool) {
	for _, r := range a.arenas {
		end := r.end()
		c := (*chunk)(r.base)
		for {
			info := ChunkInfo{
				Payload:    c.payload(),
				Size:       c.size() * wordBytes,
				Used:       c.used(),
				ArenaStart: c.arenaStart(),
				ArenaEnd:   c.arenaEnd(),
			}
			if !fn(info) {
				return
			}
			if info.ArenaEnd || uintptr(unsafe.Pointer(c))+c.bytes() >= end {
				break
			}
			c = c.next()
		}
	}
}

// Verify checks every structural invariant of the heap:
//   - header and footer of each chunk agree on size and in-use state
//   - each arena starts with a start-boundary chunk and ends exactly at its
//     end-boundary chunk, with no boundary flags in between
//   - no two physically adjacent chunks are both free
//   - every free chunk is on exactly the bin its size maps to, bins are sorted
//     by size, and prev links mirror next links with a nil prev at each head
//
// It returns an error wrapping ErrCorrupt describing the first violation found.
func (a *Allocator) Verify() error {
	physicalFree := 0
	for _, r := range a.arenas {
		n, err := a.verifyArena(r)
		if err != nil {
			return err
		}
		physicalFree += n
	}

	listed := 0
	for sc := range a.bins {
		b := &a.bins[sc]
		n := 0
		var prev *chunk
		for c := b.head; c != nil; c = c.links().next {
			if c.used() {
				return fmt.Errorf("%w: bin %d holds used chunk %p", ErrCorrupt, sc, c)
			}
			if got := a.classes.classOf(c.size()); got != sc {
				return fmt.Errorf("%w: chunk %p of %d words filed in bin %d, want %d",
					ErrCorrupt, c, c.size(), sc, got)
			}
			if c.links().prev != prev {
				return fmt.Errorf("%w: bin %d chunk %p prev link %p, want %p",
					ErrCorrupt, sc, c, c.links().prev, prev)
			}
			if prev != nil && prev.size() > c.size() {
				return fmt.Errorf("%w: bin %d out of order: %d words before %d",
					ErrCorrupt, sc, prev.size(), c.size())
			}
			if !a.owns(c) {
				return fmt.Errorf("%w: bin %d chunk %p outside every arena", ErrCorrupt, sc, c)
			}
			prev = c
			n++
		}
		if n != b.count {
			return fmt.Errorf("%w: bin %d count %d, walked %d", ErrCorrupt, sc, b.count, n)
		}
		listed += n
	}

	if listed != physicalFree {
		return fmt.Errorf("%w: %d free chunks in arenas, %d on free lists",
			ErrCorrupt, physicalFree, listed)
	}
	return nil
}

// verifyArena checks the chunk chain of one arena and returns its free chunk count.
func (a *Allocator) verifyArena(r arenaRange) (int, error) {
	free := 0
	end := r.end()
	c := (*chunk)(r.base)
	if !c.arenaStart() {
		return 0, fmt.Errorf("%w: arena %p first chunk lacks start boundary", ErrCorrupt, r.base)
	}

	prevFree := false
	for {
		addr := uintptr(unsafe.Pointer(c))
		if c.size() < minPayloadWords || c.size()+overheadWords > (end-addr)/wordBytes {
			return 0, fmt.Errorf("%w: chunk %p size %d words overruns arena %p",
				ErrCorrupt, c, c.size(), r.base)
		}
		f := c.footer()
		if f.size() != c.size() || f.used() != c.used() {
			return 0, fmt.Errorf("%w: chunk %p header (%d,%v) != footer (%d,%v)",
				ErrCorrupt, c, c.size(), c.used(), f.size(), f.used())
		}
		if addr != r.start() && c.arenaStart() {
			return 0, fmt.Errorf("%w: chunk %p has start boundary inside arena", ErrCorrupt, c)
		}
		if !c.used() {
			if prevFree {
				return 0, fmt.Errorf("%w: chunk %p and its predecessor are both free",
					ErrCorrupt, c)
			}
			free++
		}
		prevFree = !c.used()

		next := addr + c.bytes()
		if f.boundary() {
			if next != end {
				return 0, fmt.Errorf("%w: chunk %p ends arena at %#x, arena ends at %#x",
					ErrCorrupt, c, next, end)
			}
			return free, nil
		}
		if next >= end {
			return 0, fmt.Errorf("%w: arena %p has no end boundary", ErrCorrupt, r.base)
		}
		c = c.next()
	}
}

// owns reports whether c lies inside a live arena.
func (a *Allocator) owns(c *chunk) bool {
	addr := uintptr(unsafe.Pointer(c))
	i, found := a.arenaIndex(addr)
	if found {
		return true
	}
	return i > 0 && addr < a.arenas[i-1].end()
}
