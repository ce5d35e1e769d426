package alloc

import (
	"fmt"
	"io"
)

// Stats holds allocator counters plus a snapshot of mapped and free memory.
type Stats struct {
	AllocCalls   int // Internal allocations (Malloc, Calloc, relocating Realloc)
	FreeListHits int // Allocations served without a new mapping
	FreeCalls    int // Free() calls with a non-nil pointer
	ReallocCalls int // Realloc() calls that resized an existing block

	ReallocInPlace  int // Realloc satisfied by the chunk itself
	ReallocForward  int // Realloc grown into a free successor
	ReallocBackward int // Realloc grown into a free predecessor
	ReallocMoved    int // Realloc that relocated the payload

	Splits           int // Chunks split on allocation
	CoalesceForward  int // Merges with a free successor
	CoalesceBackward int // Merges with a free predecessor

	Maps        int     // Successful OS mappings
	MapFailures int     // Refused OS mappings
	Extensions  int     // Mappings that landed right after the previous one
	Unmaps      int     // Arenas returned to the OS
	MappedBytes uintptr // Bytes currently mapped

	// Snapshot fields, computed by Stats()
	Arenas     int     // Live arenas
	FreeChunks int     // Chunks on the free lists
	FreeBytes  uintptr // Payload bytes on the free lists
}

// Stats returns counters and a free-list snapshot. It walks every bin, so it
// costs O(free chunks).
func (a *Allocator) Stats() Stats {
	s := a.stats
	s.Arenas = len(a.arenas)
	for i := range a.bins {
		for c := a.bins[i].head; c != nil; c = c.links().next {
			s.FreeChunks++
			s.FreeBytes += c.size() * wordBytes
		}
	}
	return s
}

// WriteTo prints the statistics in a fixed-width layout.
func (s Stats) WriteTo(w io.Writer) (int64, error) {
	var total int64
	lines := []struct {
		name string
		val  any
	}{
		{"Alloc calls", s.AllocCalls},
		{"Free-list hits", s.FreeListHits},
		{"Free calls", s.FreeCalls},
		{"Realloc calls", s.ReallocCalls},
		{"  in place", s.ReallocInPlace},
		{"  forward", s.ReallocForward},
		{"  backward", s.ReallocBackward},
		{"  moved", s.ReallocMoved},
		{"Splits", s.Splits},
		{"Coalesce fwd", s.CoalesceForward},
		{"Coalesce back", s.CoalesceBackward},
		{"Maps", s.Maps},
		{"Map failures", s.MapFailures},
		{"Extensions", s.Extensions},
		{"Unmaps", s.Unmaps},
		{"Mapped bytes", s.MappedBytes},
		{"Arenas", s.Arenas},
		{"Free chunks", s.FreeChunks},
		{"Free bytes", s.FreeBytes},
	}
	for _, l := range lines {
		n, err := fmt.Fprintf(w, "%-16s %v\n", l.name+":", l.val)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
