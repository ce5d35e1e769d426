package malloc

import (
	"sync"
	"unsafe"

	"github.com/joshuapare/pagealloc/alloc"
)

// Default returns the process-wide allocator, creating it on first use.
// It panics if the platform cannot provide anonymous mappings.
var Default = sync.OnceValue(func() *alloc.Allocator {
	a, err := alloc.New(nil)
	if err != nil {
		panic("malloc: " + err.Error())
	}
	return a
})

// Malloc returns at least size bytes of uninitialized memory, or nil.
func Malloc(size uintptr) unsafe.Pointer {
	return Default().Malloc(size)
}

// Calloc returns zeroed memory for count elements of size bytes, or nil.
func Calloc(count, size uintptr) unsafe.Pointer {
	return Default().Calloc(count, size)
}

// Realloc resizes the block at p, moving it if needed.
func Realloc(p unsafe.Pointer, size uintptr) unsafe.Pointer {
	return Default().Realloc(p, size)
}

// Free releases the block at p. Free(nil) is a no-op.
func Free(p unsafe.Pointer) {
	Default().Free(p)
}

// UsableSize reports the capacity of the block at p.
func UsableSize(p unsafe.Pointer) uintptr {
	return Default().UsableSize(p)
}

// Stats returns the default allocator's counters.
func Stats() alloc.Stats {
	return Default().Stats()
}
