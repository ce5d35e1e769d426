package alloc

import "unsafe"

// Mapper is the OS-facing interface the allocator draws memory from.
//
// Implementations:
//   - osmem.Mapper: anonymous private mappings via mmap/munmap
//   - test mappers that carve a reserved region or inject failures
type Mapper interface {
	// Map returns length bytes of zeroed, page-aligned, read-write memory.
	// hint is where the caller would like the mapping placed; it may be ignored.
	Map(hint unsafe.Pointer, length uintptr) (unsafe.Pointer, error)

	// Unmap releases length bytes at addr. The range may cover several
	// adjacent mappings returned by Map.
	Unmap(addr unsafe.Pointer, length uintptr) error

	// PageSize reports the mapping granularity in bytes.
	PageSize() int
}
