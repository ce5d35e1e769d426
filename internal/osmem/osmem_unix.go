//go:build linux || darwin

package osmem

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Map creates an anonymous private read-write mapping of length bytes. hint is
// a placement suggestion; the kernel is free to ignore it. length should be a
// multiple of PageSize.
func (m *Mapper) Map(hint unsafe.Pointer, length uintptr) (unsafe.Pointer, error) {
	if length == 0 {
		return nil, fmt.Errorf("osmem: map: %w", unix.EINVAL)
	}
	p, err := unix.MmapPtr(-1, 0, hint, length,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("osmem: map %d bytes: %w", length, err)
	}
	return p, nil
}

// Unmap releases length bytes starting at addr. The range may span several
// adjacent mappings.
func (m *Mapper) Unmap(addr unsafe.Pointer, length uintptr) error {
	if addr == nil || length == 0 {
		return nil
	}
	if err := unix.MunmapPtr(addr, length); err != nil {
		return fmt.Errorf("osmem: unmap %p (%d bytes): %w", addr, length, err)
	}
	return nil
}

// PageSize reports the OS page size in bytes.
func (m *Mapper) PageSize() int {
	return unix.Getpagesize()
}
