//go:build !linux && !darwin

package osmem

import (
	"os"
	"unsafe"
)

// Map is unavailable on this platform.
func (m *Mapper) Map(unsafe.Pointer, uintptr) (unsafe.Pointer, error) {
	return nil, ErrUnsupported
}

// Unmap is unavailable on this platform.
func (m *Mapper) Unmap(unsafe.Pointer, uintptr) error {
	return ErrUnsupported
}

// PageSize reports the OS page size in bytes.
func (m *Mapper) PageSize() int {
	return os.Getpagesize()
}
