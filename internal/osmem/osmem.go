// Package osmem provides the OS-facing half of the allocator: anonymous,
// private, read-write page mappings and their release.
package osmem

import "errors"

// ErrUnsupported is returned on platforms without anonymous mmap support.
var ErrUnsupported = errors.New("osmem: anonymous mappings not supported on this platform")

// Mapper requests and releases page-aligned memory from the operating system.
type Mapper struct{}

// New returns a Mapper backed by the host OS.
func New() *Mapper {
	return &Mapper{}
}
