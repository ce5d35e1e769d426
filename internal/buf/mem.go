package buf

import "unsafe"

// Bytes views n bytes starting at p. The memory is not owned by the Go heap;
// the slice is only valid while the backing mapping is alive.
func Bytes(p unsafe.Pointer, n uintptr) []byte {
	if p == nil || n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(p), n)
}

// Move copies n bytes from src to dst. The ranges may overlap.
func Move(dst, src unsafe.Pointer, n uintptr) {
	if n == 0 || dst == src {
		return
	}
	copy(Bytes(dst, n), Bytes(src, n))
}

// Zero clears n bytes starting at p.
func Zero(p unsafe.Pointer, n uintptr) {
	clear(Bytes(p, n))
}
