// Package buf contains overflow-safe size arithmetic and raw memory helpers
// shared by the allocator packages.
package buf

// AddOverflowSafe adds a and b, returning ok = false when the result would wrap.
func AddOverflowSafe(a, b uintptr) (uintptr, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}

// MulOverflowSafe multiplies a and b, returning ok = false when the result would wrap.
// The check divides the product back, which is what count * elementSize
// validation in Calloc relies on.
func MulOverflowSafe(a, b uintptr) (uintptr, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	if p/a != b {
		return 0, false
	}
	return p, true
}

// CeilDiv returns x / y rounded up. y must be non-zero.
func CeilDiv(x, y uintptr) uintptr {
	return (x + y - 1) / y
}

// Log2 returns floor(log2(x)) for x > 0, and 0 for x == 0.
func Log2(x uintptr) int {
	n := 0
	for x >>= 1; x != 0; x >>= 1 {
		n++
	}
	return n
}
