package buf

import (
	"testing"
	"unsafe"
)

const maxUintptr = ^uintptr(0)

func TestAddOverflowSafe(t *testing.T) {
	if sum, ok := AddOverflowSafe(10, 5); !ok || sum != 15 {
		t.Fatalf("AddOverflowSafe(10,5)=%d,%v want 15,true", sum, ok)
	}
	if _, ok := AddOverflowSafe(maxUintptr, 1); ok {
		t.Fatalf("expected overflow when adding to MaxUint")
	}
}

func TestMulOverflowSafe(t *testing.T) {
	if p, ok := MulOverflowSafe(6, 7); !ok || p != 42 {
		t.Fatalf("MulOverflowSafe(6,7)=%d,%v want 42,true", p, ok)
	}
	if p, ok := MulOverflowSafe(0, maxUintptr); !ok || p != 0 {
		t.Fatalf("MulOverflowSafe(0,max)=%d,%v want 0,true", p, ok)
	}
	if _, ok := MulOverflowSafe(maxUintptr, 2); ok {
		t.Fatalf("expected overflow for MaxUint*2")
	}
	half := uintptr(1) << (unsafe.Sizeof(uintptr(0)) * 4)
	if _, ok := MulOverflowSafe(half, half); ok {
		t.Fatalf("expected overflow for half-width squared")
	}
}

func TestCeilDivAndLog2(t *testing.T) {
	cases := []struct{ x, y, want uintptr }{
		{0, 8, 0},
		{1, 8, 1},
		{8, 8, 1},
		{9, 8, 2},
		{4096, 4096, 1},
		{4097, 4096, 2},
	}
	for _, c := range cases {
		if got := CeilDiv(c.x, c.y); got != c.want {
			t.Fatalf("CeilDiv(%d,%d)=%d want %d", c.x, c.y, got, c.want)
		}
	}

	logs := map[uintptr]int{0: 0, 1: 0, 2: 1, 3: 1, 4: 2, 511: 8, 512: 9, 1 << 30: 30}
	for x, want := range logs {
		if got := Log2(x); got != want {
			t.Fatalf("Log2(%d)=%d want %d", x, got, want)
		}
	}
}
