package main

import (
	"strings"
	"testing"
	"unsafe"

	"github.com/joshuapare/pagealloc/alloc"
)

func TestDemoCommand(t *testing.T) {
	resetFlags()
	demoWords = 8

	output, err := captureOutput(t, runDemo)
	if err != nil {
		t.Fatalf("runDemo() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(output), "\n\n")
	if len(lines) != len(demoSequence) {
		t.Fatalf("got %d dumps, want %d\nOutput: %s", len(lines), len(demoSequence), output)
	}
	for i, l := range lines {
		if !strings.HasPrefix(l, "{") || !strings.HasSuffix(l, "}") {
			t.Errorf("dump %d not brace-enclosed: %q", i, l)
		}
		if n := strings.Count(l, ",") + 1; n != demoWords {
			t.Errorf("dump %d has %d words, want %d", i, n, demoWords)
		}
	}
}

func TestDemoCommand_JSON(t *testing.T) {
	resetFlags()
	jsonOut = true
	demoWords = 4

	output, err := captureOutput(t, runDemo)
	if err != nil {
		t.Fatalf("runDemo() error = %v", err)
	}

	var steps []demoStep
	assertJSON(t, output, &steps)
	if len(steps) != len(demoSequence) {
		t.Fatalf("got %d steps, want %d", len(steps), len(demoSequence))
	}

	// The first block's header sits at the start of its page.
	first := steps[0]
	if first.Addr-first.Anchor != uintptr(unsafe.Sizeof(uintptr(0))) {
		t.Errorf("first block at %#x, page at %#x", first.Addr, first.Anchor)
	}
	size, used, start := alloc.DecodeTag(first.Words[0])
	if size != 2048/wordBytes || !used || !start {
		t.Errorf("first header = (%d, %v, %v), want (%d, true, true)", size, used, start, 2048/wordBytes)
	}
	if steps[1].Anchor != first.Anchor {
		t.Errorf("second step moved the anchor")
	}
}

func TestFormatWords(t *testing.T) {
	tests := []struct {
		in   []uintptr
		want string
	}{
		{nil, "{}"},
		{[]uintptr{7}, "{7}"},
		{[]uintptr{1, 2, 3}, "{1, 2, 3}"},
	}
	for _, tt := range tests {
		if got := formatWords(tt.in); got != tt.want {
			t.Errorf("formatWords(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
