package main

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/spf13/cobra"

	"github.com/joshuapare/pagealloc/alloc"
)

const wordBytes = unsafe.Sizeof(uintptr(0))

var (
	demoWords int
)

func init() {
	cmd := newDemoCmd()
	cmd.Flags().IntVar(&demoWords, "words", 0, "Words to dump per step (default: one page)")
	rootCmd.AddCommand(cmd)
}

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Replay the classic heap demo and dump raw memory",
		Long: `The demo command allocates 2048, 2000, 2048, 1024 and 512 bytes in order
and after each step prints the page holding the most recent "anchor" block as
raw machine words. The first and third allocations become the anchor, so the
dump shows headers, footers, free-list links and payloads as the heap grows.

Example:
  pagectl demo
  pagectl demo --words 16
  pagectl demo --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo()
		},
	}
	return cmd
}

// demoStep is one allocation in the demo sequence.
type demoStep struct {
	Request uintptr   `json:"request"`
	Addr    uintptr   `json:"addr"`
	Anchor  uintptr   `json:"anchor"`
	Words   []uintptr `json:"words"`
}

var demoSequence = []struct {
	size   uintptr
	anchor bool
}{
	{2048, true},
	{2000, false},
	{2048, true},
	{1024, false},
	{512, false},
}

func runDemo() error {
	a, err := newAllocator(nil)
	if err != nil {
		return err
	}

	page := a.PageSize()
	n := int(page / wordBytes)
	if demoWords > 0 && demoWords < n {
		n = demoWords
	}

	var (
		anchor unsafe.Pointer
		steps  []demoStep
	)
	for _, s := range demoSequence {
		p, err := a.TryMalloc(s.size)
		if err != nil {
			return fmt.Errorf("malloc(%d): %w", s.size, err)
		}
		if s.anchor {
			// Start of the page holding p.
			anchor = unsafe.Add(p, -int(uintptr(p)&(page-1)))
		}
		words := make([]uintptr, n)
		copy(words, unsafe.Slice((*uintptr)(anchor), n))
		steps = append(steps, demoStep{
			Request: s.size,
			Addr:    uintptr(p),
			Anchor:  uintptr(anchor),
			Words:   words,
		})
		size, used, start := alloc.DecodeTag(*(*uintptr)(unsafe.Add(p, -int(wordBytes))))
		printVerbose("malloc(%d) = %#x [%d words, used=%v, arena start=%v]\n",
			s.size, uintptr(p), size, used, start)
	}

	if err := a.Verify(); err != nil {
		return fmt.Errorf("heap check failed: %w", err)
	}

	if jsonOut {
		return printJSON(steps)
	}
	for _, s := range steps {
		printInfo("%s\n\n", formatWords(s.Words))
	}
	return nil
}

// formatWords renders words as a brace-enclosed decimal list.
func formatWords(words []uintptr) string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, w := range words {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%d", w)
	}
	sb.WriteString("}")
	return sb.String()
}
