// Package alloc provides a general-purpose memory allocator backed directly by
// anonymous OS mappings.
//
// # Overview
//
// The allocator implements the malloc family (Malloc, Calloc, Realloc, Free)
// with boundary-tag chunks, segregated free lists, split-on-allocate and
// coalesce-on-free. Memory comes from page-aligned mmap calls, never from the
// Go heap, so returned pointers are real machine addresses that stay put.
//
// # Chunk Layout
//
// Every chunk is a header word, a payload, and a footer word:
//
//	+--------+---------------------------+--------+
//	| header | payload (size words)      | footer |
//	+--------+---------------------------+--------+
//
// Header and footer both hold the payload size in words and the in-use bit.
// The second-highest bit is the arena-boundary flag: on a header it marks the
// first chunk of an arena, on a footer the last. Because the footer of each
// chunk sits right before the next header, either neighbor can be found with
// address arithmetic alone.
//
// A free chunk reuses its first two payload words as next/prev links, so the
// minimum payload is two words.
//
// # Size Classes
//
// With the default configuration on 64-bit:
//
//	Class   0 - 509:  exactly 2 - 511 words (16 - 4088 bytes)
//	Class 510 - 528:  [2^k, 2^(k+1)) words for k = 9..27
//	Class 529:        2^28 words and larger
//
// Each bin is kept sorted by size. Allocation scans from the request's own
// class upward and takes the first chunk that fits.
//
// # Arenas
//
// When no free chunk fits, the allocator maps enough whole pages for the
// request, passing the end of its previous mapping as a placement hint. If
// the OS honors the hint, the new pages extend the previous arena and absorb
// its free tail. A free chunk that covers an entire arena of at least
// UnmapThresholdPages pages is unmapped on Free.
//
// # Usage Example
//
//	a, err := alloc.New(nil)
//	if err != nil {
//	    return err
//	}
//
//	p := a.Malloc(128)
//	b := alloc.Bytes(p, 128)
//	copy(b, "hello")
//
//	p = a.Realloc(p, 4096)
//	a.Free(p)
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Callers must synchronize access
// externally, or use one Allocator per goroutine.
//
// # Go Pointers
//
// Allocated memory is invisible to the garbage collector. Never store Go
// pointers (or values containing them) in it.
//
// # Debugging
//
// Set PAGEALLOC_LOG=1 to log mappings, unmaps, and failures to stderr for
// allocators created without an explicit Options.Logger. Verify checks every
// heap invariant and is cheap enough to call after each step in tests.
package alloc
