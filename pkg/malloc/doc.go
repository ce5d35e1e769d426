/*
Package malloc exposes a process-wide allocator with the classic C entry
points.

# Quick Start

	p := malloc.Malloc(128)
	defer malloc.Free(p)

	buf := alloc.Bytes(p, 128)
	copy(buf, "hello")

The default instance is created on first use from alloc.DefaultOptions().
Set PAGEALLOC_LOG in the environment before the first call to get debug
logging on stderr.

# Thread Safety

The default allocator is NOT safe for concurrent use. Every call must come
from one goroutine, or callers must serialize access themselves. Programs
that need independent heaps should build their own with alloc.New.

# Go Pointers

Returned memory lives outside the Go heap and is invisible to the garbage
collector. Never store Go pointers in it.
*/
package malloc
