package alloc

import "errors"

var (
	// ErrZeroSize indicates a zero-byte Malloc or a Calloc with a zero count or element size.
	ErrZeroSize = errors.New("alloc: zero-sized request")

	// ErrOverflow indicates a request whose byte count cannot be represented.
	ErrOverflow = errors.New("alloc: size overflows")

	// ErrMapFailed indicates that the OS refused a new mapping. Allocator state is unchanged.
	ErrMapFailed = errors.New("alloc: os mapping failed")

	// ErrBadOptions indicates an invalid Options or SizeClassConfig value.
	ErrBadOptions = errors.New("alloc: invalid options")

	// ErrCorrupt is returned by Verify when chunk or free-list metadata is inconsistent.
	ErrCorrupt = errors.New("alloc: heap metadata corrupt")
)
