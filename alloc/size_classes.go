package alloc

import (
	"fmt"

	"github.com/joshuapare/pagealloc/internal/buf"
)

// SizeClassConfig defines the free-list size class strategy.
//
// Chunks smaller than the small-chunk cutoff get one exact class per word.
// Larger chunks are bucketed by floor(log2(words)), with the first logarithmic
// class placed immediately after the last exact class.
type SizeClassConfig struct {
	// Name for this configuration (for benchmarking and CLI output)
	Name string

	// SmallChunkShift is log2 of the exact-class cutoff in bytes.
	// 12 means chunks below 4096 bytes each have their own class.
	SmallChunkShift uint

	// MaxBinShift is log2 of the largest distinguished chunk size in bytes.
	// Anything larger shares the last class.
	MaxBinShift uint
}

// Predefined configurations.
var (
	// ConfigFine keeps an exact class for every word count below 4KB:
	// 510 exact classes + 20 logarithmic classes on 64-bit.
	ConfigFine = SizeClassConfig{
		Name:            "Fine",
		SmallChunkShift: 12,
		MaxBinShift:     31,
	}

	// ConfigCompact cuts exact classes off at 512 bytes, trading precision for
	// a much shorter bin array.
	ConfigCompact = SizeClassConfig{
		Name:            "Compact",
		SmallChunkShift: 9,
		MaxBinShift:     31,
	}

	// DefaultConfig is used when Options.SizeClasses is nil.
	DefaultConfig = ConfigFine
)

// sizeClassTable holds the derived class layout.
type sizeClassTable struct {
	config     SizeClassConfig
	smallWords uintptr // exact-class cutoff in words (power of two)
	smallLog   int     // log2(smallWords)
	offset     int     // added to log2(words) for logarithmic classes
	numClasses int
}

// newSizeClassTable computes the class layout from config.
func newSizeClassTable(config SizeClassConfig) (*sizeClassTable, error) {
	wordShift := uint(buf.Log2(wordBytes))
	maxShift := uint(wordBytes*8 - 2)
	if config.SmallChunkShift < wordShift+2 || config.SmallChunkShift > maxShift {
		return nil, fmt.Errorf("%w: SmallChunkShift %d out of range [%d, %d]",
			ErrBadOptions, config.SmallChunkShift, wordShift+2, maxShift)
	}
	if config.MaxBinShift < config.SmallChunkShift || config.MaxBinShift > maxShift {
		return nil, fmt.Errorf("%w: MaxBinShift %d out of range [%d, %d]",
			ErrBadOptions, config.MaxBinShift, config.SmallChunkShift, maxShift)
	}

	smallWords := uintptr(1) << (config.SmallChunkShift - wordShift)
	smallLog := int(config.SmallChunkShift - wordShift)
	maxLog := int(config.MaxBinShift - wordShift)

	return &sizeClassTable{
		config:     config,
		smallWords: smallWords,
		smallLog:   smallLog,
		offset:     int(smallWords) - minPayloadWords - smallLog,
		numClasses: int(smallWords) - minPayloadWords + maxLog - smallLog + 1,
	}, nil
}

// classOf returns the bin index for a chunk of the given payload word count.
func (t *sizeClassTable) classOf(words uintptr) int {
	if words < minPayloadWords {
		return 0
	}
	if words < t.smallWords {
		return int(words - minPayloadWords)
	}
	c := buf.Log2(words) + t.offset
	if c >= t.numClasses {
		return t.numClasses - 1
	}
	return c
}

// minWords returns the smallest payload word count filed under class c.
func (t *sizeClassTable) minWords(c int) uintptr {
	if c < int(t.smallWords)-minPayloadWords {
		return uintptr(c + minPayloadWords)
	}
	return uintptr(1) << (c - t.offset)
}

// String returns a human-readable description of the size class table.
func (t *sizeClassTable) String() string {
	return t.config.Name
}

// NumClasses returns the number of bins.
func (t *sizeClassTable) NumClasses() int {
	return t.numClasses
}

// SizeClass describes one bin for reporting.
type SizeClass struct {
	Index    int
	MinBytes uintptr // smallest payload in bytes filed here
	MaxBytes uintptr // largest payload in bytes filed here; 0 means unbounded
	Exact    bool
}

// SizeClasses lists the bins an allocator built from config would use.
func SizeClasses(config SizeClassConfig) ([]SizeClass, error) {
	t, err := newSizeClassTable(config)
	if err != nil {
		return nil, err
	}
	out := make([]SizeClass, t.numClasses)
	for c := range t.numClasses {
		sc := SizeClass{
			Index:    c,
			MinBytes: t.minWords(c) * wordBytes,
			Exact:    c < int(t.smallWords)-minPayloadWords,
		}
		if c < t.numClasses-1 {
			sc.MaxBytes = (t.minWords(c+1) - 1) * wordBytes
		}
		out[c] = sc
	}
	return out, nil
}
