package alloc

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joshuapare/pagealloc/internal/osmem"
)

const (
	// defaultMinMapPages is the smallest mapping requested from the OS.
	defaultMinMapPages = 1

	// defaultUnmapThresholdPages is the smallest whole-arena free span handed
	// back to the OS (128KB with 4KB pages).
	defaultUnmapThresholdPages = 32

	// defaultSplitSlackWords is the largest leftover kept inside an allocated
	// chunk instead of being split off.
	defaultSplitSlackWords = 4

	// minSplitSlackWords guarantees a split remainder can hold its free links.
	minSplitSlackWords = overheadWords + minPayloadWords - 1

	// NeverUnmap disables returning memory to the OS when used as UnmapThresholdPages.
	NeverUnmap = ^uintptr(0)
)

// logEnv enables debug logging to stderr for allocators built without an
// explicit Logger.
const logEnv = "PAGEALLOC_LOG"

// Options configures an Allocator.
//
// Zero values select the defaults; use DefaultOptions() to start from them explicitly.
type Options struct {
	// SizeClasses selects the free-list class layout.
	// Default: DefaultConfig (exact classes below 4KB)
	SizeClasses *SizeClassConfig

	// MinMapPages is the minimum number of pages per OS mapping.
	// Default: 1
	MinMapPages uintptr

	// UnmapThresholdPages: a free chunk spanning a whole arena is returned to the
	// OS when it covers at least this many pages.
	// Default: 32
	// Use NeverUnmap to keep every mapping for the allocator's lifetime.
	UnmapThresholdPages uintptr

	// SplitSlackWords: when an allocation leaves more than this many spare
	// words, the spare tail is split off as a free chunk.
	// Default: 4, minimum: 3
	SplitSlackWords uintptr

	// Mapper supplies memory.
	// Default: osmem.New()
	Mapper Mapper

	// Logger receives debug events (mappings, unmaps, failures, relocations).
	// Default: discard, or stderr at debug level when PAGEALLOC_LOG is set.
	Logger *slog.Logger
}

// DefaultOptions returns production defaults.
func DefaultOptions() *Options {
	cfg := DefaultConfig
	return &Options{
		SizeClasses:         &cfg,
		MinMapPages:         defaultMinMapPages,
		UnmapThresholdPages: defaultUnmapThresholdPages,
		SplitSlackWords:     defaultSplitSlackWords,
		Mapper:              osmem.New(),
		Logger:              defaultLogger(),
	}
}

// withDefaults returns a copy of o with zero fields filled in.
func (o *Options) withDefaults() (Options, error) {
	d := DefaultOptions()
	if o == nil {
		return *d, nil
	}
	out := *o
	if out.SizeClasses == nil {
		out.SizeClasses = d.SizeClasses
	}
	if out.MinMapPages == 0 {
		out.MinMapPages = d.MinMapPages
	}
	if out.UnmapThresholdPages == 0 {
		out.UnmapThresholdPages = d.UnmapThresholdPages
	}
	if out.SplitSlackWords == 0 {
		out.SplitSlackWords = d.SplitSlackWords
	}
	if out.SplitSlackWords < minSplitSlackWords {
		return Options{}, fmt.Errorf("%w: SplitSlackWords %d below %d",
			ErrBadOptions, out.SplitSlackWords, minSplitSlackWords)
	}
	if out.Mapper == nil {
		out.Mapper = d.Mapper
	}
	if out.Logger == nil {
		out.Logger = d.Logger
	}
	return out, nil
}

func defaultLogger() *slog.Logger {
	if os.Getenv(logEnv) != "" {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
