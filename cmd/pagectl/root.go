package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/pagealloc/alloc"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
)

var rootCmd = &cobra.Command{
	Use:   "pagectl",
	Short: "Exercise and inspect the page-backed allocator",
	Long: `pagectl drives the boundary-tag allocator from the command line. It can
replay the classic heap demo, print the size-class layout, and run randomized
workloads that verify the heap after every step.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and allocator debug logs")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// logger returns the allocator logger selected by --verbose.
func logger() *slog.Logger {
	if verbose {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newAllocator builds an allocator wired to the CLI logger.
func newAllocator(opts *alloc.Options) (*alloc.Allocator, error) {
	if opts == nil {
		opts = alloc.DefaultOptions()
	}
	opts.Logger = logger()
	a, err := alloc.New(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create allocator: %w", err)
	}
	return a, nil
}

// sizeClassConfig resolves a preset name.
func sizeClassConfig(name string) (alloc.SizeClassConfig, error) {
	for _, c := range []alloc.SizeClassConfig{alloc.ConfigFine, alloc.ConfigCompact} {
		if strings.EqualFold(name, c.Name) {
			return c, nil
		}
	}
	return alloc.SizeClassConfig{}, fmt.Errorf("unknown size-class preset %q (want %q or %q)",
		name, alloc.ConfigFine.Name, alloc.ConfigCompact.Name)
}

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
