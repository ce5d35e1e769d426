package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/pagealloc/alloc"
)

var (
	classesConfig string
	classesAll    bool
)

func init() {
	cmd := newClassesCmd()
	cmd.Flags().StringVar(&classesConfig, "config", alloc.DefaultConfig.Name, "Size-class preset (Fine or Compact)")
	cmd.Flags().BoolVar(&classesAll, "all", false, "List every exact class instead of a summary line")
	rootCmd.AddCommand(cmd)
}

func newClassesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classes",
		Short: "Print the free-list size classes",
		Long: `The classes command prints the bins a free chunk can be filed under.
Exact classes hold a single payload size; logarithmic classes hold a
power-of-two range, and the last class holds everything larger.

Example:
  pagectl classes
  pagectl classes --config compact --all
  pagectl classes --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClasses()
		},
	}
	return cmd
}

func runClasses() error {
	cfg, err := sizeClassConfig(classesConfig)
	if err != nil {
		return err
	}
	classes, err := alloc.SizeClasses(cfg)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(classes)
	}

	exact := 0
	for _, c := range classes {
		if c.Exact {
			exact++
		}
	}
	printInfo("Size classes (%s): %d bins, %d exact\n\n", cfg.Name, len(classes), exact)
	printInfo("  %-6s %-12s %-12s %s\n", "Class", "Min", "Max", "Kind")

	for _, c := range classes {
		if c.Exact && !classesAll {
			continue
		}
		printInfo("  %-6d %-12d %-12s %s\n", c.Index, c.MinBytes, maxLabel(c.MaxBytes), kindLabel(c.Exact))
	}
	if exact > 0 && !classesAll {
		first, last := classes[0], classes[exact-1]
		printInfo("  (classes %d-%d: exact, %d..%d bytes; use --all to list)\n",
			first.Index, last.Index, first.MinBytes, last.MaxBytes)
	}
	return nil
}

func maxLabel(b uintptr) string {
	if b == 0 {
		return "unbounded"
	}
	return fmt.Sprint(b)
}

func kindLabel(exact bool) string {
	if exact {
		return "exact"
	}
	return "log2"
}
