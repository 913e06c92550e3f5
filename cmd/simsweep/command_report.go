package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/flowlab/simsweep/internal/loader"
	"github.com/flowlab/simsweep/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize the cumulative sweep report",
	RunE: func(cmd *cobra.Command, args []string) error {
		return summarizeReport()
	},
}

func registerReportCommand(root *cobra.Command) {
	root.AddCommand(reportCmd)
}

func summarizeReport() error {
	spec, err := loader.LoadSweepSpec(specFile)
	if err != nil {
		return fmt.Errorf("failed to load sweep spec: %w", err)
	}

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	outDir, err := filepath.Abs(spec.OutDir)
	if err != nil {
		return fmt.Errorf("failed to resolve output directory: %w", err)
	}

	agg := report.NewAggregator(outDir, true, log)
	rep, err := agg.Load()
	if err != nil {
		return err
	}
	if rep == nil {
		return fmt.Errorf("no report found at %s; run the sweep first", agg.Path())
	}

	if rep.Overall.StartTime != "" {
		fmt.Printf("Last run: %s → %s (%s)\n", rep.Overall.StartTime, rep.Overall.EndTime, rep.Overall.TotalWallTime)
	}

	for _, h := range rep.Hierarchies {
		fmt.Printf("\n[Hierarchy] %s\n", h.Name)
		for _, c := range h.Cases {
			fmt.Printf("  Case: %s\n", c.Name)
			for _, s := range c.Scenarios {
				fmt.Printf("    Scenario: %s\n", s.Name)

				levels := make([]string, 0, len(s.Levels))
				for name := range s.Levels {
					levels = append(levels, name)
				}
				sort.Strings(levels)

				for _, name := range levels {
					lvl := s.Levels[name]
					glyph := "✓"
					if len(lvl.FailedAoA) > 0 {
						glyph = "□"
					}
					fmt.Printf("      %s %s: %d ok, %d failed\n", glyph, name, len(lvl.Units), len(lvl.FailedAoA))
				}
			}
		}
	}

	return nil
}
