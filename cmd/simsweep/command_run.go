package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/flowlab/simsweep/internal/checkpoint"
	"github.com/flowlab/simsweep/internal/executor"
	"github.com/flowlab/simsweep/internal/loader"
	"github.com/flowlab/simsweep/internal/model"
	"github.com/flowlab/simsweep/internal/orchestrator"
	"github.com/flowlab/simsweep/internal/rank"
	"github.com/flowlab/simsweep/internal/report"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the sweep",
	Long:  "Walk every hierarchy, case, scenario and mesh refinement level of the sweep spec, dispatching the condition units that are not already checkpointed as successful.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSweep()
	},
}

func registerRunCommand(root *cobra.Command) {
	root.AddCommand(runCmd)
}

func runSweep() error {
	fmt.Println("□ Loading sweep spec...")
	spec, err := loader.LoadSweepSpec(specFile)
	if err != nil {
		return fmt.Errorf("failed to load sweep spec: %w", err)
	}

	machine, err := model.ParseMachineKind(spec.Machine)
	if err != nil {
		return err
	}
	if spec.Worker == "" {
		return fmt.Errorf("sweep spec has no worker entry point; nothing to dispatch")
	}

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	leader := rank.IsLeader()
	outDir, err := filepath.Abs(spec.OutDir)
	if err != nil {
		return fmt.Errorf("failed to resolve output directory: %w", err)
	}

	store := checkpoint.NewStore(leader, log)
	exec := executor.New(executor.Config{
		Machine:      machine,
		Nproc:        spec.Nproc,
		Runtime:      spec.Runtime,
		Worker:       spec.Worker,
		RecordOutput: spec.RecordOutput,
	}, log)
	agg := report.NewAggregator(outDir, leader, log)

	orch := orchestrator.New(spec, store, exec, agg, leader, log, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println("□ Running sweep...")
	rep, err := orch.Run(ctx)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	done, failed := countUnits(rep)
	fmt.Printf("✓ Sweep complete: %d condition units successful\n", done)
	if failed > 0 {
		fmt.Printf("□ %d condition units failed; rerun to retry them\n", failed)
	}
	if leader {
		fmt.Printf("✓ Report saved to: %s\n", agg.Path())
	}

	return nil
}

// countUnits tallies successful and failed condition units across the whole
// report tree.
func countUnits(rep *model.SweepReport) (done, failed int) {
	for _, h := range rep.Hierarchies {
		for _, c := range h.Cases {
			for _, s := range c.Scenarios {
				for _, lvl := range s.Levels {
					done += len(lvl.Units)
					failed += len(lvl.FailedAoA)
				}
			}
		}
	}
	return done, failed
}
