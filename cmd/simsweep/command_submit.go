package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/flowlab/simsweep/internal/hpc"
	"github.com/flowlab/simsweep/internal/loader"
	"github.com/flowlab/simsweep/internal/model"
)

const (
	jobScriptName = "job_script.sh"
	jobOutputName = "job_out.txt"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit the sweep to the cluster scheduler",
	Long:  "Render a Slurm job script that re-invokes the sweep inside the allocation, hand it to sbatch and optionally wait for the job to finish.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitSweep()
	},
}

func registerSubmitCommand(root *cobra.Command) {
	root.AddCommand(submitCmd)

	submitCmd.Flags().BoolVarP(&submitWait, "wait", "w", false, "Block until the job leaves the queue and summarize its results")
}

func submitSweep() error {
	fmt.Println("□ Loading sweep spec...")
	spec, err := loader.LoadSweepSpec(specFile)
	if err != nil {
		return fmt.Errorf("failed to load sweep spec: %w", err)
	}

	machine, err := model.ParseMachineKind(spec.Machine)
	if err != nil {
		return err
	}
	if machine != model.MachineHPC {
		return fmt.Errorf("submit requires machine: HPC, spec says %s", spec.Machine)
	}
	if spec.HPC == nil {
		return fmt.Errorf("sweep spec has no hpc section")
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
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	absSpec, err := filepath.Abs(specFile)
	if err != nil {
		return fmt.Errorf("failed to resolve spec path: %w", err)
	}
	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to resolve own executable: %w", err)
	}

	outputFile := filepath.Join(outDir, jobOutputName)
	script, err := hpc.RenderScript(hpc.ScriptParams{
		JobName:       spec.HPC.JobName,
		Account:       spec.HPC.Account,
		Partition:     spec.HPC.Partition,
		Time:          spec.HPC.Time,
		Nodes:         spec.HPC.Nodes,
		Nproc:         spec.HPC.Nproc,
		NprocPerNode:  spec.HPC.NprocPerNode,
		MemPerCPU:     spec.HPC.MemPerCPU,
		MailTypes:     spec.HPC.MailTypes,
		Email:         spec.HPC.Email,
		OutputFile:    outputFile,
		WorkerCommand: fmt.Sprintf("%s run --spec %s", self, absSpec),
	})
	if err != nil {
		return err
	}

	scriptPath := filepath.Join(outDir, jobScriptName)
	if err := os.WriteFile(scriptPath, []byte(script), 0o755); err != nil {
		return fmt.Errorf("failed to write job script: %w", err)
	}
	fmt.Printf("✓ Job script written to: %s\n", scriptPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	adapter := hpc.NewAdapter(log)
	jobID, err := adapter.Submit(ctx, scriptPath)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Submitted job %s\n", jobID)

	if !submitWait {
		return nil
	}

	fmt.Println("□ Waiting for job to leave the queue...")
	if err := adapter.Wait(ctx, jobID); err != nil {
		return fmt.Errorf("wait aborted: %w", err)
	}

	results, err := adapter.CollectResults(outputFile)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Job %s finished: %d condition units reported success\n", jobID, len(results))
	return nil
}
