package executor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/flowlab/simsweep/internal/model"
)

// DefaultRuntime is the worker runtime used when the configured one cannot
// be resolved on the host.
const DefaultRuntime = "python"

// workerOutputFile captures the worker's diagnostic output per level when
// recording is enabled.
const workerOutputFile = "worker_out.txt"

// Solver runs a batch in-process. It is satisfied by embedding programs that
// can import the numerical solver directly; when no Solver is configured the
// executor launches an external worker instead.
type Solver interface {
	Solve(ctx context.Context, job *model.JobDescriptor) (map[string]model.UnitMetrics, error)
}

// Config selects the execution mode for dispatched batches.
type Config struct {
	Machine      model.MachineKind
	Nproc        int
	Runtime      string
	Worker       string
	RecordOutput bool
	Solver       Solver
}

// Executor runs one refinement-level batch of condition units through the
// solver and recovers the structured result mapping.
type Executor struct {
	cfg Config
	log *zap.Logger
}

// New creates a unit executor.
func New(cfg Config, log *zap.Logger) *Executor {
	return &Executor{
		cfg: cfg,
		log: log,
	}
}

// Execute dispatches one batch and returns the mapping condition key →
// success metrics for the units that completed. Failures are left for the
// caller to detect through checkpoint inspection. The call blocks until the
// batch's external process exits.
func (e *Executor) Execute(ctx context.Context, job *model.JobDescriptor) (map[string]model.UnitMetrics, error) {
	if e.cfg.Solver != nil {
		return e.cfg.Solver.Solve(ctx, job)
	}
	return e.runWorker(ctx, job)
}

// runWorker launches the external worker process for a batch and scans its
// stdout for the result marker. A missing marker is not an error: the batch
// simply produced zero new successes.
func (e *Executor) runWorker(ctx context.Context, job *model.JobDescriptor) (map[string]model.UnitMetrics, error) {
	if e.cfg.Worker == "" {
		return nil, fmt.Errorf("no worker entry point configured for subprocess dispatch")
	}

	runtimeBin := e.resolveRuntime()
	launcher, err := e.launchCommand(runtimeBin)
	if err != nil {
		return nil, err
	}

	args := append(launcher, e.cfg.Worker,
		"--case-info", job.CaseInfoFile,
		"--scenario-info", job.ScenarioInfoFile,
		"--level-dir", job.LevelDir,
		"--aoa-list", joinConditions(job.AoAList),
		"--mesh", job.MeshFile,
		"--struct-mesh", job.StructMeshFile,
	)

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Env = os.Environ()

	var sink *os.File
	if e.cfg.RecordOutput {
		sink, err = os.Create(filepath.Join(job.LevelDir, workerOutputFile))
		if err != nil {
			return nil, fmt.Errorf("failed to create worker output file: %w", err)
		}
		defer sink.Close()
		cmd.Stderr = sink
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to attach worker stdout: %w", err)
	}

	e.log.Info("dispatching batch",
		zap.String("level_dir", job.LevelDir),
		zap.String("aoa_list", joinConditions(job.AoAList)),
		zap.String("launcher", args[0]))

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start worker process: %w", err)
	}

	var results map[string]model.UnitMetrics
	if sink != nil {
		results = ScanResults(stdout, sink)
	} else {
		results = ScanResults(stdout, nil)
	}

	if err := cmd.Wait(); err != nil {
		// A failing worker is recorded, not fatal: successes already parsed
		// from the marker still count, everything else stays pending.
		e.log.Warn("worker process exited with error",
			zap.String("level_dir", job.LevelDir), zap.Error(err))
	}

	return results, nil
}

// resolveRuntime verifies the configured runtime binary is resolvable,
// falling back to the default with a non-fatal warning.
func (e *Executor) resolveRuntime() string {
	runtimeBin := e.cfg.Runtime
	if runtimeBin == "" {
		runtimeBin = DefaultRuntime
	}
	if _, err := exec.LookPath(runtimeBin); err != nil {
		e.log.Warn("configured runtime not found, falling back",
			zap.String("runtime", runtimeBin), zap.String("fallback", DefaultRuntime))
		runtimeBin = DefaultRuntime
	}
	return runtimeBin
}

// launchCommand picks the parallel launcher for the target machine: mpirun
// locally, srun inside a cluster allocation.
func (e *Executor) launchCommand(runtimeBin string) ([]string, error) {
	switch e.cfg.Machine {
	case model.MachineLocal:
		nproc := e.cfg.Nproc
		if nproc < 1 {
			nproc = 1
		}
		return []string{"mpirun", "-np", strconv.Itoa(nproc), runtimeBin}, nil
	case model.MachineHPC:
		return []string{"srun", runtimeBin}, nil
	}
	return nil, fmt.Errorf("no launcher for machine kind %s", e.cfg.Machine)
}

// joinConditions renders the batch's angles of attack as the comma-joined
// list passed to the worker.
func joinConditions(aoas []float64) string {
	parts := make([]string, len(aoas))
	for i, aoa := range aoas {
		parts[i] = model.FormatCondition(aoa)
	}
	return strings.Join(parts, ",")
}
