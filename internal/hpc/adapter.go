package hpc

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/flowlab/simsweep/internal/executor"
	"github.com/flowlab/simsweep/internal/model"
)

// pollInterval is how often the queue listing is checked while waiting for a
// submitted job. The coarse latency is deliberate.
const pollInterval = 10 * time.Second

// commandRunner abstracts scheduler invocation so tests can fake sbatch and
// squeue output.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Adapter submits job scripts to the cluster scheduler, waits for them to
// leave the queue and collects the result marker from the captured output.
type Adapter struct {
	run commandRunner
	log *zap.Logger
}

// NewAdapter creates a scheduler adapter.
func NewAdapter(log *zap.Logger) *Adapter {
	return &Adapter{
		run: runCommand,
		log: log,
	}
}

// Submit hands a job script to sbatch and returns the scheduler job id. A
// non-zero exit from the submit command is fatal to the batch.
func (a *Adapter) Submit(ctx context.Context, scriptPath string) (string, error) {
	out, err := a.run(ctx, "sbatch", "--parsable", scriptPath)
	if err != nil {
		return "", fmt.Errorf("job submission failed: %w", err)
	}

	jobID, err := ParseJobID(string(out))
	if err != nil {
		return "", err
	}

	a.log.Info("job submitted", zap.String("job_id", jobID), zap.String("script", scriptPath))
	return jobID, nil
}

// ParseJobID extracts the scheduler job identifier from the parsable submit
// acknowledgement: the first whitespace-delimited token of the last non-empty
// line, with any ";cluster" suffix dropped.
func ParseJobID(ack string) (string, error) {
	lines := strings.Split(strings.TrimSpace(ack), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	fields := strings.Fields(last)
	if len(fields) == 0 {
		return "", fmt.Errorf("empty submission acknowledgement")
	}
	id, _, _ := strings.Cut(fields[0], ";")
	if id == "" {
		return "", fmt.Errorf("malformed submission acknowledgement: %q", ack)
	}
	return id, nil
}

// Wait polls the active-queue listing until the job id no longer appears,
// signaling completion. There is no upper bound on the wait; cancel the
// context to stop early.
func (a *Adapter) Wait(ctx context.Context, jobID string) error {
	for {
		queued, err := a.inQueue(ctx, jobID)
		if err != nil {
			return err
		}
		if !queued {
			a.log.Info("job left the queue", zap.String("job_id", jobID))
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// inQueue reports whether the job id still appears in the queue listing.
// squeue exits non-zero for unknown ids on some clusters; that also means
// the job is gone.
func (a *Adapter) inQueue(ctx context.Context, jobID string) (bool, error) {
	out, err := a.run(ctx, "squeue", "-h", "-j", jobID)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, nil
	}
	return strings.Contains(string(out), jobID), nil
}

// CollectResults reads the job's captured output file and extracts the
// result marker. A completed job that never emitted a marker yields an empty
// mapping, identical to the subprocess no-marker case.
func (a *Adapter) CollectResults(outputFile string) (map[string]model.UnitMetrics, error) {
	f, err := os.Open(outputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read job output file: %w", err)
	}
	defer f.Close()

	return executor.ScanResults(f, nil), nil
}
