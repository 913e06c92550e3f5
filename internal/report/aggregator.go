package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/flowlab/simsweep/internal/model"
)

// FileName is the cumulative report written at the root of the output tree.
const FileName = "sweep_report.yaml"

// Aggregator deep-merges report fragments into the cumulative report on
// disk. Previously recorded successful units are never lost.
type Aggregator struct {
	path   string
	leader bool
	log    *zap.Logger
}

// NewAggregator creates an aggregator for the report under outDir.
func NewAggregator(outDir string, leader bool, log *zap.Logger) *Aggregator {
	return &Aggregator{
		path:   filepath.Join(outDir, FileName),
		leader: leader,
		log:    log,
	}
}

// Path returns the cumulative report location.
func (a *Aggregator) Path() string {
	return a.path
}

// Load reads the cumulative report. A missing file returns nil; a corrupt
// one is reported as an error so a prior report is never silently discarded.
func (a *Aggregator) Load() (*model.SweepReport, error) {
	data, err := os.ReadFile(a.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read report %s: %w", a.path, err)
	}

	var rep model.SweepReport
	if err := yaml.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", a.path, err)
	}
	return &rep, nil
}

// Fold merges a fragment into the persisted report and rewrites it,
// returning the merged result.
func (a *Aggregator) Fold(fragment *model.SweepReport) (*model.SweepReport, error) {
	prior, err := a.Load()
	if err != nil {
		return nil, err
	}

	merged := MergeReports(prior, fragment)

	if err := a.save(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// save rewrites the report with whole-file replace semantics.
func (a *Aggregator) save(rep *model.SweepReport) error {
	if !a.leader {
		return nil
	}

	data, err := yaml.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	tmp := fmt.Sprintf("%s.tmp-%s", a.path, uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmp, a.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace report: %w", err)
	}

	a.log.Debug("report persisted", zap.String("path", a.path))
	return nil
}
