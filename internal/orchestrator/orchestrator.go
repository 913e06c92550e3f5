package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/flowlab/simsweep/internal/checkpoint"
	"github.com/flowlab/simsweep/internal/model"
	"github.com/flowlab/simsweep/internal/report"
)

const (
	specCopyName     = "input_spec.yaml"
	caseInfoName     = "case_info.yaml"
	scenarioInfoName = "scenario_info.yaml"
	timeLayout       = "2006-01-02 15:04:05"
)

// Dispatcher executes one refinement-level batch and returns the mapping
// condition key → success metrics recovered from the result marker.
type Dispatcher interface {
	Execute(ctx context.Context, job *model.JobDescriptor) (map[string]model.UnitMetrics, error)
}

// Orchestrator walks the sweep hierarchy strictly sequentially, applies the
// skip/rerun policy per refinement level, dispatches pending batches and
// folds the outcome into the cumulative report.
type Orchestrator struct {
	spec     *model.SweepSpec
	store    *checkpoint.Store
	exec     Dispatcher
	agg      *report.Aggregator
	leader   bool
	log      *zap.Logger
	progress io.Writer
}

// New creates an orchestrator. progress receives human-readable walk output
// and may be nil.
func New(spec *model.SweepSpec, store *checkpoint.Store, exec Dispatcher, agg *report.Aggregator, leader bool, log *zap.Logger, progress io.Writer) *Orchestrator {
	if progress == nil {
		progress = io.Discard
	}
	return &Orchestrator{
		spec:     spec,
		store:    store,
		exec:     exec,
		agg:      agg,
		leader:   leader,
		log:      log,
		progress: progress,
	}
}

// Run executes the sweep: every refinement level of every scenario, in
// declared order, dispatching only the condition units not already
// successfully completed. It returns the merged cumulative report. A failing
// unit or level never aborts the sweep; only setup errors do.
func (o *Orchestrator) Run(ctx context.Context) (*model.SweepReport, error) {
	outDir, err := filepath.Abs(o.spec.OutDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}
	if err := o.makeDir(outDir); err != nil {
		return nil, err
	}
	if err := o.writeYAML(filepath.Join(outDir, specCopyName), o.spec); err != nil {
		return nil, err
	}

	start := time.Now()
	fragment := &model.SweepReport{}

	for _, hier := range o.spec.Hierarchies {
		hierReport := model.HierarchyReport{Name: hier.Name}

		for _, c := range hier.Cases {
			caseReport, err := o.runCase(ctx, outDir, hier, c)
			if err != nil {
				return nil, err
			}
			hierReport.Cases = append(hierReport.Cases, caseReport)
		}

		fragment.Hierarchies = append(fragment.Hierarchies, hierReport)
	}

	end := time.Now()
	fragment.Overall = model.RunInfo{
		StartTime:     start.Format(timeLayout),
		EndTime:       end.Format(timeLayout),
		TotalWallTime: fmt.Sprintf("%.2f sec", end.Sub(start).Seconds()),
	}

	return o.agg.Fold(fragment)
}

// runCase walks one case: every scenario at every mesh refinement level.
func (o *Orchestrator) runCase(ctx context.Context, outDir string, hier model.Hierarchy, c model.Case) (model.CaseReport, error) {
	caseReport := model.CaseReport{Name: c.Name}

	caseDir := filepath.Join(outDir, hier.Name, c.Name)
	if err := o.makeDir(caseDir); err != nil {
		return caseReport, err
	}

	// The worker-facing case document excludes the scenario list.
	caseInfoPath := filepath.Join(caseDir, caseInfoName)
	if err := o.writeYAML(caseInfoPath, model.CaseInfoOf(c)); err != nil {
		return caseReport, err
	}

	problem, err := model.ParseProblemKind(c.Problem)
	if err != nil {
		return caseReport, err
	}
	structMesh := "none"
	if problem == model.ProblemAerostructural {
		if v, ok := c.StructOptions["mesh_fpath"].(string); ok {
			structMesh = v
		}
	}

	for _, scenario := range c.Scenarios {
		scenarioDir := filepath.Join(caseDir, scenario.Name)
		if err := o.makeDir(scenarioDir); err != nil {
			return caseReport, err
		}
		scenarioInfoPath := filepath.Join(scenarioDir, scenarioInfoName)
		if err := o.writeYAML(scenarioInfoPath, scenario); err != nil {
			return caseReport, err
		}

		scenarioReport := model.ScenarioReport{
			Name:   scenario.Name,
			OutDir: scenarioDir,
			Levels: make(map[string]*model.LevelResult, len(c.MeshFiles)),
		}

		for _, meshFile := range c.MeshFiles {
			fmt.Fprintf(o.progress, "→ %s/%s/%s mesh=%s\n", hier.Name, c.Name, scenario.Name, meshFile)

			levelDir := filepath.Join(scenarioDir, meshFile)
			if err := o.makeDir(levelDir); err != nil {
				return caseReport, err
			}

			job := &model.JobDescriptor{
				CaseInfoFile:     caseInfoPath,
				ScenarioInfoFile: scenarioInfoPath,
				LevelDir:         levelDir,
				MeshFile:         filepath.Join(c.MeshesDir, meshFile),
				StructMeshFile:   structMesh,
			}
			scenarioReport.Levels[meshFile] = o.runLevel(ctx, scenario, job, levelDir)
		}

		caseReport.Scenarios = append(caseReport.Scenarios, scenarioReport)

		o.removeFile(scenarioInfoPath)
	}

	o.removeFile(caseInfoPath)
	return caseReport, nil
}

// runLevel applies the skip/run policy for one refinement level, dispatches
// the pending batch, reconciles checkpoint state and builds the level
// result. Dispatch errors are level-scoped: they leave every pending unit in
// the failed set and the sweep moves on.
func (o *Orchestrator) runLevel(ctx context.Context, scenario model.Scenario, job *model.JobDescriptor, levelDir string) *model.LevelResult {
	var pending []float64
	skipped := make(map[string]bool)

	for _, aoa := range scenario.AoAList {
		res := o.store.LoadUnit(levelDir, aoa)
		if res.Status == checkpoint.Found && res.Record.FailFlag == 0 {
			skipped[model.ConditionKey(aoa)] = true
		} else {
			pending = append(pending, aoa)
		}
	}

	results := map[string]model.UnitMetrics{}
	if len(pending) > 0 {
		job.AoAList = pending
		batch, err := o.exec.Execute(ctx, job)
		if err != nil {
			o.log.Error("batch dispatch failed, level recorded as failed",
				zap.String("level_dir", levelDir), zap.Error(err))
		} else {
			results = batch
		}
	} else {
		fmt.Fprintf(o.progress, "  all %d units already completed, skipping dispatch\n", len(scenario.AoAList))
	}

	units := make(map[string]model.UnitResult)
	var rows []checkpoint.Row
	var failed []float64

	// Reconcile in declared condition order so output is deterministic
	// regardless of the order the worker finished units in.
	for _, aoa := range scenario.AoAList {
		key := model.ConditionKey(aoa)

		var rec model.CheckpointRecord
		if skipped[key] {
			res := o.store.LoadUnit(levelDir, aoa)
			if res.Status != checkpoint.Found || res.Record.FailFlag != 0 {
				failed = append(failed, aoa)
				continue
			}
			rec = res.Record
		} else {
			metrics, ok := results[key]
			if !ok {
				failed = append(failed, aoa)
				continue
			}
			rec = o.reconcileUnit(levelDir, aoa, metrics)
			if rec.FailFlag != 0 {
				failed = append(failed, aoa)
				continue
			}
		}

		units[key] = model.UnitResult{
			CL:       rec.CL,
			CD:       rec.CD,
			WallTime: rec.WallTime,
			FailFlag: rec.FailFlag,
			OutDir:   rec.OutDir,
		}
		rows = append(rows, checkpoint.Row{
			Alpha:    aoa,
			CL:       rec.CL,
			CD:       rec.CD,
			FailFlag: rec.FailFlag,
			WallTime: parseWallTime(rec.WallTime),
		})
	}

	tablePath, err := o.store.AppendLevelTable(levelDir, rows)
	if err != nil {
		o.log.Error("failed to update level table", zap.String("level_dir", levelDir), zap.Error(err))
	}

	if len(failed) > 0 {
		o.log.Warn("level completed with failures",
			zap.String("level_dir", levelDir),
			zap.Float64s("failed_aoa", failed))
	}

	return &model.LevelResult{
		Units:     units,
		FailedAoA: failed,
		TableFile: tablePath,
		OutDir:    levelDir,
	}
}

// reconcileUnit merges housekeeping fields into the unit's checkpoint record
// after a successful dispatch. When the worker reported success in the
// marker but left no readable record, one is synthesized from the marker
// metrics so the next invocation skips the unit.
func (o *Orchestrator) reconcileUnit(levelDir string, aoa float64, metrics model.UnitMetrics) model.CheckpointRecord {
	unitDir := o.store.UnitDir(levelDir, aoa)

	res := o.store.LoadUnit(levelDir, aoa)
	if res.Status == checkpoint.Found {
		rec := res.Record
		if rec.FailFlag != 0 {
			return rec
		}
		rec.OutDir = unitDir
		if err := o.store.SaveUnit(levelDir, aoa, rec); err != nil {
			o.log.Warn("failed to rewrite checkpoint record", zap.Error(err))
		}
		return rec
	}

	rec := model.CheckpointRecord{
		AoA:      aoa,
		CL:       metrics.CL,
		CD:       metrics.CD,
		WallTime: "0.00 sec",
		FailFlag: 0,
		OutDir:   unitDir,
	}
	if err := o.store.SaveUnit(levelDir, aoa, rec); err != nil {
		o.log.Warn("failed to write checkpoint record", zap.Error(err))
	}
	return rec
}

// makeDir creates a directory on the leader; followers assume the leader got
// there first.
func (o *Orchestrator) makeDir(dir string) error {
	if !o.leader {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// writeYAML persists a worker-facing document, leader only.
func (o *Orchestrator) writeYAML(path string, v interface{}) error {
	if !o.leader {
		return nil
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// removeFile drops a transient descriptor file, leader only.
func (o *Orchestrator) removeFile(path string) {
	if !o.leader {
		return
	}
	os.Remove(path)
}

// parseWallTime reads the "12.34 sec" wall-time string from a checkpoint
// record; unparsable strings become zero.
func parseWallTime(s string) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), " sec")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
