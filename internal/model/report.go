package model

// CheckpointRecord is the persisted outcome of one condition unit. Written by
// the solver worker when the unit finishes, re-read by the orchestrator to
// decide skip vs. rerun, and rewritten with housekeeping fields merged in.
type CheckpointRecord struct {
	AoA      float64 `yaml:"aoa"`
	CL       float64 `yaml:"cl"`
	CD       float64 `yaml:"cd"`
	WallTime string  `yaml:"wall_time"`
	FailFlag int     `yaml:"fail_flag"`
	OutDir   string  `yaml:"out_dir,omitempty"`
}

// UnitMetrics is the success payload for one condition unit as it crosses the
// process boundary in the result marker.
type UnitMetrics struct {
	CL float64 `json:"cl" yaml:"cl"`
	CD float64 `json:"cd" yaml:"cd"`
}

// UnitResult is one successful condition unit inside a level result.
type UnitResult struct {
	CL       float64 `yaml:"cl"`
	CD       float64 `yaml:"cd"`
	WallTime string  `yaml:"wall_time"`
	FailFlag int     `yaml:"fail_flag"`
	OutDir   string  `yaml:"out_dir"`
}

// LevelResult aggregates one refinement level: successful units keyed by
// condition key, the angles of attack that failed, and where the level's
// results table lives.
type LevelResult struct {
	Units     map[string]UnitResult `yaml:"units"`
	FailedAoA []float64             `yaml:"failed_aoa"`
	TableFile string                `yaml:"table_file,omitempty"`
	OutDir    string                `yaml:"out_dir,omitempty"`
}

// ScenarioReport mirrors one scenario with a level result per mesh file.
type ScenarioReport struct {
	Name   string                  `yaml:"name"`
	OutDir string                  `yaml:"out_dir,omitempty"`
	Levels map[string]*LevelResult `yaml:"levels,omitempty"`
}

// CaseReport mirrors one case of the sweep spec.
type CaseReport struct {
	Name      string           `yaml:"name"`
	Scenarios []ScenarioReport `yaml:"scenarios"`
}

// HierarchyReport mirrors one hierarchy of the sweep spec.
type HierarchyReport struct {
	Name  string       `yaml:"name"`
	Cases []CaseReport `yaml:"cases"`
}

// RunInfo is the timing metadata for one orchestrator invocation.
type RunInfo struct {
	StartTime     string `yaml:"start_time,omitempty"`
	EndTime       string `yaml:"end_time,omitempty"`
	TotalWallTime string `yaml:"total_wall_time,omitempty"`
}

// SweepReport is the cumulative nested result tree. On rerun it is
// deep-merged with the prior report on disk rather than overwritten.
type SweepReport struct {
	Hierarchies []HierarchyReport `yaml:"hierarchies"`
	Overall     RunInfo           `yaml:"overall,omitempty"`
}
