package model

// JobDescriptor is the payload handed to the external worker for one
// refinement-level batch: the case parameters (minus scenarios), one
// scenario's parameters, and the pending angles of attack.
type JobDescriptor struct {
	CaseInfoFile     string
	ScenarioInfoFile string
	LevelDir         string
	AoAList          []float64
	MeshFile         string
	StructMeshFile   string
}

// CaseInfo is the case document written beside the level directory for the
// worker. It is the case without its scenario list.
type CaseInfo struct {
	Name          string                 `yaml:"name"`
	Problem       string                 `yaml:"problem"`
	MeshesDir     string                 `yaml:"meshes_dir"`
	Geometry      GeometryInfo           `yaml:"geometry"`
	AeroOptions   map[string]interface{} `yaml:"aero_options,omitempty"`
	StructOptions map[string]interface{} `yaml:"struct_options,omitempty"`
}

// CaseInfoOf strips a case down to the worker-facing document.
func CaseInfoOf(c Case) CaseInfo {
	return CaseInfo{
		Name:          c.Name,
		Problem:       c.Problem,
		MeshesDir:     c.MeshesDir,
		Geometry:      c.Geometry,
		AeroOptions:   c.AeroOptions,
		StructOptions: c.StructOptions,
	}
}
