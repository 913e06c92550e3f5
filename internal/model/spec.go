package model

import (
	"strconv"
	"strings"
)

// SweepSpec is the top-level sweep document: an ordered list of hierarchies
// plus run-wide settings. Immutable once loaded.
type SweepSpec struct {
	OutDir       string      `yaml:"out_dir"`
	Machine      string      `yaml:"machine"`
	Nproc        int         `yaml:"nproc,omitempty"`
	Runtime      string      `yaml:"runtime,omitempty"`
	Worker       string      `yaml:"worker,omitempty"`
	RecordOutput bool        `yaml:"record_output,omitempty"`
	HPC          *HPCInfo    `yaml:"hpc,omitempty"`
	Hierarchies  []Hierarchy `yaml:"hierarchies"`
}

// HPCInfo holds the cluster submission parameters for the Slurm job script.
type HPCInfo struct {
	Cluster       string `yaml:"cluster"`
	JobName       string `yaml:"job_name"`
	Account       string `yaml:"account"`
	Partition     string `yaml:"partition,omitempty"`
	Time          string `yaml:"time,omitempty"`
	Nodes         int    `yaml:"nodes"`
	Nproc         int    `yaml:"nproc"`
	NprocPerNode  int    `yaml:"nproc_per_node,omitempty"`
	MemPerCPU     string `yaml:"mem_per_cpu,omitempty"`
	MailTypes     string `yaml:"mail_types,omitempty"`
	Email         string `yaml:"email,omitempty"`
}

// Hierarchy groups related cases under one name.
type Hierarchy struct {
	Name  string `yaml:"name"`
	Cases []Case `yaml:"cases"`
}

// Case is one geometry/problem pairing swept across mesh refinement levels.
type Case struct {
	Name          string                 `yaml:"name"`
	Problem       string                 `yaml:"problem"`
	MeshesDir     string                 `yaml:"meshes_dir"`
	MeshFiles     []string               `yaml:"mesh_files"`
	Geometry      GeometryInfo           `yaml:"geometry"`
	AeroOptions   map[string]interface{} `yaml:"aero_options,omitempty"`
	StructOptions map[string]interface{} `yaml:"struct_options,omitempty"`
	Scenarios     []Scenario             `yaml:"scenarios"`
}

// GeometryInfo carries the reference quantities the solver needs.
type GeometryInfo struct {
	ChordRef float64 `yaml:"chord_ref"`
	AreaRef  float64 `yaml:"area_ref"`
}

// Scenario is one operating condition set evaluated at a list of angles
// of attack.
type Scenario struct {
	Name     string    `yaml:"name"`
	AoAList  []float64 `yaml:"aoa_list"`
	Reynolds float64   `yaml:"re"`
	Mach     float64   `yaml:"mach"`
	Temp     float64   `yaml:"temp"`
	ExpData  string    `yaml:"exp_data,omitempty"`
}

// ConditionKey renders an angle of attack as the canonical unit key used for
// directories, checkpoint records and result-marker entries. Integral values
// keep one decimal place so 2 and 2.0 name the same unit.
func ConditionKey(aoa float64) string {
	return "aoa_" + FormatCondition(aoa)
}

// FormatCondition renders an angle of attack in its canonical string form.
func FormatCondition(aoa float64) string {
	s := strconv.FormatFloat(aoa, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
