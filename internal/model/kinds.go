package model

import "fmt"

// ProblemKind identifies the physics of a case.
type ProblemKind int

const (
	ProblemUnknown ProblemKind = iota
	ProblemAerodynamic
	ProblemAerostructural
)

var problemAliases = map[ProblemKind][]string{
	ProblemAerodynamic:    {"Aerodynamic", "Aero", "Flow"},
	ProblemAerostructural: {"AeroStructural", "Structural", "Combined"},
}

// ParseProblemKind matches a spec string against the known problem aliases.
func ParseProblemKind(s string) (ProblemKind, error) {
	for kind, aliases := range problemAliases {
		for _, alias := range aliases {
			if s == alias {
				return kind, nil
			}
		}
	}
	return ProblemUnknown, fmt.Errorf("unknown problem kind: %q", s)
}

func (k ProblemKind) String() string {
	switch k {
	case ProblemAerodynamic:
		return "aerodynamic"
	case ProblemAerostructural:
		return "aerostructural"
	}
	return "unknown"
}

// MachineKind selects where dispatched batches run.
type MachineKind int

const (
	MachineUnknown MachineKind = iota
	MachineLocal
	MachineHPC
)

var machineAliases = map[MachineKind][]string{
	MachineLocal: {"LOCAL", "local", "Local", "loc", "Loc", "LOC"},
	MachineHPC:   {"hpc", "Hpc", "HPC", "cluster", "Cluster", "CLUSTER"},
}

// ParseMachineKind matches a spec string against the known machine aliases.
func ParseMachineKind(s string) (MachineKind, error) {
	for kind, aliases := range machineAliases {
		for _, alias := range aliases {
			if s == alias {
				return kind, nil
			}
		}
	}
	return MachineUnknown, fmt.Errorf("unknown machine kind: %q", s)
}

func (k MachineKind) String() string {
	switch k {
	case MachineLocal:
		return "local"
	case MachineHPC:
		return "hpc"
	}
	return "unknown"
}
