// Package rank resolves the process rank assigned by a parallel launcher.
// Filesystem side effects are restricted to the leader rank so that a sweep
// launched under mpirun or srun does not race on the shared output tree.
package rank

import (
	"os"
	"strconv"
)

// rankEnvVars are checked in order; the first one set wins.
var rankEnvVars = []string{"SLURM_PROCID", "OMPI_COMM_WORLD_RANK", "PMI_RANK"}

// Detect returns the launcher-assigned rank of this process, or 0 when no
// launcher environment is present (plain single-process invocation).
func Detect() int {
	for _, name := range rankEnvVars {
		if v, ok := os.LookupEnv(name); ok {
			if r, err := strconv.Atoi(v); err == nil && r >= 0 {
				return r
			}
		}
	}
	return 0
}

// IsLeader reports whether this process is the one allowed to mutate the
// output directory tree.
func IsLeader() bool {
	return Detect() == 0
}
