package hpc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderScript(t *testing.T) {
	script, err := RenderScript(ScriptParams{
		JobName:       "naca0012_sweep",
		Account:       "aero-lab",
		Partition:     "standard",
		Time:          "4:00:00",
		Nodes:         2,
		Nproc:         72,
		NprocPerNode:  36,
		MemPerCPU:     "2000m",
		MailTypes:     "END,FAIL",
		Email:         "sweeps@example.edu",
		OutputFile:    "/scratch/study/job_out.txt",
		WorkerCommand: "/usr/bin/simsweep run --spec /scratch/study/sweep.yaml",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(script, "#!/bin/bash\n"))
	assert.Contains(t, script, "#SBATCH --job-name=naca0012_sweep")
	assert.Contains(t, script, "#SBATCH --account=aero-lab")
	assert.Contains(t, script, "#SBATCH --partition=standard")
	assert.Contains(t, script, "#SBATCH --time=4:00:00")
	assert.Contains(t, script, "#SBATCH --nodes=2")
	assert.Contains(t, script, "#SBATCH --ntasks=72")
	assert.Contains(t, script, "#SBATCH --ntasks-per-node=36")
	assert.Contains(t, script, "#SBATCH --mem-per-cpu=2000m")
	assert.Contains(t, script, "#SBATCH --mail-type=END,FAIL")
	assert.Contains(t, script, "#SBATCH --mail-user=sweeps@example.edu")
	assert.Contains(t, script, "#SBATCH --output=/scratch/study/job_out.txt")
	assert.True(t, strings.HasSuffix(script, "/usr/bin/simsweep run --spec /scratch/study/sweep.yaml\n"))
}

func TestRenderScriptDefaultsAndOmissions(t *testing.T) {
	script, err := RenderScript(ScriptParams{
		JobName:       "job",
		Account:       "acct",
		Nodes:         1,
		Nproc:         4,
		OutputFile:    "out.txt",
		WorkerCommand: "simsweep run",
	})
	require.NoError(t, err)

	assert.Contains(t, script, "#SBATCH --time=1:00:00")
	assert.Contains(t, script, "#SBATCH --mem-per-cpu=1000m")
	assert.NotContains(t, script, "--partition")
	assert.NotContains(t, script, "--ntasks-per-node")
	assert.NotContains(t, script, "--mail-type")
	assert.NotContains(t, script, "--mail-user")
}
