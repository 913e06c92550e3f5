package hpc

import (
	"fmt"
	"strings"
	"text/template"
)

// jobScriptTemplate is the fixed Slurm submission script. Placeholders are
// filled from ScriptParams; the worker entry re-invokes the sweep under the
// allocation so batches launch with srun.
const jobScriptTemplate = `#!/bin/bash
#SBATCH --job-name={{.JobName}}
#SBATCH --account={{.Account}}
{{- if .Partition}}
#SBATCH --partition={{.Partition}}
{{- end}}
#SBATCH --time={{.Time}}
#SBATCH --nodes={{.Nodes}}
#SBATCH --ntasks={{.Nproc}}
{{- if .NprocPerNode}}
#SBATCH --ntasks-per-node={{.NprocPerNode}}
{{- end}}
#SBATCH --mem-per-cpu={{.MemPerCPU}}
{{- if .MailTypes}}
#SBATCH --mail-type={{.MailTypes}}
#SBATCH --mail-user={{.Email}}
{{- end}}
#SBATCH --output={{.OutputFile}}

{{.WorkerCommand}}
`

// ScriptParams are the named placeholders of the job script.
type ScriptParams struct {
	JobName       string
	Account       string
	Partition     string
	Time          string
	Nodes         int
	Nproc         int
	NprocPerNode  int
	MemPerCPU     string
	MailTypes     string
	Email         string
	OutputFile    string
	WorkerCommand string
}

// RenderScript fills the job script template, applying the documented
// defaults for wall time and memory.
func RenderScript(params ScriptParams) (string, error) {
	if params.Time == "" {
		params.Time = "1:00:00"
	}
	if params.MemPerCPU == "" {
		params.MemPerCPU = "1000m"
	}

	tmpl, err := template.New("jobscript").Parse(jobScriptTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse job script template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("failed to render job script: %w", err)
	}
	return buf.String(), nil
}
