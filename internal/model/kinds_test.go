package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProblemKind(t *testing.T) {
	t.Run("aerodynamic aliases", func(t *testing.T) {
		for _, alias := range []string{"Aerodynamic", "Aero", "Flow"} {
			kind, err := ParseProblemKind(alias)
			require.NoError(t, err)
			assert.Equal(t, ProblemAerodynamic, kind)
		}
	})

	t.Run("aerostructural aliases", func(t *testing.T) {
		for _, alias := range []string{"AeroStructural", "Structural", "Combined"} {
			kind, err := ParseProblemKind(alias)
			require.NoError(t, err)
			assert.Equal(t, ProblemAerostructural, kind)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := ParseProblemKind("Thermal")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Thermal")
	})

	t.Run("case sensitive", func(t *testing.T) {
		_, err := ParseProblemKind("aerodynamic")
		assert.Error(t, err)
	})
}

func TestParseMachineKind(t *testing.T) {
	t.Run("local aliases", func(t *testing.T) {
		for _, alias := range []string{"LOCAL", "local", "Local", "loc", "Loc", "LOC"} {
			kind, err := ParseMachineKind(alias)
			require.NoError(t, err)
			assert.Equal(t, MachineLocal, kind)
		}
	})

	t.Run("hpc aliases", func(t *testing.T) {
		for _, alias := range []string{"hpc", "Hpc", "HPC", "cluster", "Cluster", "CLUSTER"} {
			kind, err := ParseMachineKind(alias)
			require.NoError(t, err)
			assert.Equal(t, MachineHPC, kind)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := ParseMachineKind("cloud")
		assert.Error(t, err)
	})
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "aerodynamic", ProblemAerodynamic.String())
	assert.Equal(t, "aerostructural", ProblemAerostructural.String())
	assert.Equal(t, "unknown", ProblemUnknown.String())
	assert.Equal(t, "local", MachineLocal.String())
	assert.Equal(t, "hpc", MachineHPC.String())
	assert.Equal(t, "unknown", MachineUnknown.String())
}
