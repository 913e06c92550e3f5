package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flowlab/simsweep/internal/model"
)

func TestAggregatorFold(t *testing.T) {
	dir := t.TempDir()
	agg := NewAggregator(dir, true, zap.NewNop())

	first := singleLevelReport("h", "c", "s", "L0", levelWith(
		map[string]model.UnitResult{"aoa_0.0": {CL: 0.01}}, []float64{2.0}))
	_, err := agg.Fold(first)
	require.NoError(t, err)

	second := singleLevelReport("h", "c", "s", "L0", levelWith(
		map[string]model.UnitResult{"aoa_2.0": {CL: 0.22}}, nil))
	merged, err := agg.Fold(second)
	require.NoError(t, err)

	lvl := merged.Hierarchies[0].Cases[0].Scenarios[0].Levels["L0"]
	assert.Len(t, lvl.Units, 2)
	assert.Empty(t, lvl.FailedAoA)

	// The on-disk report matches what Fold returned.
	reloaded, err := agg.Load()
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.Len(t, reloaded.Hierarchies[0].Cases[0].Scenarios[0].Levels["L0"].Units, 2)
}

func TestAggregatorLoadMissing(t *testing.T) {
	agg := NewAggregator(t.TempDir(), true, zap.NewNop())
	rep, err := agg.Load()
	require.NoError(t, err)
	assert.Nil(t, rep)
}

func TestAggregatorLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(":\n\t- junk"), 0o644))

	agg := NewAggregator(dir, true, zap.NewNop())
	_, err := agg.Load()
	assert.Error(t, err, "a corrupt prior report is never silently discarded")
}

func TestAggregatorFollowerDoesNotWrite(t *testing.T) {
	dir := t.TempDir()
	agg := NewAggregator(dir, false, zap.NewNop())

	_, err := agg.Fold(singleLevelReport("h", "c", "s", "L0", levelWith(nil, nil)))
	require.NoError(t, err)

	_, statErr := os.Stat(agg.Path())
	assert.True(t, os.IsNotExist(statErr))
}
