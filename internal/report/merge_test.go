package report

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowlab/simsweep/internal/model"
)

func levelWith(units map[string]model.UnitResult, failed []float64) *model.LevelResult {
	return &model.LevelResult{Units: units, FailedAoA: failed}
}

func singleLevelReport(hier, caseName, scenario, mesh string, lvl *model.LevelResult) *model.SweepReport {
	return &model.SweepReport{
		Hierarchies: []model.HierarchyReport{{
			Name: hier,
			Cases: []model.CaseReport{{
				Name: caseName,
				Scenarios: []model.ScenarioReport{{
					Name:   scenario,
					Levels: map[string]*model.LevelResult{mesh: lvl},
				}},
			}},
		}},
	}
}

func TestMergeReportsNilSides(t *testing.T) {
	rep := singleLevelReport("h", "c", "s", "L0", levelWith(nil, nil))

	assert.Same(t, rep, MergeReports(nil, rep))
	assert.Same(t, rep, MergeReports(rep, nil))
	assert.NotNil(t, MergeReports(nil, nil))
}

func TestMergeReportsUnitsAccumulate(t *testing.T) {
	prior := singleLevelReport("h", "c", "s", "L0", levelWith(
		map[string]model.UnitResult{
			"aoa_0.0": {CL: 0.01, CD: 0.010, FailFlag: 0},
			"aoa_2.0": {CL: 0.20, CD: 0.015, FailFlag: 0},
		},
		[]float64{4.0},
	))
	incoming := singleLevelReport("h", "c", "s", "L0", levelWith(
		map[string]model.UnitResult{
			"aoa_4.0": {CL: 0.41, CD: 0.021, FailFlag: 0},
		},
		nil,
	))

	merged := MergeReports(prior, incoming)
	lvl := merged.Hierarchies[0].Cases[0].Scenarios[0].Levels["L0"]

	require.Len(t, lvl.Units, 3, "prior successes survive the merge")
	assert.Empty(t, lvl.FailedAoA, "failed set reflects the latest run only")
}

func TestMergeReportsIncomingWinsPerUnit(t *testing.T) {
	prior := singleLevelReport("h", "c", "s", "L0", levelWith(
		map[string]model.UnitResult{"aoa_2.0": {CL: 0.20, CD: 0.015}}, nil))
	incoming := singleLevelReport("h", "c", "s", "L0", levelWith(
		map[string]model.UnitResult{"aoa_2.0": {CL: 0.22, CD: 0.014}}, nil))

	merged := MergeReports(prior, incoming)
	lvl := merged.Hierarchies[0].Cases[0].Scenarios[0].Levels["L0"]
	assert.Equal(t, 0.22, lvl.Units["aoa_2.0"].CL)
}

func TestMergeReportsNameKeyedAppend(t *testing.T) {
	prior := singleLevelReport("h", "c1", "s", "L0", levelWith(nil, nil))
	incoming := singleLevelReport("h", "c2", "s", "L0", levelWith(nil, nil))

	merged := MergeReports(prior, incoming)
	require.Len(t, merged.Hierarchies, 1)
	require.Len(t, merged.Hierarchies[0].Cases, 2)
	assert.Equal(t, "c1", merged.Hierarchies[0].Cases[0].Name)
	assert.Equal(t, "c2", merged.Hierarchies[0].Cases[1].Name)
}

func TestMergeReportsDisjointLevels(t *testing.T) {
	prior := singleLevelReport("h", "c", "s", "L1", levelWith(
		map[string]model.UnitResult{"aoa_0.0": {CL: 0.01}}, nil))
	incoming := singleLevelReport("h", "c", "s", "L0", levelWith(
		map[string]model.UnitResult{"aoa_0.0": {CL: 0.02}}, nil))

	merged := MergeReports(prior, incoming)
	levels := merged.Hierarchies[0].Cases[0].Scenarios[0].Levels
	require.Len(t, levels, 2)

	want := map[string]*model.LevelResult{
		"L1": levelWith(map[string]model.UnitResult{"aoa_0.0": {CL: 0.01}}, nil),
		"L0": levelWith(map[string]model.UnitResult{"aoa_0.0": {CL: 0.02}}, nil),
	}
	if diff := cmp.Diff(want, levels); diff != "" {
		t.Errorf("merged levels mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeReportsAssociativeMembership(t *testing.T) {
	a := singleLevelReport("h", "c1", "s", "L0", levelWith(
		map[string]model.UnitResult{"aoa_0.0": {CL: 0.01}}, nil))
	b := singleLevelReport("h", "c2", "s", "L0", levelWith(
		map[string]model.UnitResult{"aoa_2.0": {CL: 0.21}}, nil))
	c := singleLevelReport("h", "c1", "s", "L0", levelWith(
		map[string]model.UnitResult{"aoa_4.0": {CL: 0.40}}, nil))

	left := MergeReports(MergeReports(a, b), c)
	right := MergeReports(a, MergeReports(b, c))

	if diff := cmp.Diff(left, right); diff != "" {
		t.Errorf("merge grouping changed the result (-left +right):\n%s", diff)
	}

	require.Len(t, left.Hierarchies[0].Cases, 2)
	c1 := left.Hierarchies[0].Cases[0]
	assert.Equal(t, "c1", c1.Name)
	assert.Len(t, c1.Scenarios[0].Levels["L0"].Units, 2)
}

func TestMergeRunInfoScalarOverwrite(t *testing.T) {
	prior := &model.SweepReport{Overall: model.RunInfo{
		StartTime: "2026-01-01 10:00:00", EndTime: "2026-01-01 11:00:00", TotalWallTime: "3600.00 sec",
	}}
	incoming := &model.SweepReport{Overall: model.RunInfo{
		StartTime: "2026-01-02 09:00:00", EndTime: "2026-01-02 09:05:00", TotalWallTime: "300.00 sec",
	}}

	merged := MergeReports(prior, incoming)
	assert.Equal(t, "2026-01-02 09:00:00", merged.Overall.StartTime)
	assert.Equal(t, "300.00 sec", merged.Overall.TotalWallTime)

	// Empty incoming scalars keep the prior values.
	kept := MergeReports(prior, &model.SweepReport{})
	assert.Equal(t, "2026-01-01 10:00:00", kept.Overall.StartTime)
}
