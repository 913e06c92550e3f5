package report

import (
	"github.com/flowlab/simsweep/internal/model"
)

// Merge rules, applied recursively down the report tree:
//   - scalar fields: the incoming value overwrites the prior one
//   - maps: merged key by key, keys present on one side only are kept
//   - name-keyed lists (hierarchies, cases, scenarios): matched by name,
//     matched pairs merged recursively, unmatched incoming entries appended,
//     unmatched prior entries never dropped
//
// The result is that re-running over a grown sweep spec accumulates into the
// prior report instead of replacing it.

// MergeReports folds an incoming report fragment into a prior report. Either
// side may be nil.
func MergeReports(prior, incoming *model.SweepReport) *model.SweepReport {
	if prior == nil && incoming == nil {
		return &model.SweepReport{}
	}
	if prior == nil {
		return incoming
	}
	if incoming == nil {
		return prior
	}

	merged := &model.SweepReport{
		Hierarchies: mergeHierarchies(prior.Hierarchies, incoming.Hierarchies),
		Overall:     mergeRunInfo(prior.Overall, incoming.Overall),
	}
	return merged
}

func mergeRunInfo(prior, incoming model.RunInfo) model.RunInfo {
	out := prior
	if incoming.StartTime != "" {
		out.StartTime = incoming.StartTime
	}
	if incoming.EndTime != "" {
		out.EndTime = incoming.EndTime
	}
	if incoming.TotalWallTime != "" {
		out.TotalWallTime = incoming.TotalWallTime
	}
	return out
}

func mergeHierarchies(prior, incoming []model.HierarchyReport) []model.HierarchyReport {
	out := make([]model.HierarchyReport, len(prior))
	copy(out, prior)

	for _, in := range incoming {
		matched := false
		for i := range out {
			if out[i].Name == in.Name {
				out[i].Cases = mergeCases(out[i].Cases, in.Cases)
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, in)
		}
	}
	return out
}

func mergeCases(prior, incoming []model.CaseReport) []model.CaseReport {
	out := make([]model.CaseReport, len(prior))
	copy(out, prior)

	for _, in := range incoming {
		matched := false
		for i := range out {
			if out[i].Name == in.Name {
				out[i].Scenarios = mergeScenarios(out[i].Scenarios, in.Scenarios)
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, in)
		}
	}
	return out
}

func mergeScenarios(prior, incoming []model.ScenarioReport) []model.ScenarioReport {
	out := make([]model.ScenarioReport, len(prior))
	copy(out, prior)

	for _, in := range incoming {
		matched := false
		for i := range out {
			if out[i].Name == in.Name {
				if in.OutDir != "" {
					out[i].OutDir = in.OutDir
				}
				out[i].Levels = mergeLevels(out[i].Levels, in.Levels)
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, in)
		}
	}
	return out
}

func mergeLevels(prior, incoming map[string]*model.LevelResult) map[string]*model.LevelResult {
	if len(prior) == 0 && len(incoming) == 0 {
		return prior
	}

	out := make(map[string]*model.LevelResult, len(prior)+len(incoming))
	for k, v := range prior {
		out[k] = v
	}
	for k, in := range incoming {
		if existing, ok := out[k]; ok {
			out[k] = mergeLevelResult(existing, in)
		} else {
			out[k] = in
		}
	}
	return out
}

func mergeLevelResult(prior, incoming *model.LevelResult) *model.LevelResult {
	merged := &model.LevelResult{
		Units:     make(map[string]model.UnitResult, len(prior.Units)+len(incoming.Units)),
		FailedAoA: incoming.FailedAoA,
		TableFile: prior.TableFile,
		OutDir:    prior.OutDir,
	}
	for k, v := range prior.Units {
		merged.Units[k] = v
	}
	for k, v := range incoming.Units {
		merged.Units[k] = v
	}
	if incoming.TableFile != "" {
		merged.TableFile = incoming.TableFile
	}
	if incoming.OutDir != "" {
		merged.OutDir = incoming.OutDir
	}
	return merged
}
