// Package level implements the CEFR level-progression evaluator:
// threshold and flexible-pool requirements over accumulated skill
// levels, with human-readable failure reasons for the UI.
package level

import (
	"fmt"

	"github.com/tessera-games/lingoquest/types"
)

// Decision is the outcome of a CanAdvance check. NextLevel is set only
// when advancing.
type Decision struct {
	CanAdvance bool
	Reasons    []string
	NextLevel  types.LevelID
}

// CanAdvance checks whether the player may move from current to the
// next level on the ladder. All three requirement categories are
// evaluated and failures accumulate rather than short-circuiting, so
// the player sees everything still missing at once.
func CanAdvance(spec types.LevelProgressionSpec, current types.LevelID, skillLevels map[string]int) Decision {
	next, ok := nextLevel(spec.LevelOrder, current)
	if !ok {
		return Decision{Reasons: []string{fmt.Sprintf("already at max level %s", current)}}
	}

	req, ok := requirementFor(spec.Requirements, current, next)
	if !ok {
		return Decision{Reasons: []string{fmt.Sprintf("no progression path from %s to %s", current, next)}}
	}

	var reasons []string

	total := sum(skillLevels)
	if total < req.MinimumTotalSkillPoints {
		reasons = append(reasons, fmt.Sprintf(
			"total skill points %d below required %d", total, req.MinimumTotalSkillPoints))
	}

	for _, th := range req.RequiredSkillThresholds {
		if skillLevels[th.SkillID] < th.MinimumLevel {
			reasons = append(reasons, fmt.Sprintf(
				"skill %s at %d, needs %d", th.SkillID, skillLevels[th.SkillID], th.MinimumLevel))
		}
	}

	if req.FlexibleSkillCount > 0 {
		qualified := 0
		for _, id := range req.FlexibleSkillPool {
			if skillLevels[id] >= req.FlexibleThreshold {
				qualified++
			}
		}
		if qualified < req.FlexibleSkillCount {
			reasons = append(reasons, fmt.Sprintf(
				"only %d of %d flexible skills at %d+ (pool of %d)",
				qualified, req.FlexibleSkillCount, req.FlexibleThreshold, len(req.FlexibleSkillPool)))
		}
	}

	if len(reasons) > 0 {
		return Decision{Reasons: reasons}
	}
	return Decision{CanAdvance: true, NextLevel: next}
}

// RequirementDetail is one required-threshold row for UI display.
type RequirementDetail struct {
	SkillID  string
	Current  int
	Required int
	Met      bool
}

// FlexibleDetail is the flexible-pool breakdown for UI display.
type FlexibleDetail struct {
	Qualified []string
	Count     int
	Required  int
	Threshold int
	Met       bool
}

// Details is the read-only progress projection toward the next level.
type Details struct {
	NextLevel      types.LevelID
	AtMaxLevel     bool
	TotalPoints    int
	RequiredPoints int
	TotalMet       bool
	Thresholds     []RequirementDetail
	Flexible       FlexibleDetail
	Description    string
}

// ProgressDetails exposes the same three requirement breakdowns
// CanAdvance evaluates, as a pure projection with no side effects.
func ProgressDetails(spec types.LevelProgressionSpec, current types.LevelID, skillLevels map[string]int) Details {
	next, ok := nextLevel(spec.LevelOrder, current)
	if !ok {
		return Details{AtMaxLevel: true, TotalPoints: sum(skillLevels)}
	}

	req, ok := requirementFor(spec.Requirements, current, next)
	if !ok {
		return Details{NextLevel: next, TotalPoints: sum(skillLevels)}
	}

	d := Details{
		NextLevel:      next,
		TotalPoints:    sum(skillLevels),
		RequiredPoints: req.MinimumTotalSkillPoints,
		Description:    req.Description,
	}
	d.TotalMet = d.TotalPoints >= d.RequiredPoints

	for _, th := range req.RequiredSkillThresholds {
		cur := skillLevels[th.SkillID]
		d.Thresholds = append(d.Thresholds, RequirementDetail{
			SkillID:  th.SkillID,
			Current:  cur,
			Required: th.MinimumLevel,
			Met:      cur >= th.MinimumLevel,
		})
	}

	d.Flexible = FlexibleDetail{
		Required:  req.FlexibleSkillCount,
		Threshold: req.FlexibleThreshold,
	}
	for _, id := range req.FlexibleSkillPool {
		if skillLevels[id] >= req.FlexibleThreshold {
			d.Flexible.Qualified = append(d.Flexible.Qualified, id)
		}
	}
	d.Flexible.Count = len(d.Flexible.Qualified)
	d.Flexible.Met = d.Flexible.Count >= d.Flexible.Required

	return d
}

// AtLeast reports whether level have sits at or above need on the
// ladder. Levels missing from the order never satisfy a requirement.
func AtLeast(order []types.LevelID, have, need types.LevelID) bool {
	if need == "" {
		return true
	}
	hi, ni := index(order, have), index(order, need)
	if hi < 0 || ni < 0 {
		return false
	}
	return hi >= ni
}

func nextLevel(order []types.LevelID, current types.LevelID) (types.LevelID, bool) {
	i := index(order, current)
	if i < 0 || i+1 >= len(order) {
		return "", false
	}
	return order[i+1], true
}

func requirementFor(reqs []types.LevelRequirement, from, to types.LevelID) (types.LevelRequirement, bool) {
	for _, r := range reqs {
		if r.FromLevel == from && r.ToLevel == to {
			return r, true
		}
	}
	return types.LevelRequirement{}, false
}

func index(order []types.LevelID, id types.LevelID) int {
	for i, lvl := range order {
		if lvl == id {
			return i
		}
	}
	return -1
}

func sum(skillLevels map[string]int) int {
	total := 0
	for _, lvl := range skillLevels {
		total += lvl
	}
	return total
}
