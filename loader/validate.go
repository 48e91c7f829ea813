package loader

import (
	"fmt"
	"strings"

	"github.com/tessera-games/lingoquest/types"
)

// ValidationError collects all validation errors and warnings found in
// a compiled catalog. Errors abort the load; warnings do not.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("catalog validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

var validTriggerTypes = map[types.TriggerType]bool{
	types.TriggerVocabUsedCorrectly:     true,
	types.TriggerVocabRecognized:        true,
	types.TriggerGrammarUsedCorrectly:   true,
	types.TriggerGrammarPatternProduced: true,
	types.TriggerSkillDemonstrated:      true,
	types.TriggerSkillLevelReached:      true,
	types.TriggerTotalSkillPoints:       true,
	types.TriggerQuestCompleted:         true,
	types.TriggerNPCInteraction:         true,
	types.TriggerItemAcquired:           true,
	types.TriggerLocationVisited:        true,
}

var validOperators = map[types.Operator]bool{
	types.OpGreaterEqual: true,
	types.OpGreater:      true,
	types.OpEqual:        true,
	types.OpLessEqual:    true,
	types.OpLess:         true,
	types.OpNotEqual:     true,
}

var validCompletionTypes = map[types.CompletionType]bool{
	types.CompleteAtLocation:   true,
	types.CompleteHasItem:      true,
	types.CompleteTalkedTo:     true,
	types.CompleteGaveItem:     true,
	types.CompleteReceivedItem: true,
	types.CompleteFlagSet:      true,
	types.CompleteLearnedInfo:  true,
}

// validate checks the compiled catalog for referential integrity and
// consistency. Unknown closed-set values (trigger types, operators,
// completion types) are errors: a trigger must never silently evaluate
// against the wrong counter. Dangling id references are warnings: a
// missing counter reads as 0 at evaluation time and never crashes.
func validate(cat *types.Catalog) *ValidationError {
	ve := &ValidationError{}

	questIDs := map[string]bool{}
	for _, q := range cat.Quests {
		if questIDs[q.ID] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("duplicate quest id %q", q.ID))
		}
		questIDs[q.ID] = true
	}

	descriptions := map[string]bool{}
	for _, t := range cat.Triggers {
		if t.Description == "" {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"trigger for skill %q has no description (used as dedup key)", t.SkillID))
		} else if descriptions[t.Description] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"duplicate trigger description %q; descriptions key dedup and cooldowns", t.Description))
		}
		descriptions[t.Description] = true

		if t.PointsAwarded < 1 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"trigger %q awards %d points, must be at least 1", t.Description, t.PointsAwarded))
		}
		if t.CooldownInteractions < 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"trigger %q has negative cooldown", t.Description))
		}
		if _, ok := cat.Skills[t.SkillID]; !ok {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"trigger %q awards unknown skill %q", t.Description, t.SkillID))
		}

		validateCondition(t.Condition, t.Description, cat, questIDs, ve)
	}

	for _, q := range cat.Quests {
		validateQuest(q, cat, ve)
	}

	for i := 0; i+1 < len(cat.Progression.LevelOrder); i++ {
		from, to := cat.Progression.LevelOrder[i], cat.Progression.LevelOrder[i+1]
		if !hasRequirement(cat.Progression.Requirements, from, to) {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"no progression requirement for %s -> %s", from, to))
		}
	}
	for _, req := range cat.Progression.Requirements {
		for _, th := range req.RequiredSkillThresholds {
			if _, ok := cat.Skills[th.SkillID]; !ok {
				ve.Warnings = append(ve.Warnings, fmt.Sprintf(
					"requirement %s -> %s references unknown skill %q", req.FromLevel, req.ToLevel, th.SkillID))
			}
		}
		for _, id := range req.FlexibleSkillPool {
			if _, ok := cat.Skills[id]; !ok {
				ve.Warnings = append(ve.Warnings, fmt.Sprintf(
					"requirement %s -> %s pool references unknown skill %q", req.FromLevel, req.ToLevel, id))
			}
		}
		if req.FlexibleSkillCount > len(req.FlexibleSkillPool) {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"requirement %s -> %s needs %d flexible skills from a pool of %d",
				req.FromLevel, req.ToLevel, req.FlexibleSkillCount, len(req.FlexibleSkillPool)))
		}
	}

	return ve
}

// validateCondition walks a condition tree. The compiler already
// rejected empty compounds; here the closed sets and id references are
// checked.
func validateCondition(c types.Condition, triggerDesc string, cat *types.Catalog,
	questIDs map[string]bool, ve *ValidationError) {

	switch node := c.(type) {
	case types.Leaf:
		if !validTriggerTypes[node.Trigger] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"trigger %q uses unknown trigger type %q", triggerDesc, node.Trigger))
		}
		if !validOperators[node.Op] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"trigger %q uses unknown operator %q", triggerDesc, node.Op))
		}
		if node.Threshold < 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"trigger %q has negative threshold %d", triggerDesc, node.Threshold))
		}
		validateLeafTarget(node, triggerDesc, cat, questIDs, ve)

	case types.And:
		if len(node.Children) == 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf("trigger %q has empty AND", triggerDesc))
		}
		for _, child := range node.Children {
			validateCondition(child, triggerDesc, cat, questIDs, ve)
		}

	case types.Or:
		if len(node.Children) == 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf("trigger %q has empty OR", triggerDesc))
		}
		for _, child := range node.Children {
			validateCondition(child, triggerDesc, cat, questIDs, ve)
		}

	case nil:
		ve.Errors = append(ve.Errors, fmt.Sprintf("trigger %q has no condition", triggerDesc))
	}
}

func validateLeafTarget(leaf types.Leaf, triggerDesc string, cat *types.Catalog,
	questIDs map[string]bool, ve *ValidationError) {

	warn := func(kind string) {
		ve.Warnings = append(ve.Warnings, fmt.Sprintf(
			"trigger %q references unknown %s %q", triggerDesc, kind, leaf.TargetID))
	}

	switch leaf.Trigger {
	case types.TriggerSkillLevelReached, types.TriggerSkillDemonstrated:
		if _, ok := cat.Skills[leaf.TargetID]; !ok {
			warn("skill")
		}
	case types.TriggerQuestCompleted:
		if !questIDs[leaf.TargetID] {
			warn("quest")
		}
	case types.TriggerNPCInteraction:
		if len(cat.NPCs) > 0 {
			if _, ok := cat.NPCs[leaf.TargetID]; !ok {
				warn("npc")
			}
		}
	case types.TriggerItemAcquired:
		if len(cat.Items) > 0 {
			if _, ok := cat.Items[leaf.TargetID]; !ok {
				warn("item")
			}
		}
	case types.TriggerLocationVisited:
		if len(cat.Locations) > 0 {
			if _, ok := cat.Locations[leaf.TargetID]; !ok {
				warn("location")
			}
		}
	}
}

func validateQuest(q types.Quest, cat *types.Catalog, ve *ValidationError) {
	if len(q.Tasks) == 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf("quest %q has no tasks", q.ID))
	}

	if q.GiverNPC != "" && len(cat.NPCs) > 0 {
		if _, ok := cat.NPCs[q.GiverNPC]; !ok {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"quest %q giver references unknown npc %q", q.ID, q.GiverNPC))
		}
	}

	orders := map[int]bool{}
	for _, task := range q.Tasks {
		if !validCompletionTypes[task.Type] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"quest %q task %d uses unknown completion type %q", q.ID, task.Order, task.Type))
			continue
		}
		if orders[task.Order] {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"quest %q has duplicate task order %d", q.ID, task.Order))
		}
		orders[task.Order] = true
		validateTaskCriteria(q.ID, task, cat, ve)
	}
}

func validateTaskCriteria(questID string, task types.QuestTask, cat *types.Catalog, ve *ValidationError) {
	warn := func(kind, id string) {
		ve.Warnings = append(ve.Warnings, fmt.Sprintf(
			"quest %q task %d references unknown %s %q", questID, task.Order, kind, id))
	}

	switch task.Type {
	case types.CompleteAtLocation:
		if task.Criteria.TargetID == "" {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"quest %q task %d (at_location) has no target", questID, task.Order))
		} else if len(cat.Locations) > 0 {
			if _, ok := cat.Locations[task.Criteria.TargetID]; !ok {
				warn("location", task.Criteria.TargetID)
			}
		}
	case types.CompleteTalkedTo:
		if task.Criteria.TargetID == "" {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"quest %q task %d (talked_to) has no target", questID, task.Order))
		} else if len(cat.NPCs) > 0 {
			if _, ok := cat.NPCs[task.Criteria.TargetID]; !ok {
				warn("npc", task.Criteria.TargetID)
			}
		}
	case types.CompleteHasItem, types.CompleteGaveItem, types.CompleteReceivedItem:
		if task.Criteria.TargetID == "" {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"quest %q task %d (%s) has no target", questID, task.Order, task.Type))
		} else if len(cat.Items) > 0 {
			target := task.Criteria.TargetID
			if canonical, ok := cat.Aliases[target]; ok {
				target = canonical
			}
			if _, ok := cat.Items[target]; !ok {
				warn("item", task.Criteria.TargetID)
			}
		}
	case types.CompleteFlagSet:
		if task.Criteria.FlagName == "" {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"quest %q task %d (flag_set) has no flag name", questID, task.Order))
		}
	case types.CompleteLearnedInfo:
		if task.Criteria.TargetID == "" && task.Criteria.FlagName == "" {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"quest %q task %d (learned_info) has neither target nor flag", questID, task.Order))
		}
	}
}

func hasRequirement(reqs []types.LevelRequirement, from, to types.LevelID) bool {
	for _, r := range reqs {
		if r.FromLevel == from && r.ToLevel == to {
			return true
		}
	}
	return false
}
