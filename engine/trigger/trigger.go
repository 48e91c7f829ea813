// Package trigger implements the skill-point trigger evaluator: gate
// checks (dedup and cooldown), recursive condition evaluation, and
// award bookkeeping.
package trigger

import (
	"github.com/tessera-games/lingoquest/engine/progress"
	"github.com/tessera-games/lingoquest/types"
)

// Evaluate runs every trigger in catalog order against the progression
// state and world facts. Triggers that pass their gate and whose
// condition holds award points (clamped to the skill cap), update the
// dedup set and cooldown counters, and emit one AwardEvent each.
func Evaluate(triggers []types.Trigger, skills map[string]types.Skill,
	st *progress.State, facts types.GameFacts) []types.AwardEvent {

	var awards []types.AwardEvent

	for _, t := range triggers {
		// Gate: a spent non-repeatable trigger never fires again.
		if !t.Repeatable && st.HasFired(t.Description) {
			continue
		}
		// Gate: a cooling-down trigger waits out its interactions. A
		// trigger with no cooldown entry has never fired and is
		// eligible immediately.
		if t.CooldownInteractions > 0 {
			if since, fired := st.InteractionsSinceFired(t.Description); fired && since < t.CooldownInteractions {
				continue
			}
		}

		if !EvalCondition(t.Condition, st, facts) {
			continue
		}

		maxLevel := progress.DefaultMaxLevel
		if sk, ok := skills[t.SkillID]; ok && sk.MaxLevel > 0 {
			maxLevel = sk.MaxLevel
		}
		st.AwardSkillPoints(t.SkillID, t.PointsAwarded, maxLevel)
		if !t.Repeatable {
			st.MarkTriggerFired(t.Description)
		}
		st.ResetTriggerCooldown(t.Description)

		awards = append(awards, types.AwardEvent{
			SkillID:            t.SkillID,
			PointsAwarded:      t.PointsAwarded,
			TriggerDescription: t.Description,
		})
	}

	return awards
}

// EvalCondition resolves a condition tree against the current state.
// Compound nodes recurse structurally; the loader guarantees non-empty
// children, so an empty node here is a defect and reads as false.
func EvalCondition(c types.Condition, st *progress.State, facts types.GameFacts) bool {
	switch node := c.(type) {
	case types.Leaf:
		return compare(node.Op, currentValue(node, st, facts), node.Threshold)

	case types.And:
		if len(node.Children) == 0 {
			return false
		}
		for _, child := range node.Children {
			if !EvalCondition(child, st, facts) {
				return false
			}
		}
		return true

	case types.Or:
		for _, child := range node.Children {
			if EvalCondition(child, st, facts) {
				return true
			}
		}
		return false

	default:
		return false
	}
}

// currentValue dispatches a leaf's trigger type to its counter source.
// Missing counters read as 0; they never crash evaluation.
func currentValue(leaf types.Leaf, st *progress.State, facts types.GameFacts) int {
	switch leaf.Trigger {
	case types.TriggerVocabUsedCorrectly, types.TriggerVocabRecognized:
		return st.VocabUsage[leaf.TargetID]
	case types.TriggerGrammarUsedCorrectly, types.TriggerGrammarPatternProduced:
		return st.GrammarUsage[leaf.TargetID]
	case types.TriggerSkillDemonstrated:
		return st.SkillDemonstrations[leaf.TargetID]
	case types.TriggerSkillLevelReached:
		return st.SkillLevel(leaf.TargetID)
	case types.TriggerTotalSkillPoints:
		return st.TotalSkillPoints()
	case types.TriggerQuestCompleted:
		return boolValue(facts.CompletedQuests[leaf.TargetID])
	case types.TriggerNPCInteraction:
		return boolValue(facts.TalkedToNPCs[leaf.TargetID])
	case types.TriggerItemAcquired:
		return boolValue(inInventory(facts.Inventory, leaf.TargetID))
	case types.TriggerLocationVisited:
		return boolValue(facts.VisitedLocations[leaf.TargetID])
	default:
		return 0
	}
}

func compare(op types.Operator, value, threshold int) bool {
	switch op {
	case types.OpGreaterEqual:
		return value >= threshold
	case types.OpGreater:
		return value > threshold
	case types.OpEqual:
		return value == threshold
	case types.OpLessEqual:
		return value <= threshold
	case types.OpLess:
		return value < threshold
	case types.OpNotEqual:
		return value != threshold
	default:
		return false
	}
}

func boolValue(b bool) int {
	if b {
		return 1
	}
	return 0
}

func inInventory(inventory []string, id string) bool {
	for _, entry := range inventory {
		if entry == id {
			return true
		}
	}
	return false
}
