package types

import "errors"

// TriggerType names the counter or fact a leaf condition reads.
type TriggerType string

const (
	TriggerVocabUsedCorrectly     TriggerType = "vocab_used_correctly"
	TriggerVocabRecognized        TriggerType = "vocab_recognized"
	TriggerGrammarUsedCorrectly   TriggerType = "grammar_used_correctly"
	TriggerGrammarPatternProduced TriggerType = "grammar_pattern_produced"
	TriggerSkillDemonstrated      TriggerType = "skill_demonstrated"
	TriggerSkillLevelReached      TriggerType = "skill_level_reached"
	TriggerTotalSkillPoints       TriggerType = "total_skill_points"
	TriggerQuestCompleted         TriggerType = "quest_completed"
	TriggerNPCInteraction         TriggerType = "npc_interaction"
	TriggerItemAcquired           TriggerType = "item_acquired"
	TriggerLocationVisited        TriggerType = "location_visited"
)

// Operator compares a counter value against a leaf threshold.
type Operator string

const (
	OpGreaterEqual Operator = ">="
	OpGreater      Operator = ">"
	OpEqual        Operator = "=="
	OpLessEqual    Operator = "<="
	OpLess         Operator = "<"
	OpNotEqual     Operator = "!="
)

// Condition is a trigger condition tree: a comparison leaf, or an
// AND/OR node over child conditions. Conditions form a tree, never a
// graph, so structural recursion over them always terminates.
type Condition interface {
	cond()
}

// Leaf compares one counter or fact against a threshold.
type Leaf struct {
	Trigger   TriggerType
	TargetID  string
	Op        Operator
	Threshold int
}

// And holds iff every child holds. Must have at least one child.
type And struct {
	Children []Condition
}

// Or holds iff any child holds. Must have at least one child.
type Or struct {
	Children []Condition
}

func (Leaf) cond() {}
func (And) cond()  {}
func (Or) cond()   {}

// ErrEmptyCompound is returned by the compound constructors when given
// no children. An empty AND/OR is a catalog defect, never a runtime
// default.
var ErrEmptyCompound = errors.New("compound condition requires at least one child")

// NewAnd builds an AND node, rejecting empty child lists.
func NewAnd(children ...Condition) (And, error) {
	if len(children) == 0 {
		return And{}, ErrEmptyCompound
	}
	return And{Children: children}, nil
}

// NewOr builds an OR node, rejecting empty child lists.
func NewOr(children ...Condition) (Or, error) {
	if len(children) == 0 {
		return Or{}, ErrEmptyCompound
	}
	return Or{Children: children}, nil
}
