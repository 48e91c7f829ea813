// Package progress manages the mutable per-player progression record:
// skill levels, usage counters, fired-trigger dedup, and cooldowns.
// All mutation goes through methods so the invariants hold everywhere
// (awards clamp to the skill cap, counters never go negative).
package progress

import "github.com/tessera-games/lingoquest/types"

// DefaultMaxLevel caps a skill when the catalog does not say otherwise.
const DefaultMaxLevel = 100

// State is the per-player progression record. It is created empty when
// a session starts and persists for the lifetime of the save file.
type State struct {
	Skills              map[string]int  `json:"skills"`
	VocabUsage          map[string]int  `json:"vocab_usage"`
	GrammarUsage        map[string]int  `json:"grammar_usage"`
	SkillDemonstrations map[string]int  `json:"skill_demonstrations"`
	FiredTriggers       map[string]bool `json:"fired_triggers"`
	TriggerCooldowns    map[string]int  `json:"trigger_cooldowns"`
	TotalInteractions   int             `json:"total_interactions"`
}

// NewState creates an empty progression record.
func NewState() *State {
	return &State{
		Skills:              map[string]int{},
		VocabUsage:          map[string]int{},
		GrammarUsage:        map[string]int{},
		SkillDemonstrations: map[string]int{},
		FiredTriggers:       map[string]bool{},
		TriggerCooldowns:    map[string]int{},
	}
}

// RecordVocabUsage counts one correct use of a vocabulary word.
func (s *State) RecordVocabUsage(wordID string) {
	s.VocabUsage[wordID]++
}

// RecordGrammarUsage counts one correct production of a grammar pattern.
func (s *State) RecordGrammarUsage(patternID string) {
	s.GrammarUsage[patternID]++
}

// RecordSkillDemonstration counts one observed demonstration of a skill.
func (s *State) RecordSkillDemonstration(skillID string) {
	s.SkillDemonstrations[skillID]++
}

// SkillLevel returns the player's level for a skill. Unknown skills
// read as 0.
func (s *State) SkillLevel(skillID string) int {
	return s.Skills[skillID]
}

// TotalSkillPoints is the sum of all skill levels.
func (s *State) TotalSkillPoints() int {
	total := 0
	for _, lvl := range s.Skills {
		total += lvl
	}
	return total
}

// AwardSkillPoints adds points to a skill, clamped to [0, maxLevel].
// A maxLevel of 0 or less means DefaultMaxLevel. Returns the new level.
func (s *State) AwardSkillPoints(skillID string, points, maxLevel int) int {
	if maxLevel <= 0 {
		maxLevel = DefaultMaxLevel
	}
	lvl := s.Skills[skillID] + points
	if lvl > maxLevel {
		lvl = maxLevel
	}
	if lvl < 0 {
		lvl = 0
	}
	s.Skills[skillID] = lvl
	return lvl
}

// HasFired reports whether a trigger (by its description key) has
// already fired.
func (s *State) HasFired(description string) bool {
	return s.FiredTriggers[description]
}

// MarkTriggerFired records a non-repeatable trigger as spent.
func (s *State) MarkTriggerFired(description string) {
	s.FiredTriggers[description] = true
}

// ResetTriggerCooldown restarts the interaction count since a trigger
// last fired.
func (s *State) ResetTriggerCooldown(description string) {
	s.TriggerCooldowns[description] = 0
}

// InteractionsSinceFired returns how many interactions have elapsed
// since the trigger last fired. A trigger that never fired has no
// cooldown entry and reports elapsed=false, which callers treat as
// "eligible" (an infinite cooldown already served).
func (s *State) InteractionsSinceFired(description string) (int, bool) {
	n, ok := s.TriggerCooldowns[description]
	return n, ok
}

// IncrementInteraction advances the interaction clock: every tracked
// cooldown counter ticks by one, exactly once per grammar-checked
// utterance, and the lifetime total goes up.
func (s *State) IncrementInteraction() {
	for desc := range s.TriggerCooldowns {
		s.TriggerCooldowns[desc]++
	}
	s.TotalInteractions++
}

// Apply folds one grammar-check result into the usage counters and
// advances the interaction clock once. Empty results are a no-op: the
// clock does not tick.
func (s *State) Apply(result types.GrammarCheckResult) {
	if result.Empty() {
		return
	}
	for _, w := range result.VocabCorrect {
		s.RecordVocabUsage(w)
	}
	for _, p := range result.GrammarPatterns {
		s.RecordGrammarUsage(p)
	}
	for _, id := range result.SkillDemonstrations {
		s.RecordSkillDemonstration(id)
	}
	s.IncrementInteraction()
}

// Normalize replaces nil maps with empty ones. Deserialized states pass
// through here so lookups and writes never hit a nil map.
func (s *State) Normalize() {
	if s.Skills == nil {
		s.Skills = map[string]int{}
	}
	if s.VocabUsage == nil {
		s.VocabUsage = map[string]int{}
	}
	if s.GrammarUsage == nil {
		s.GrammarUsage = map[string]int{}
	}
	if s.SkillDemonstrations == nil {
		s.SkillDemonstrations = map[string]int{}
	}
	if s.FiredTriggers == nil {
		s.FiredTriggers = map[string]bool{}
	}
	if s.TriggerCooldowns == nil {
		s.TriggerCooldowns = map[string]int{}
	}
}
