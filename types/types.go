// Package types defines the shared data structures for the LingoQuest
// progression engine. It contains only type definitions and the trivial
// constructors for the condition tree.
package types

// LevelID is a CEFR-style proficiency tier ("A0", "A0+", "A1", ...).
type LevelID string

// BilingualText carries a string in both the player's native language
// and the target language being learned.
type BilingualText struct {
	Native string `json:"native_language"`
	Target string `json:"target_language"`
}

// SkillCategory classifies a language skill.
type SkillCategory string

const (
	SkillVocabulary    SkillCategory = "vocabulary"
	SkillGrammar       SkillCategory = "grammar"
	SkillPragmatic     SkillCategory = "pragmatic"
	SkillCultural      SkillCategory = "cultural"
	SkillPronunciation SkillCategory = "pronunciation"
	SkillListening     SkillCategory = "listening"
	SkillReading       SkillCategory = "reading"
)

// Skill is a trackable language competence with a level in [0, MaxLevel].
type Skill struct {
	ID                 string
	Name               BilingualText
	Description        BilingualText
	Category           SkillCategory
	Difficulty         LevelID
	MaxLevel           int // default 100
	Prerequisites      []string
	Weight             float64
	EvaluationCriteria []string
}

// Trigger is a rule that awards skill points when its condition holds.
// Description doubles as the trigger's identity key: the fired-trigger
// dedup set and the cooldown counters are both keyed on it.
type Trigger struct {
	SkillID              string
	PointsAwarded        int
	Repeatable           bool
	CooldownInteractions int
	Description          string
	Condition            Condition
}

// SkillThreshold is a minimum level required for one named skill.
type SkillThreshold struct {
	SkillID      string
	MinimumLevel int
}

// LevelRequirement describes what it takes to advance one level edge.
type LevelRequirement struct {
	FromLevel               LevelID
	ToLevel                 LevelID
	MinimumTotalSkillPoints int
	RequiredSkillThresholds []SkillThreshold
	FlexibleSkillPool       []string
	FlexibleSkillCount      int
	FlexibleThreshold       int
	Description             string
}

// LevelProgressionSpec is the ordered level ladder plus one requirement
// per adjacent-level edge, found by (from, to) lookup.
type LevelProgressionSpec struct {
	LevelOrder   []LevelID
	Requirements []LevelRequirement
}

// CompletionType tags how a quest task is satisfied.
type CompletionType string

const (
	CompleteAtLocation   CompletionType = "at_location"
	CompleteHasItem      CompletionType = "has_item"
	CompleteTalkedTo     CompletionType = "talked_to"
	CompleteGaveItem     CompletionType = "gave_item"
	CompleteReceivedItem CompletionType = "received_item"
	CompleteFlagSet      CompletionType = "flag_set"
	CompleteLearnedInfo  CompletionType = "learned_info"
)

// CompletionCriteria names what a task's predicate checks against.
type CompletionCriteria struct {
	TargetID string // location, item, or NPC id depending on the type
	FlagName string // for flag_set and learned_info
}

// TaskEffects are applied when a task completes. Unlock announcements
// are informational only; travel gating lives with the world owner.
type TaskEffects struct {
	SetFlags        []string
	GiveItems       []string
	UnlockLocations []string
}

// QuestTask is one step of a quest. Tasks are stored unordered and
// evaluated ascending by Order; only the first incomplete task is ever
// evaluated on a poll.
type QuestTask struct {
	ID          string
	Order       int
	Description BilingualText
	Type        CompletionType
	Criteria    CompletionCriteria
	OnComplete  TaskEffects
	Completed   bool
}

// QuestRewards are granted once, when the quest's last task completes.
type QuestRewards struct {
	Experience      int
	Items           []string
	StoryFlags      []string
	UnlockLocations []string
	UnlockQuests    []string
}

// QuestUnlockRequirements gate when a quest becomes available.
type QuestUnlockRequirements struct {
	MinimumLevel   LevelID
	RequiredQuests []string
}

// Quest is a sequence of tasks with rewards. Complete iff every task is.
type Quest struct {
	ID          string
	Name        BilingualText
	Description BilingualText
	GiverNPC    string
	Level       LevelID
	Tasks       []QuestTask
	Rewards     QuestRewards
	Unlock      QuestUnlockRequirements
}

// Item is a world object; its vocabulary word is the colloquial alias
// that resolves to the canonical item id.
type Item struct {
	ID             string
	Name           BilingualText
	LocationID     string
	VocabularyWord BilingualText
	Price          int
}

// Location is a place the player can be, gated by minimum level.
type Location struct {
	ID           string
	Name         BilingualText
	MinimumLevel LevelID
	Connections  []string
}

// NPC is the minimal in-world character record the engine needs.
type NPC struct {
	ID         string
	Name       BilingualText
	LocationID string
	Greeting   BilingualText
}

// Catalog aggregates the immutable definitions loaded once per session.
type Catalog struct {
	Skills      map[string]Skill
	SkillOrder  []string // catalog order, for stable iteration
	Triggers    []Trigger
	Progression LevelProgressionSpec
	Quests      []Quest
	Items       map[string]Item
	Locations   map[string]Location
	StartingLoc string
	NPCs        map[string]NPC
	Aliases     map[string]string // colloquial name → canonical item id
}

// GameFacts is the read-only world snapshot evaluators consume. The
// maps are shared with the world owner; evaluators must never mutate.
type GameFacts struct {
	CurrentLocation  string
	VisitedLocations map[string]bool
	Inventory        []string
	GivenItems       map[string]bool
	TalkedToNPCs     map[string]bool
	StoryFlags       map[string]bool
	LearnedInfo      map[string]bool
	CompletedQuests  map[string]bool
}

// GrammarCheckResult is the usage evidence produced by the grammar
// collaborator for one player utterance.
type GrammarCheckResult struct {
	VocabCorrect        []string `json:"vocab_correct"`
	GrammarPatterns     []string `json:"grammar_patterns"`
	SkillDemonstrations []string `json:"skill_demonstrations"`
}

// Empty reports whether the result carries no usage evidence at all.
func (r GrammarCheckResult) Empty() bool {
	return len(r.VocabCorrect) == 0 && len(r.GrammarPatterns) == 0 && len(r.SkillDemonstrations) == 0
}

// AwardEvent records skill points granted by one fired trigger.
type AwardEvent struct {
	SkillID            string
	PointsAwarded      int
	TriggerDescription string
}

// LevelUpEvent records a CEFR level advancement.
type LevelUpEvent struct {
	OldLevel LevelID
	NewLevel LevelID
}

// TaskCompletionEvent records one quest task transitioning to complete.
type TaskCompletionEvent struct {
	QuestID         string
	QuestName       string
	TaskDescription string
	CompletedTasks  int
	TotalTasks      int
}

// QuestCompletionEvent records a whole quest completing.
type QuestCompletionEvent struct {
	QuestID   string
	QuestName string
	XPReward  int
}
