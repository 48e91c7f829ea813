// Package save implements JSON serialization and deserialization of a
// player session: the progression record, world facts, and quest task
// flags. Round-tripping a session through Save and Apply reproduces it
// field for field.
package save

import (
	"encoding/json"

	"github.com/tessera-games/lingoquest/engine"
	"github.com/tessera-games/lingoquest/engine/progress"
	"github.com/tessera-games/lingoquest/types"
)

// FormatVersion identifies the save layout.
const FormatVersion = "1"

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Version string        `json:"version"`
	Level   types.LevelID `json:"level"`
	XP      int           `json:"xp"`

	Progress *progress.State `json:"progress"`

	CurrentLocation string          `json:"current_location"`
	Visited         map[string]bool `json:"visited_locations"`
	Inventory       []string        `json:"inventory"`
	Given           map[string]bool `json:"given_items"`
	TalkedTo        map[string]bool `json:"talked_to_npcs"`
	StoryFlags      map[string]bool `json:"story_flags"`
	LearnedInfo     map[string]bool `json:"learned_info"`

	// Task completion flags per quest, in the quest's stored task
	// order. Saves are only applied against the catalog they were
	// written from.
	QuestTasks      map[string][]bool `json:"quest_tasks"`
	ActiveQuests    []string          `json:"active_quests"`
	CompletedQuests map[string]bool   `json:"completed_quests"`
}

// Save serializes a session to JSON bytes.
func Save(e *engine.Engine) ([]byte, error) {
	w := e.World
	data := SaveData{
		Version:         FormatVersion,
		Level:           w.Level,
		XP:              w.XP,
		Progress:        e.Progress,
		CurrentLocation: w.CurrentLocation,
		Visited:         w.Visited,
		Inventory:       w.Inventory,
		Given:           w.Given,
		TalkedTo:        w.TalkedTo,
		StoryFlags:      w.StoryFlags,
		LearnedInfo:     w.LearnedInfo,
		QuestTasks:      map[string][]bool{},
		ActiveQuests:    w.ActiveQuests,
		CompletedQuests: w.CompletedQuests,
	}
	for id, q := range w.Quests {
		flags := make([]bool, len(q.Tasks))
		for i := range q.Tasks {
			flags[i] = q.Tasks[i].Completed
		}
		data.QuestTasks[id] = flags
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData, replacing nil maps so
// applying a sparse save never leaves nil state behind.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	if sd.Progress == nil {
		sd.Progress = progress.NewState()
	}
	sd.Progress.Normalize()
	if sd.Visited == nil {
		sd.Visited = map[string]bool{}
	}
	if sd.Inventory == nil {
		sd.Inventory = []string{}
	}
	if sd.Given == nil {
		sd.Given = map[string]bool{}
	}
	if sd.TalkedTo == nil {
		sd.TalkedTo = map[string]bool{}
	}
	if sd.StoryFlags == nil {
		sd.StoryFlags = map[string]bool{}
	}
	if sd.LearnedInfo == nil {
		sd.LearnedInfo = map[string]bool{}
	}
	if sd.QuestTasks == nil {
		sd.QuestTasks = map[string][]bool{}
	}
	if sd.ActiveQuests == nil {
		sd.ActiveQuests = []string{}
	}
	if sd.CompletedQuests == nil {
		sd.CompletedQuests = map[string]bool{}
	}
	return &sd, nil
}

// Apply restores loaded save data onto a session.
func Apply(e *engine.Engine, sd *SaveData) {
	*e.Progress = *sd.Progress
	e.Progress.Normalize()

	w := e.World
	w.Level = sd.Level
	w.XP = sd.XP
	w.CurrentLocation = sd.CurrentLocation
	w.Visited = sd.Visited
	w.Inventory = sd.Inventory
	w.Given = sd.Given
	w.TalkedTo = sd.TalkedTo
	w.StoryFlags = sd.StoryFlags
	w.LearnedInfo = sd.LearnedInfo
	w.ActiveQuests = sd.ActiveQuests
	w.CompletedQuests = sd.CompletedQuests

	for id, flags := range sd.QuestTasks {
		q, ok := w.Quests[id]
		if !ok {
			continue
		}
		for i := range q.Tasks {
			if i < len(flags) {
				q.Tasks[i].Completed = flags[i]
			}
		}
	}
}
