// Package world owns the mutable game-world state the evaluators read:
// location, inventory, interaction sets, story flags, and the active
// quest list. It is the single owner of GameFacts and implements the
// quest engine's Mutator surface.
package world

import (
	"fmt"

	"github.com/tessera-games/lingoquest/engine/level"
	"github.com/tessera-games/lingoquest/types"
)

// World is the per-session game-world state.
type World struct {
	Catalog *types.Catalog

	CurrentLocation string
	Visited         map[string]bool
	Inventory       []string
	Given           map[string]bool
	TalkedTo        map[string]bool
	StoryFlags      map[string]bool
	LearnedInfo     map[string]bool

	Quests          map[string]*types.Quest // deep copies with mutable task flags
	ActiveQuests    []string                // insertion order, stable for polling
	CompletedQuests map[string]bool

	Level types.LevelID
	XP    int
}

// New creates a world at the catalog's starting location and level
// order origin, with quest definitions copied so task completion flags
// are session-local.
func New(cat *types.Catalog) *World {
	w := &World{
		Catalog:         cat,
		CurrentLocation: cat.StartingLoc,
		Visited:         map[string]bool{},
		Inventory:       []string{},
		Given:           map[string]bool{},
		TalkedTo:        map[string]bool{},
		StoryFlags:      map[string]bool{},
		LearnedInfo:     map[string]bool{},
		Quests:          map[string]*types.Quest{},
		CompletedQuests: map[string]bool{},
	}
	if len(cat.Progression.LevelOrder) > 0 {
		w.Level = cat.Progression.LevelOrder[0]
	}
	if w.CurrentLocation != "" {
		w.Visited[w.CurrentLocation] = true
	}
	for i := range cat.Quests {
		q := cat.Quests[i] // copy
		q.Tasks = append([]types.QuestTask(nil), cat.Quests[i].Tasks...)
		w.Quests[q.ID] = &q
	}
	return w
}

// Facts returns the read-only snapshot evaluators consume. The maps
// are shared with the world, not copied; callers must not mutate them.
func (w *World) Facts() types.GameFacts {
	return types.GameFacts{
		CurrentLocation:  w.CurrentLocation,
		VisitedLocations: w.Visited,
		Inventory:        w.Inventory,
		GivenItems:       w.Given,
		TalkedToNPCs:     w.TalkedTo,
		StoryFlags:       w.StoryFlags,
		LearnedInfo:      w.LearnedInfo,
		CompletedQuests:  w.CompletedQuests,
	}
}

// Move walks the player to a connected location, gated by the
// location's minimum level.
func (w *World) Move(locationID string) error {
	loc, ok := w.Catalog.Locations[locationID]
	if !ok {
		return fmt.Errorf("unknown location %q", locationID)
	}
	if !w.connected(locationID) {
		return fmt.Errorf("no path from %s to %s", w.CurrentLocation, locationID)
	}
	if !level.AtLeast(w.Catalog.Progression.LevelOrder, w.Level, loc.MinimumLevel) {
		return fmt.Errorf("location %s requires level %s", locationID, loc.MinimumLevel)
	}
	w.CurrentLocation = locationID
	w.Visited[locationID] = true
	return nil
}

func (w *World) connected(locationID string) bool {
	cur, ok := w.Catalog.Locations[w.CurrentLocation]
	if !ok {
		return true // unplaced player can go anywhere known
	}
	for _, id := range cur.Connections {
		if id == locationID {
			return true
		}
	}
	return false
}

// Take picks up an item at the current location.
func (w *World) Take(itemID string) error {
	item, ok := w.Catalog.Items[itemID]
	if !ok {
		return fmt.Errorf("unknown item %q", itemID)
	}
	if item.LocationID != "" && item.LocationID != w.CurrentLocation {
		return fmt.Errorf("item %s is not here", itemID)
	}
	w.AddItem(itemID)
	return nil
}

// Give hands an item from the inventory to an NPC: the item moves to
// the given set and the NPC counts as talked to.
func (w *World) Give(itemID, npcID string) error {
	idx := -1
	for i, id := range w.Inventory {
		if id == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("not carrying %q", itemID)
	}
	if _, ok := w.Catalog.NPCs[npcID]; !ok {
		return fmt.Errorf("unknown npc %q", npcID)
	}
	w.Inventory = append(w.Inventory[:idx], w.Inventory[idx+1:]...)
	w.Given[itemID] = true
	w.TalkedTo[npcID] = true
	return nil
}

// Talk records an interaction with an NPC.
func (w *World) Talk(npcID string) error {
	if _, ok := w.Catalog.NPCs[npcID]; !ok {
		return fmt.Errorf("unknown npc %q", npcID)
	}
	w.TalkedTo[npcID] = true
	return nil
}

// Learn records a learned-info id.
func (w *World) Learn(infoID string) {
	w.LearnedInfo[infoID] = true
}

// AcceptQuest adds a quest to the active list if its unlock
// requirements are met and it is not already active or completed.
func (w *World) AcceptQuest(questID string) error {
	q, ok := w.Quests[questID]
	if !ok {
		return fmt.Errorf("unknown quest %q", questID)
	}
	if w.CompletedQuests[questID] {
		return fmt.Errorf("quest %s already completed", questID)
	}
	for _, id := range w.ActiveQuests {
		if id == questID {
			return fmt.Errorf("quest %s already active", questID)
		}
	}
	if !level.AtLeast(w.Catalog.Progression.LevelOrder, w.Level, q.Unlock.MinimumLevel) {
		return fmt.Errorf("quest %s requires level %s", questID, q.Unlock.MinimumLevel)
	}
	for _, dep := range q.Unlock.RequiredQuests {
		if !w.CompletedQuests[dep] {
			return fmt.Errorf("quest %s requires completing %s first", questID, dep)
		}
	}
	w.ActiveQuests = append(w.ActiveQuests, questID)
	return nil
}

// ActiveQuestList resolves the active quest ids to their records, in
// insertion order.
func (w *World) ActiveQuestList() []*types.Quest {
	quests := make([]*types.Quest, 0, len(w.ActiveQuests))
	for _, id := range w.ActiveQuests {
		if q, ok := w.Quests[id]; ok {
			quests = append(quests, q)
		}
	}
	return quests
}

// AddStoryFlag implements quest.Mutator.
func (w *World) AddStoryFlag(flag string) {
	w.StoryFlags[flag] = true
}

// AddItem implements quest.Mutator.
func (w *World) AddItem(itemID string) {
	w.Inventory = append(w.Inventory, itemID)
}

// GrantXP implements quest.Mutator.
func (w *World) GrantXP(amount int) {
	w.XP += amount
}

// CompleteQuest implements quest.Mutator: the quest id moves from the
// active list to the completed set.
func (w *World) CompleteQuest(questID string) {
	for i, id := range w.ActiveQuests {
		if id == questID {
			w.ActiveQuests = append(w.ActiveQuests[:i], w.ActiveQuests[i+1:]...)
			break
		}
	}
	w.CompletedQuests[questID] = true
}
