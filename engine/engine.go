// Package engine wires the progression subsystems into a single
// per-session value: grammar evidence flows into counters and trigger
// evaluation, world actions flow into quest polling, and everything
// observable comes back out as events.
package engine

import (
	"context"

	"github.com/tessera-games/lingoquest/engine/level"
	"github.com/tessera-games/lingoquest/engine/progress"
	"github.com/tessera-games/lingoquest/engine/quest"
	"github.com/tessera-games/lingoquest/engine/trigger"
	"github.com/tessera-games/lingoquest/engine/world"
	"github.com/tessera-games/lingoquest/grammar"
	"github.com/tessera-games/lingoquest/types"
)

// Engine holds one player session: the immutable catalog, the mutable
// progression record and world, and the collaborators. It is not safe
// for concurrent use; a multi-session host wraps each Engine in its
// own session lock.
type Engine struct {
	Catalog  *types.Catalog
	Progress *progress.State
	World    *world.World

	quests  *quest.Engine
	checker grammar.Checker
}

// Result accumulates the events of one engine step for the caller to
// render, persist, or reward. The engine itself performs no I/O.
type Result struct {
	Awards          []types.AwardEvent
	LevelUp         *types.LevelUpEvent
	Tasks           []types.TaskCompletionEvent
	QuestsCompleted []types.QuestCompletionEvent
	Announcements   []string
}

// New creates a fresh session over a loaded catalog. The checker may
// be nil when utterances are graded elsewhere and fed in through
// ApplyGrammarResult.
func New(cat *types.Catalog, checker grammar.Checker) *Engine {
	return &Engine{
		Catalog:  cat,
		Progress: progress.NewState(),
		World:    world.New(cat),
		quests:   quest.New(quest.NewAliasTable(cat.Aliases)),
		checker:  checker,
	}
}

// HandleUtterance grades one player utterance through the grammar
// collaborator and folds the evidence into progression. A collaborator
// failure leaves all state untouched; the error is returned for
// logging only and nothing about the session is poisoned by it.
func (e *Engine) HandleUtterance(ctx context.Context, text string) (Result, error) {
	if e.checker == nil {
		return Result{}, nil
	}
	checked, err := e.checker.Check(ctx, text)
	if err != nil {
		return Result{}, err
	}
	return e.ApplyGrammarResult(checked), nil
}

// ApplyGrammarResult runs one grammar-check cycle: counters update,
// the interaction clock ticks once, triggers evaluate in catalog
// order, and at most one level advancement is applied.
func (e *Engine) ApplyGrammarResult(checked types.GrammarCheckResult) Result {
	var res Result
	if checked.Empty() {
		return res
	}

	e.Progress.Apply(checked)
	res.Awards = trigger.Evaluate(e.Catalog.Triggers, e.Catalog.Skills, e.Progress, e.World.Facts())

	decision := level.CanAdvance(e.Catalog.Progression, e.World.Level, e.Progress.Skills)
	if decision.CanAdvance {
		old := e.World.Level
		e.World.Level = decision.NextLevel
		res.LevelUp = &types.LevelUpEvent{OldLevel: old, NewLevel: decision.NextLevel}
	}

	return res
}

// LevelDetails is the read-only progress projection toward the next
// level, for UI display.
func (e *Engine) LevelDetails() level.Details {
	return level.ProgressDetails(e.Catalog.Progression, e.World.Level, e.Progress.Skills)
}

// PollQuests evaluates active quests against the current facts. Hosts
// call it after every state mutation that could satisfy a condition.
func (e *Engine) PollQuests() Result {
	polled := e.quests.Poll(e.World.ActiveQuestList(), e.World.Facts(), e.World)
	return Result{
		Tasks:           polled.Tasks,
		QuestsCompleted: polled.Quests,
		Announcements:   polled.Announcements,
	}
}

// MoveTo walks the player and polls quests.
func (e *Engine) MoveTo(locationID string) (Result, error) {
	if err := e.World.Move(locationID); err != nil {
		return Result{}, err
	}
	return e.PollQuests(), nil
}

// TakeItem picks up an item and polls quests.
func (e *Engine) TakeItem(itemID string) (Result, error) {
	if err := e.World.Take(itemID); err != nil {
		return Result{}, err
	}
	return e.PollQuests(), nil
}

// GiveItem hands an item to an NPC and polls quests.
func (e *Engine) GiveItem(itemID, npcID string) (Result, error) {
	if err := e.World.Give(itemID, npcID); err != nil {
		return Result{}, err
	}
	return e.PollQuests(), nil
}

// TalkTo records an NPC interaction and polls quests.
func (e *Engine) TalkTo(npcID string) (Result, error) {
	if err := e.World.Talk(npcID); err != nil {
		return Result{}, err
	}
	return e.PollQuests(), nil
}

// LearnInfo records a learned-info id and polls quests.
func (e *Engine) LearnInfo(infoID string) Result {
	e.World.Learn(infoID)
	return e.PollQuests()
}

// AcceptQuest activates a quest and polls immediately, so a task the
// player already satisfies completes without an extra action.
func (e *Engine) AcceptQuest(questID string) (Result, error) {
	if err := e.World.AcceptQuest(questID); err != nil {
		return Result{}, err
	}
	return e.PollQuests(), nil
}
