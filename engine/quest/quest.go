// Package quest implements the quest-task completion poller: sequential
// task evaluation against world facts, completion effects, and one-shot
// quest completion with rewards.
package quest

import (
	"sort"

	"github.com/tessera-games/lingoquest/types"
)

// Mutator is the surface the poller needs from the world owner to apply
// completion effects. The poller never touches world state directly.
type Mutator interface {
	AddStoryFlag(flag string)
	AddItem(itemID string)
	GrantXP(amount int)
	CompleteQuest(questID string)
}

// Result collects everything one poll produced. Announcements are
// informational unlock notices; they do not themselves unlock travel.
type Result struct {
	Tasks         []types.TaskCompletionEvent
	Quests        []types.QuestCompletionEvent
	Announcements []string
}

// Engine evaluates quest tasks. It holds only the alias table; the
// quest records and their completion flags belong to the caller.
type Engine struct {
	aliases *AliasTable
}

// New creates a quest engine with the given alias table (may be nil).
func New(aliases *AliasTable) *Engine {
	return &Engine{aliases: aliases}
}

// Poll evaluates every active quest once, in the order given. Per
// quest, only the first task (ascending by Order) not yet complete is
// evaluated; later tasks never fire out of order. A quest whose final
// task completes is queued and reported as a quest completion only;
// its last task never gets a separate task event.
//
// Polling is single-pass: an item granted by a reward in this call can
// satisfy another quest's task only on a later poll, after the next
// external action.
func (e *Engine) Poll(active []*types.Quest, facts types.GameFacts, m Mutator) Result {
	var res Result
	var finished []*types.Quest

	for _, q := range active {
		task := firstIncomplete(q)
		if task == nil {
			continue // already fully complete; completion fired earlier
		}

		if !e.taskSatisfied(*task, facts) {
			continue
		}

		task.Completed = true
		e.applyTaskEffects(task.OnComplete, m, &res)

		done, total := taskCounts(q)
		if done == total {
			finished = append(finished, q)
			continue
		}

		res.Tasks = append(res.Tasks, types.TaskCompletionEvent{
			QuestID:         q.ID,
			QuestName:       q.Name.Target,
			TaskDescription: task.Description.Target,
			CompletedTasks:  done,
			TotalTasks:      total,
		})
	}

	for _, q := range finished {
		e.applyRewards(q, m, &res)
		m.CompleteQuest(q.ID)
		res.Quests = append(res.Quests, types.QuestCompletionEvent{
			QuestID:   q.ID,
			QuestName: q.Name.Target,
			XPReward:  q.Rewards.Experience,
		})
	}

	return res
}

// taskSatisfied evaluates one task's predicate against the facts.
func (e *Engine) taskSatisfied(task types.QuestTask, facts types.GameFacts) bool {
	switch task.Type {
	case types.CompleteAtLocation:
		return facts.CurrentLocation == task.Criteria.TargetID
	case types.CompleteHasItem:
		return e.aliases.ContainsSlice(facts.Inventory, task.Criteria.TargetID)
	case types.CompleteTalkedTo:
		return facts.TalkedToNPCs[task.Criteria.TargetID]
	case types.CompleteGaveItem:
		return e.aliases.ContainsSet(facts.GivenItems, task.Criteria.TargetID)
	case types.CompleteReceivedItem:
		// Received means currently held or previously transacted.
		return e.aliases.ContainsSlice(facts.Inventory, task.Criteria.TargetID) ||
			e.aliases.ContainsSet(facts.GivenItems, task.Criteria.TargetID)
	case types.CompleteFlagSet:
		return facts.StoryFlags[task.Criteria.FlagName]
	case types.CompleteLearnedInfo:
		return facts.LearnedInfo[task.Criteria.TargetID] ||
			(task.Criteria.FlagName != "" && facts.StoryFlags[task.Criteria.FlagName])
	default:
		return false
	}
}

func (e *Engine) applyTaskEffects(effects types.TaskEffects, m Mutator, res *Result) {
	for _, flag := range effects.SetFlags {
		m.AddStoryFlag(flag)
	}
	for _, item := range effects.GiveItems {
		m.AddItem(item)
	}
	for _, loc := range effects.UnlockLocations {
		res.Announcements = append(res.Announcements, "Location unlocked: "+loc)
	}
}

func (e *Engine) applyRewards(q *types.Quest, m Mutator, res *Result) {
	if q.Rewards.Experience > 0 {
		m.GrantXP(q.Rewards.Experience)
	}
	for _, item := range q.Rewards.Items {
		m.AddItem(item)
	}
	for _, flag := range q.Rewards.StoryFlags {
		m.AddStoryFlag(flag)
	}
	for _, loc := range q.Rewards.UnlockLocations {
		res.Announcements = append(res.Announcements, "Location unlocked: "+loc)
	}
	for _, id := range q.Rewards.UnlockQuests {
		res.Announcements = append(res.Announcements, "Quest unlocked: "+id)
	}
}

// firstIncomplete returns the incomplete task with the lowest Order, or
// nil when every task is done.
func firstIncomplete(q *types.Quest) *types.QuestTask {
	idx := -1
	for i := range q.Tasks {
		if q.Tasks[i].Completed {
			continue
		}
		if idx < 0 || q.Tasks[i].Order < q.Tasks[idx].Order {
			idx = i
		}
	}
	if idx < 0 {
		return nil
	}
	return &q.Tasks[idx]
}

func taskCounts(q *types.Quest) (done, total int) {
	for i := range q.Tasks {
		if q.Tasks[i].Completed {
			done++
		}
	}
	return done, len(q.Tasks)
}

// SortTasks orders a quest's tasks ascending by Order in place. The
// loader calls this once so display order matches evaluation order.
func SortTasks(q *types.Quest) {
	sort.SliceStable(q.Tasks, func(i, j int) bool {
		return q.Tasks[i].Order < q.Tasks[j].Order
	})
}
