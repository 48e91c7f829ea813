package quest

import (
	"testing"

	"github.com/tessera-games/lingoquest/types"
)

// mutatorLog records effect calls without a real world.
type mutatorLog struct {
	flags     []string
	items     []string
	xp        int
	completed []string
}

func (m *mutatorLog) AddStoryFlag(flag string)    { m.flags = append(m.flags, flag) }
func (m *mutatorLog) AddItem(itemID string)       { m.items = append(m.items, itemID) }
func (m *mutatorLog) GrantXP(amount int)          { m.xp += amount }
func (m *mutatorLog) CompleteQuest(questID string) { m.completed = append(m.completed, questID) }

func marketQuest() *types.Quest {
	return &types.Quest{
		ID:   "quest_market",
		Name: types.BilingualText{Native: "To the market", Target: "Al mercado"},
		Tasks: []types.QuestTask{
			{
				ID: "t1", Order: 1,
				Description: types.BilingualText{Target: "Ve al mercado"},
				Type:        types.CompleteAtLocation,
				Criteria:    types.CompletionCriteria{TargetID: "mercado"},
			},
			{
				ID: "t2", Order: 2,
				Description: types.BilingualText{Target: "Compra una manzana"},
				Type:        types.CompleteHasItem,
				Criteria:    types.CompletionCriteria{TargetID: "item_001"},
				OnComplete:  types.TaskEffects{SetFlags: []string{"bought_apple"}},
			},
			{
				ID: "t3", Order: 3,
				Description: types.BilingualText{Target: "Dásela a María"},
				Type:        types.CompleteGaveItem,
				Criteria:    types.CompletionCriteria{TargetID: "item_001"},
			},
		},
		Rewards: types.QuestRewards{
			Experience: 50,
			StoryFlags: []string{"helped_maria"},
			UnlockQuests: []string{"quest_cafe"},
		},
	}
}

func TestPoll_SequentialTaskOrder(t *testing.T) {
	e := New(testAliases())
	q := marketQuest()

	// Facts satisfy tasks 1 and 2 simultaneously, but only the first
	// incomplete task completes per poll.
	facts := types.GameFacts{
		CurrentLocation: "mercado",
		Inventory:       []string{"item_001"},
		GivenItems:      map[string]bool{},
	}

	var m mutatorLog
	res := e.Poll([]*types.Quest{q}, facts, &m)
	if len(res.Tasks) != 1 || res.Tasks[0].TaskDescription != "Ve al mercado" {
		t.Fatalf("first poll tasks = %+v", res.Tasks)
	}
	if !q.Tasks[0].Completed || q.Tasks[1].Completed {
		t.Fatal("wrong task completion flags after first poll")
	}

	res = e.Poll([]*types.Quest{q}, facts, &m)
	if len(res.Tasks) != 1 || res.Tasks[0].TaskDescription != "Compra una manzana" {
		t.Fatalf("second poll tasks = %+v", res.Tasks)
	}
	if len(m.flags) != 1 || m.flags[0] != "bought_apple" {
		t.Errorf("task effect flags = %v", m.flags)
	}

	// Task 3 still unsatisfied: nothing more completes.
	res = e.Poll([]*types.Quest{q}, facts, &m)
	if len(res.Tasks) != 0 || len(res.Quests) != 0 {
		t.Fatalf("third poll produced events: %+v", res)
	}
}

func TestPoll_LaterTaskNeverFiresFirst(t *testing.T) {
	e := New(testAliases())
	q := marketQuest()

	// Only task 2's predicate holds; task 1 is incomplete, so nothing fires.
	facts := types.GameFacts{
		CurrentLocation: "plaza",
		Inventory:       []string{"item_001"},
		GivenItems:      map[string]bool{},
	}

	var m mutatorLog
	res := e.Poll([]*types.Quest{q}, facts, &m)
	if len(res.Tasks) != 0 {
		t.Fatalf("out-of-order completion: %+v", res.Tasks)
	}
	if q.Tasks[1].Completed {
		t.Fatal("task 2 completed before task 1")
	}
}

func TestPoll_FinalTaskEmitsQuestCompletionOnly(t *testing.T) {
	e := New(testAliases())
	q := marketQuest()
	q.Tasks[0].Completed = true
	q.Tasks[1].Completed = true

	facts := types.GameFacts{
		CurrentLocation: "plaza",
		GivenItems:      map[string]bool{"item_001": true},
	}

	var m mutatorLog
	res := e.Poll([]*types.Quest{q}, facts, &m)

	if len(res.Tasks) != 0 {
		t.Errorf("final task emitted a task event: %+v", res.Tasks)
	}
	if len(res.Quests) != 1 {
		t.Fatalf("got %d quest events, want 1", len(res.Quests))
	}
	qe := res.Quests[0]
	if qe.QuestID != "quest_market" || qe.XPReward != 50 {
		t.Errorf("quest event = %+v", qe)
	}
	if m.xp != 50 {
		t.Errorf("xp granted = %d, want 50", m.xp)
	}
	if len(m.completed) != 1 || m.completed[0] != "quest_market" {
		t.Errorf("completed = %v", m.completed)
	}
	if !containsString(m.flags, "helped_maria") {
		t.Errorf("reward flag missing: %v", m.flags)
	}
	if !containsString(res.Announcements, "Quest unlocked: quest_cafe") {
		t.Errorf("announcements = %v", res.Announcements)
	}
}

func TestPoll_AliasEquivalence(t *testing.T) {
	e := New(testAliases())

	// The task wants canonical item_001; the inventory holds the
	// colloquial "manzana". The two must be interchangeable.
	q := &types.Quest{
		ID:   "quest_apple",
		Name: types.BilingualText{Target: "La manzana"},
		Tasks: []types.QuestTask{
			{ID: "t1", Order: 1, Type: types.CompleteHasItem,
				Criteria: types.CompletionCriteria{TargetID: "item_001"}},
			{ID: "t2", Order: 2, Type: types.CompleteAtLocation,
				Criteria: types.CompletionCriteria{TargetID: "plaza"}},
		},
	}
	facts := types.GameFacts{Inventory: []string{"manzana"}, GivenItems: map[string]bool{}}

	var m mutatorLog
	res := e.Poll([]*types.Quest{q}, facts, &m)
	if len(res.Tasks) != 1 {
		t.Fatalf("aliased item did not satisfy has_item: %+v", res)
	}

	// And the mirror case: canonical inventory, aliased criteria.
	q2 := &types.Quest{
		ID:   "quest_apple2",
		Name: types.BilingualText{Target: "La manzana"},
		Tasks: []types.QuestTask{
			{ID: "t1", Order: 1, Type: types.CompleteHasItem,
				Criteria: types.CompletionCriteria{TargetID: "manzana"}},
			{ID: "t2", Order: 2, Type: types.CompleteAtLocation,
				Criteria: types.CompletionCriteria{TargetID: "plaza"}},
		},
	}
	facts2 := types.GameFacts{Inventory: []string{"item_001"}, GivenItems: map[string]bool{}}
	res = e.Poll([]*types.Quest{q2}, facts2, &m)
	if len(res.Tasks) != 1 {
		t.Fatalf("canonical item did not satisfy aliased criteria: %+v", res)
	}
}

func TestTaskSatisfied(t *testing.T) {
	e := New(testAliases())

	facts := types.GameFacts{
		CurrentLocation: "mercado",
		Inventory:       []string{"item_001"},
		GivenItems:      map[string]bool{"item_002": true},
		TalkedToNPCs:    map[string]bool{"maria": true},
		StoryFlags:      map[string]bool{"met_maria": true},
		LearnedInfo:     map[string]bool{"directions": true},
	}

	tests := []struct {
		name string
		task types.QuestTask
		want bool
	}{
		{
			name: "at_location match",
			task: types.QuestTask{Type: types.CompleteAtLocation, Criteria: types.CompletionCriteria{TargetID: "mercado"}},
			want: true,
		},
		{
			name: "at_location elsewhere",
			task: types.QuestTask{Type: types.CompleteAtLocation, Criteria: types.CompletionCriteria{TargetID: "plaza"}},
			want: false,
		},
		{
			name: "has_item",
			task: types.QuestTask{Type: types.CompleteHasItem, Criteria: types.CompletionCriteria{TargetID: "item_001"}},
			want: true,
		},
		{
			name: "talked_to",
			task: types.QuestTask{Type: types.CompleteTalkedTo, Criteria: types.CompletionCriteria{TargetID: "maria"}},
			want: true,
		},
		{
			name: "gave_item",
			task: types.QuestTask{Type: types.CompleteGaveItem, Criteria: types.CompletionCriteria{TargetID: "item_002"}},
			want: true,
		},
		{
			name: "received_item: currently held",
			task: types.QuestTask{Type: types.CompleteReceivedItem, Criteria: types.CompletionCriteria{TargetID: "item_001"}},
			want: true,
		},
		{
			name: "received_item: previously given away",
			task: types.QuestTask{Type: types.CompleteReceivedItem, Criteria: types.CompletionCriteria{TargetID: "item_002"}},
			want: true,
		},
		{
			name: "received_item: never seen",
			task: types.QuestTask{Type: types.CompleteReceivedItem, Criteria: types.CompletionCriteria{TargetID: "item_003"}},
			want: false,
		},
		{
			name: "flag_set",
			task: types.QuestTask{Type: types.CompleteFlagSet, Criteria: types.CompletionCriteria{FlagName: "met_maria"}},
			want: true,
		},
		{
			name: "learned_info by target",
			task: types.QuestTask{Type: types.CompleteLearnedInfo, Criteria: types.CompletionCriteria{TargetID: "directions"}},
			want: true,
		},
		{
			name: "learned_info by flag fallback",
			task: types.QuestTask{Type: types.CompleteLearnedInfo, Criteria: types.CompletionCriteria{TargetID: "history", FlagName: "met_maria"}},
			want: true,
		},
		{
			name: "unknown type never satisfies",
			task: types.QuestTask{Type: "mystery", Criteria: types.CompletionCriteria{TargetID: "x"}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.taskSatisfied(tt.task, facts); got != tt.want {
				t.Errorf("taskSatisfied() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortTasks(t *testing.T) {
	q := &types.Quest{Tasks: []types.QuestTask{
		{ID: "c", Order: 3},
		{ID: "a", Order: 1},
		{ID: "b", Order: 2},
	}}
	SortTasks(q)
	for i, want := range []string{"a", "b", "c"} {
		if q.Tasks[i].ID != want {
			t.Fatalf("task %d = %s, want %s", i, q.Tasks[i].ID, want)
		}
	}
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
