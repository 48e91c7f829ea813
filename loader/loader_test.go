package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tessera-games/lingoquest/types"
)

const testSkills = `{
  "skills": [
    {"id": "greetings", "name": {"native_language": "Greetings", "target_language": "Saludos"},
     "category": "vocabulary", "difficulty": "A0", "max_level": 100},
    {"id": "food_vocabulary", "name": {"target_language": "Comida"}, "category": "vocabulary"}
  ]
}`

const testTriggers = `{
  "triggers": [
    {
      "skill_id": "greetings",
      "points_awarded": 5,
      "repeatable": false,
      "description": "say hola three times",
      "trigger": {"trigger_type": "vocab_used_correctly", "target_id": "hola", "operator": ">=", "threshold": 3}
    },
    {
      "skill_id": "food_vocabulary",
      "points_awarded": 3,
      "repeatable": true,
      "cooldown_interactions": 5,
      "description": "order food politely",
      "trigger": {
        "logic": "AND",
        "conditions": [
          {"trigger_type": "vocab_used_correctly", "target_id": "manzana", "operator": ">=", "threshold": 1},
          {"trigger_type": "grammar_used_correctly", "target_id": "polite_request", "operator": ">=", "threshold": 1}
        ]
      }
    }
  ]
}`

const testQuests = `{
  "quests": [
    {
      "id": "quest_001",
      "name": {"target_language": "Al mercado"},
      "giver_npc_id": "maria",
      "tasks": [
        {"id": "t2", "order": 2, "completion_type": "has_item",
         "completion_criteria": {"item_id": "item_001"},
         "description": {"target_language": "Compra una manzana"}},
        {"id": "t1", "order": 1, "completion_type": "at_location",
         "completion_criteria": {"location_id": "mercado"},
         "description": {"target_language": "Ve al mercado"}}
      ],
      "rewards": {"experience": 25, "unlocks": {"quests": ["quest_002"]}}
    }
  ]
}`

const testProgression = `{
  "_level_order": ["A0", "A0+"],
  "requirements": [
    {"from_level": "A0", "to_level": "A0+", "minimum_total_skill_points": 30,
     "required_skill_thresholds": [{"skill_id": "greetings", "minimum_level": 10}],
     "flexible_skill_pool": ["greetings", "food_vocabulary"],
     "flexible_skill_count": 1, "flexible_threshold": 5}
  ]
}`

const testItems = `{
  "items": [
    {"id": "item_001", "name": {"target_language": "La manzana"},
     "location_id": "mercado",
     "vocabulary_word": {"native_language": "apple", "target_language": "manzana"}}
  ]
}`

const testMap = `{
  "starting_location": "plaza",
  "locations": [
    {"id": "plaza", "name": {"target_language": "La plaza"}, "connections": ["mercado"]},
    {"id": "mercado", "name": {"target_language": "El mercado"},
     "minimum_language_level": "A0", "connections": ["plaza"]}
  ]
}`

const testNPCs = `{
  "npcs": [
    {"id": "maria", "name": {"target_language": "María"}, "location_id": "mercado"}
  ]
}`

func writeWorld(t *testing.T, overrides map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		skillsFile:      testSkills,
		triggersFile:    testTriggers,
		questsFile:      testQuests,
		progressionFile: testProgression,
		itemsFile:       testItems,
		mapFile:         testMap,
		npcsFile:        testNPCs,
	}
	for name, content := range overrides {
		if content == "" {
			delete(files, name)
			continue
		}
		files[name] = content
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoad(t *testing.T) {
	cat, err := Load(writeWorld(t, nil), nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(cat.Skills) != 2 {
		t.Errorf("skills = %d, want 2", len(cat.Skills))
	}
	if got := cat.SkillOrder; len(got) != 2 || got[0] != "greetings" {
		t.Errorf("skill order = %v", got)
	}

	if len(cat.Triggers) != 2 {
		t.Fatalf("triggers = %d, want 2", len(cat.Triggers))
	}
	leaf, ok := cat.Triggers[0].Condition.(types.Leaf)
	if !ok {
		t.Fatalf("first condition is %T, want Leaf", cat.Triggers[0].Condition)
	}
	if leaf.Trigger != types.TriggerVocabUsedCorrectly || leaf.TargetID != "hola" ||
		leaf.Op != types.OpGreaterEqual || leaf.Threshold != 3 {
		t.Errorf("leaf = %+v", leaf)
	}
	and, ok := cat.Triggers[1].Condition.(types.And)
	if !ok {
		t.Fatalf("second condition is %T, want And", cat.Triggers[1].Condition)
	}
	if len(and.Children) != 2 {
		t.Errorf("AND children = %d, want 2", len(and.Children))
	}
	if cat.Triggers[1].CooldownInteractions != 5 {
		t.Errorf("cooldown = %d", cat.Triggers[1].CooldownInteractions)
	}

	if len(cat.Progression.LevelOrder) != 2 || cat.Progression.LevelOrder[0] != "A0" {
		t.Errorf("level order = %v", cat.Progression.LevelOrder)
	}
	req := cat.Progression.Requirements[0]
	if req.MinimumTotalSkillPoints != 30 || len(req.RequiredSkillThresholds) != 1 {
		t.Errorf("requirement = %+v", req)
	}

	// Tasks come out sorted by order, criteria resolved per type.
	q := cat.Quests[0]
	if q.Tasks[0].ID != "t1" || q.Tasks[1].ID != "t2" {
		t.Errorf("task order = %s, %s", q.Tasks[0].ID, q.Tasks[1].ID)
	}
	if q.Tasks[0].Criteria.TargetID != "mercado" {
		t.Errorf("at_location target = %q", q.Tasks[0].Criteria.TargetID)
	}
	if q.Tasks[1].Criteria.TargetID != "item_001" {
		t.Errorf("has_item target = %q", q.Tasks[1].Criteria.TargetID)
	}
	if len(q.Rewards.UnlockQuests) != 1 || q.Rewards.UnlockQuests[0] != "quest_002" {
		t.Errorf("unlock quests = %v", q.Rewards.UnlockQuests)
	}

	if cat.StartingLoc != "plaza" {
		t.Errorf("starting location = %q", cat.StartingLoc)
	}
	if cat.Aliases["manzana"] != "item_001" {
		t.Errorf("aliases = %v", cat.Aliases)
	}
}

func TestLoad_MissingRequiredFile(t *testing.T) {
	dir := writeWorld(t, map[string]string{triggersFile: ""})
	if _, err := Load(dir, nil); err == nil {
		t.Fatal("load succeeded without triggers.json")
	}
}

func TestLoad_OptionalFilesMayBeMissing(t *testing.T) {
	dir := writeWorld(t, map[string]string{
		itemsFile: "",
		npcsFile:  "",
	})
	cat, err := Load(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(cat.Items) != 0 || len(cat.NPCs) != 0 {
		t.Error("expected empty item and npc catalogs")
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		triggers string
		quests   string
		wantErr  string
	}{
		{
			name: "unknown trigger type aborts the load",
			triggers: `{"triggers": [{"skill_id": "greetings", "points_awarded": 5,
				"description": "bad type",
				"trigger": {"trigger_type": "vocab_used_incorrectly", "target_id": "x", "operator": ">=", "threshold": 1}}]}`,
			wantErr: "unknown trigger type",
		},
		{
			name: "unknown operator aborts the load",
			triggers: `{"triggers": [{"skill_id": "greetings", "points_awarded": 5,
				"description": "bad op",
				"trigger": {"trigger_type": "vocab_used_correctly", "target_id": "x", "operator": "~=", "threshold": 1}}]}`,
			wantErr: "unknown operator",
		},
		{
			name: "zero points aborts the load",
			triggers: `{"triggers": [{"skill_id": "greetings", "points_awarded": 0,
				"description": "free trigger",
				"trigger": {"trigger_type": "vocab_used_correctly", "target_id": "x", "operator": ">=", "threshold": 1}}]}`,
			wantErr: "at least 1",
		},
		{
			name: "duplicate descriptions abort the load",
			triggers: `{"triggers": [
				{"skill_id": "greetings", "points_awarded": 1, "description": "dup",
				 "trigger": {"trigger_type": "vocab_used_correctly", "target_id": "x", "operator": ">=", "threshold": 1}},
				{"skill_id": "greetings", "points_awarded": 1, "description": "dup",
				 "trigger": {"trigger_type": "vocab_used_correctly", "target_id": "y", "operator": ">=", "threshold": 1}}]}`,
			wantErr: "duplicate trigger description",
		},
		{
			name: "empty compound fails at compile",
			triggers: `{"triggers": [{"skill_id": "greetings", "points_awarded": 1,
				"description": "empty and",
				"trigger": {"logic": "AND", "conditions": []}}]}`,
			wantErr: "at least one child",
		},
		{
			name: "unknown compound logic fails at compile",
			triggers: `{"triggers": [{"skill_id": "greetings", "points_awarded": 1,
				"description": "bad logic",
				"trigger": {"logic": "XOR", "conditions": [
					{"trigger_type": "vocab_used_correctly", "target_id": "x", "operator": ">=", "threshold": 1}]}}]}`,
			wantErr: "unknown compound logic",
		},
		{
			name:    "quest with no tasks aborts the load",
			quests:  `{"quests": [{"id": "quest_empty", "name": {"target_language": "Nada"}, "tasks": []}]}`,
			wantErr: "has no tasks",
		},
		{
			name: "unknown completion type aborts the load",
			quests: `{"quests": [{"id": "quest_bad", "name": {"target_language": "Malo"},
				"tasks": [{"id": "t1", "order": 1, "completion_type": "telepathy",
				 "completion_criteria": {"target_id": "x"}}]}]}`,
			wantErr: "unknown completion type",
		},
		{
			name: "duplicate quest ids abort the load",
			quests: `{"quests": [
				{"id": "quest_dup", "tasks": [{"id": "t1", "order": 1, "completion_type": "at_location", "completion_criteria": {"location_id": "plaza"}}]},
				{"id": "quest_dup", "tasks": [{"id": "t1", "order": 1, "completion_type": "at_location", "completion_criteria": {"location_id": "plaza"}}]}]}`,
			wantErr: "duplicate quest id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			overrides := map[string]string{}
			if tt.triggers != "" {
				overrides[triggersFile] = tt.triggers
			}
			if tt.quests != "" {
				overrides[questsFile] = tt.quests
			}
			_, err := Load(writeWorld(t, overrides), nil)
			if err == nil {
				t.Fatal("load succeeded")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_DefaultLevelOrder(t *testing.T) {
	dir := writeWorld(t, map[string]string{
		progressionFile: `{"requirements": []}`,
	})
	cat, err := Load(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []types.LevelID{"A0", "A0+", "A1", "A1+", "A2"}
	if len(cat.Progression.LevelOrder) != len(want) {
		t.Fatalf("level order = %v", cat.Progression.LevelOrder)
	}
	for i, lvl := range want {
		if cat.Progression.LevelOrder[i] != lvl {
			t.Errorf("level[%d] = %s, want %s", i, cat.Progression.LevelOrder[i], lvl)
		}
	}
}

func TestLoad_CustomLevelOrderDoesNotLeakIntoDefault(t *testing.T) {
	// Loading a world with its own ladder must not mutate the shared
	// default that later loads fall back to.
	custom := writeWorld(t, map[string]string{
		progressionFile: `{"_level_order": ["B1", "B2"], "requirements": []}`,
	})
	cat, err := Load(custom, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(cat.Progression.LevelOrder) != 2 || cat.Progression.LevelOrder[0] != "B1" || cat.Progression.LevelOrder[1] != "B2" {
		t.Fatalf("custom level order = %v", cat.Progression.LevelOrder)
	}

	plain := writeWorld(t, map[string]string{
		progressionFile: `{"requirements": []}`,
	})
	cat2, err := Load(plain, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []types.LevelID{"A0", "A0+", "A1", "A1+", "A2"}
	if len(cat2.Progression.LevelOrder) != len(want) {
		t.Fatalf("default level order = %v", cat2.Progression.LevelOrder)
	}
	for i, lvl := range want {
		if cat2.Progression.LevelOrder[i] != lvl {
			t.Errorf("level[%d] = %s, want %s", i, cat2.Progression.LevelOrder[i], lvl)
		}
	}
}

func TestLoad_ValidationWarningsDoNotAbort(t *testing.T) {
	// A trigger for an unknown skill warns but the catalog still loads.
	dir := writeWorld(t, map[string]string{
		triggersFile: `{"triggers": [{"skill_id": "astral_projection", "points_awarded": 1,
			"description": "mystery skill",
			"trigger": {"trigger_type": "vocab_used_correctly", "target_id": "x", "operator": ">=", "threshold": 1}}]}`,
	})
	if _, err := Load(dir, nil); err != nil {
		t.Fatalf("warnings aborted the load: %v", err)
	}
}
