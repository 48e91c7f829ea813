package tui

import (
	"strings"
	"testing"

	"github.com/tessera-games/lingoquest/engine"
	"github.com/tessera-games/lingoquest/types"
)

func testEngine() *engine.Engine {
	cat := &types.Catalog{
		Skills:     map[string]types.Skill{"greetings": {ID: "greetings"}},
		SkillOrder: []string{"greetings"},
		Progression: types.LevelProgressionSpec{
			LevelOrder: []types.LevelID{"A0", "A0+"},
		},
		Items: map[string]types.Item{},
		Locations: map[string]types.Location{
			"plaza_mayor": {ID: "plaza_mayor"},
			"mercado":     {ID: "mercado", Name: types.BilingualText{Target: "El Mercado"}},
		},
		StartingLoc: "plaza_mayor",
		NPCs:        map[string]types.NPC{},
		Aliases:     map[string]string{},
	}
	return engine.New(cat, nil)
}

func TestLocationDisplayName(t *testing.T) {
	m := New(testEngine(), nil)

	// No catalog name: the id is title-cased.
	if got := m.locationDisplayName(); got != "Plaza Mayor" {
		t.Errorf("locationDisplayName() = %q, want %q", got, "Plaza Mayor")
	}

	// Catalog name wins over the id.
	m.engine.World.CurrentLocation = "mercado"
	if got := m.locationDisplayName(); got != "El Mercado" {
		t.Errorf("locationDisplayName() = %q, want %q", got, "El Mercado")
	}
}

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		line string
		want lineKind
	}{
		{"+5 greetings (say hola three times)", kindAward},
		{"*** Level up! A0 -> A0+ ***", kindLevelUp},
		{"Task complete: Ve al mercado (1/3 in Al mercado)", kindQuest},
		{"Quest complete: Al mercado (+25 XP)", kindQuest},
		{"Unlocked: biblioteca", kindQuest},
		{"[Session saved to quicksave.]", kindSystem},
		{"You can't do that: no path from plaza to catedral.", kindError},
		{"Unknown command: /foo. Type /help for available commands.", kindError},
		{"You are at El Mercado.", kindNarrative},
		{"", kindNarrative},
	}
	for _, tt := range tests {
		got := classifyLine(tt.line)
		if got != tt.want {
			t.Errorf("classifyLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input      string
		wantVerb   string
		wantObject string
		wantTarget string
	}{
		{"go mercado", "go", "mercado", ""},
		{"take manzana", "take", "manzana", ""},
		{"give manzana to maria", "give", "manzana", "maria"},
		{"give la manzana roja to maria", "give", "la manzana roja", "maria"},
		{"GIVE manzana TO maria", "give", "manzana", "maria"},
		{"quests", "quests", "", ""},
		{"", "", "", ""},
	}
	for _, tt := range tests {
		verb, object, target := parseCommand(tt.input)
		if verb != tt.wantVerb || object != tt.wantObject || target != tt.wantTarget {
			t.Errorf("parseCommand(%q) = (%q, %q, %q), want (%q, %q, %q)",
				tt.input, verb, object, target, tt.wantVerb, tt.wantObject, tt.wantTarget)
		}
	}
}

func TestWordWrap(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"short", 80, "short"},
		{"hola mundo", 5, "hola\nmundo"},
		{"La plaza se extiende ante ti con su fuente de piedra.", 25,
			"La plaza se extiende ante\nti con su fuente de\npiedra."},
		{"", 80, ""},
		{"a b c d e", 3, "a b\nc d\ne"},
		// Accented words measure in display cells, not bytes.
		{"había más café aquí ayer", 10, "había más\ncafé aquí\nayer"},
	}
	for _, tt := range tests {
		got := wordWrap(tt.text, tt.width)
		if got != tt.want {
			t.Errorf("wordWrap(%q, %d) =\n  %q\nwant:\n  %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestRenderResult(t *testing.T) {
	res := engine.Result{
		Awards: []types.AwardEvent{
			{SkillID: "greetings", PointsAwarded: 5, TriggerDescription: "say hola"},
		},
		LevelUp: &types.LevelUpEvent{OldLevel: "A0", NewLevel: "A0+"},
		Tasks: []types.TaskCompletionEvent{
			{QuestName: "Al mercado", TaskDescription: "Ve al mercado", CompletedTasks: 1, TotalTasks: 3},
		},
		QuestsCompleted: []types.QuestCompletionEvent{
			{QuestName: "Al mercado", XPReward: 25},
		},
		Announcements: []string{"Quest unlocked: quest_cafe"},
	}

	lines := renderResult(res)
	joined := strings.Join(lines, "\n")
	for _, want := range []string{
		"+5 greetings (say hola)",
		"*** Level up! A0 -> A0+ ***",
		"Task complete: Ve al mercado (1/3 in Al mercado)",
		"Quest complete: Al mercado (+25 XP)",
		"Quest unlocked: quest_cafe",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("output missing %q:\n%s", want, joined)
		}
	}
}

func TestHandleCommand_UnknownVerbIsUtterance(t *testing.T) {
	m := New(testEngine(), nil)
	if _, ok := m.handleCommand("quiero una manzana por favor"); ok {
		t.Error("free text treated as a command")
	}
	if _, ok := m.handleCommand("go mercado"); !ok {
		t.Error("go not recognized as a command")
	}
}

func TestHistory_Navigation(t *testing.T) {
	h := NewHistory(3)
	h.Push("go mercado")
	h.Push("take manzana")
	h.Push("give manzana to maria")

	prev, ok := h.Prev()
	if !ok || prev != "give manzana to maria" {
		t.Errorf("Prev = %q (ok=%v)", prev, ok)
	}
	prev, _ = h.Prev()
	if prev != "take manzana" {
		t.Errorf("Prev = %q", prev)
	}
	prev, _ = h.Prev()
	if prev != "go mercado" {
		t.Errorf("Prev = %q", prev)
	}
	// At the oldest entry, Prev stays put.
	prev, _ = h.Prev()
	if prev != "go mercado" {
		t.Errorf("Prev past oldest = %q", prev)
	}

	next, ok := h.Next()
	if !ok || next != "take manzana" {
		t.Errorf("Next = %q (ok=%v)", next, ok)
	}
	h.ResetCursor()
	if _, ok := h.Next(); ok {
		t.Error("Next after reset should report no entry")
	}
}

func TestHistory_BoundAndDedup(t *testing.T) {
	h := NewHistory(2)
	h.Push("a")
	h.Push("a") // consecutive duplicate skipped
	h.Push("b")
	h.Push("c") // evicts "a"

	prev, _ := h.Prev()
	if prev != "c" {
		t.Errorf("Prev = %q", prev)
	}
	prev, _ = h.Prev()
	if prev != "b" {
		t.Errorf("Prev = %q", prev)
	}
	prev, _ = h.Prev()
	if prev != "b" {
		t.Errorf("history grew past its bound: %q", prev)
	}
}
