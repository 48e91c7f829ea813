package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessera-games/lingoquest/engine"
	"github.com/tessera-games/lingoquest/engine/save"
	"github.com/tessera-games/lingoquest/engine/session"
	"github.com/tessera-games/lingoquest/store/sqlite"
)

// rawLine stores an unstyled output line with its classification, so we
// can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool
	isSystem bool
}

// Model is the Bubble Tea model for the LingoQuest TUI.
type Model struct {
	engine *engine.Engine
	sess   *session.Session
	saves  *sqlite.Store

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine

	width    int
	height   int
	ready    bool
	quitting bool
	checking bool // a grammar check is in flight
	lastCmd  string
}

// gameOutputMsg carries output from the engine into the Update loop.
type gameOutputMsg struct {
	input    string   // echoed player input (empty for intro)
	lines    []string // output lines
	isSystem bool     // true for meta-command output
}

// New creates a TUI model wired to the given engine. saves may be nil,
// which disables /save and /load.
func New(eng *engine.Engine, saves *sqlite.Store) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	return Model{
		engine:  eng,
		sess:    session.New(eng),
		saves:   saves,
		input:   ti,
		history: NewHistory(100),
	}
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine, saves *sqlite.Store) error {
	m := New(eng, saves)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init returns the initial command that produces the intro text.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		lines := []string{
			fmt.Sprintf("Welcome to %s. You are at %s, level %s.",
				"LingoQuest", m.locationDisplayName(), m.engine.World.Level),
			"Type /help for commands; everything else is spoken in the target language.",
		}
		return gameOutputMsg{lines: lines}
	}
}

// Update handles messages (key presses, window resize, game output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case gameOutputMsg:
		m.checking = false
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" || m.checking {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m = m.appendOutput(gameOutputMsg{
				input: input, lines: []string{"Nothing to repeat."}, isSystem: true,
			})
			return m, nil
		}
		input = m.lastCmd
	} else {
		m.lastCmd = input
	}

	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(gameOutputMsg{input: input, lines: output, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	if lines, ok := m.handleCommand(input); ok {
		m = m.appendOutput(gameOutputMsg{input: input, lines: lines})
		return m, nil
	}

	// An utterance: grammar checking is network I/O, so it runs as a
	// command rather than blocking the Update loop.
	m.checking = true
	m = m.appendOutput(gameOutputMsg{input: input})
	return m, m.speakCmd(input)
}

// speakCmd grades an utterance asynchronously. The work runs off the
// Update goroutine, so engine access goes through the session lock.
func (m Model) speakCmd(text string) tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		var res engine.Result
		err := sess.Do(func(eng *engine.Engine) error {
			var uerr error
			res, uerr = eng.HandleUtterance(context.Background(), text)
			return uerr
		})
		if err != nil {
			return gameOutputMsg{
				lines:    []string{fmt.Sprintf("Grammar check unavailable: %v", err)},
				isSystem: true,
			}
		}
		lines := renderResult(res)
		if len(lines) == 0 {
			lines = []string{"(nothing new demonstrated)"}
		}
		return gameOutputMsg{lines: lines}
	}
}

// handleCommand dispatches world commands. ok is false when the input
// is not a recognized command.
func (m *Model) handleCommand(input string) (lines []string, ok bool) {
	verb, object, target := parseCommand(input)

	var res engine.Result
	var err error

	switch verb {
	case "go", "walk":
		if object == "" {
			return []string{"Go where?"}, true
		}
		res, err = m.engine.MoveTo(object)
		if err == nil {
			lines = append(lines, "You arrive at "+m.locationDisplayName()+".")
		}
	case "take", "get":
		if object == "" {
			return []string{"Take what?"}, true
		}
		res, err = m.engine.TakeItem(object)
	case "give":
		if object == "" || target == "" {
			return []string{"Give what to whom? (give <item> to <npc>)"}, true
		}
		res, err = m.engine.GiveItem(object, target)
	case "talk", "speak":
		if object == "" {
			return []string{"Talk to whom?"}, true
		}
		res, err = m.engine.TalkTo(object)
	case "learn":
		if object == "" {
			return []string{"Learn what?"}, true
		}
		res = m.engine.LearnInfo(object)
	case "accept":
		if object == "" {
			return []string{"Accept which quest?"}, true
		}
		res, err = m.engine.AcceptQuest(object)
	case "quests", "q":
		return m.cmdQuests(), true
	case "skills":
		return m.cmdSkills(), true
	case "level":
		return m.cmdLevel(), true
	case "inventory", "i":
		return m.cmdInventory(), true
	case "where", "look", "l":
		return m.cmdWhere(), true
	default:
		return nil, false
	}

	if err != nil {
		return []string{"You can't do that: " + err.Error() + "."}, true
	}
	return append(lines, renderResult(res)...), true
}

// renderResult formats one engine step's events as output lines.
func renderResult(res engine.Result) []string {
	var lines []string
	for _, a := range res.Awards {
		lines = append(lines, fmt.Sprintf("+%d %s (%s)", a.PointsAwarded, a.SkillID, a.TriggerDescription))
	}
	if res.LevelUp != nil {
		lines = append(lines, fmt.Sprintf("*** Level up! %s -> %s ***", res.LevelUp.OldLevel, res.LevelUp.NewLevel))
	}
	for _, t := range res.Tasks {
		lines = append(lines, fmt.Sprintf("Task complete: %s (%d/%d in %s)",
			t.TaskDescription, t.CompletedTasks, t.TotalTasks, t.QuestName))
	}
	for _, q := range res.QuestsCompleted {
		lines = append(lines, fmt.Sprintf("Quest complete: %s (+%d XP)", q.QuestName, q.XPReward))
	}
	lines = append(lines, res.Announcements...)
	return lines
}

func (m *Model) cmdQuests() []string {
	w := m.engine.World
	var out []string
	if len(w.ActiveQuests) == 0 {
		out = append(out, "No active quests.")
	}
	for _, q := range w.ActiveQuestList() {
		done := 0
		for _, t := range q.Tasks {
			if t.Completed {
				done++
			}
		}
		out = append(out, fmt.Sprintf("%s — %s (%d/%d)", q.ID, q.Name.Target, done, len(q.Tasks)))
		for _, t := range q.Tasks {
			mark := "[ ]"
			if t.Completed {
				mark = "[x]"
			}
			out = append(out, fmt.Sprintf("  %s %s", mark, t.Description.Target))
		}
	}
	if len(w.CompletedQuests) > 0 {
		var ids []string
		for id := range w.CompletedQuests {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		out = append(out, "Completed: "+strings.Join(ids, ", "))
	}
	return out
}

func (m *Model) cmdSkills() []string {
	st := m.engine.Progress
	if len(st.Skills) == 0 {
		return []string{"No skill points yet. Try speaking some Spanish."}
	}
	var out []string
	seen := map[string]bool{}
	for _, id := range m.engine.Catalog.SkillOrder {
		if lvl, ok := st.Skills[id]; ok && lvl > 0 {
			out = append(out, fmt.Sprintf("%-32s %3d", id, lvl))
			seen[id] = true
		}
	}
	var rest []string
	for id := range st.Skills {
		if !seen[id] && st.Skills[id] > 0 {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	for _, id := range rest {
		out = append(out, fmt.Sprintf("%-32s %3d", id, st.Skills[id]))
	}
	return append(out, fmt.Sprintf("%-32s %3d", "total", st.TotalSkillPoints()))
}

func (m *Model) cmdLevel() []string {
	d := m.engine.LevelDetails()
	out := []string{fmt.Sprintf("Current level: %s", m.engine.World.Level)}
	if d.AtMaxLevel {
		return append(out, "Already at max level.")
	}
	out = append(out, fmt.Sprintf("Toward %s: %s", d.NextLevel, d.Description))
	out = append(out, fmt.Sprintf("  total points: %d/%d %s", d.TotalPoints, d.RequiredPoints, metMark(d.TotalMet)))
	for _, th := range d.Thresholds {
		out = append(out, fmt.Sprintf("  %s: %d/%d %s", th.SkillID, th.Current, th.Required, metMark(th.Met)))
	}
	if d.Flexible.Required > 0 {
		out = append(out, fmt.Sprintf("  flexible: %d/%d skills at %d+ %s",
			d.Flexible.Count, d.Flexible.Required, d.Flexible.Threshold, metMark(d.Flexible.Met)))
	}
	return out
}

func (m *Model) cmdInventory() []string {
	inv := m.engine.World.Inventory
	if len(inv) == 0 {
		return []string{"You are carrying nothing."}
	}
	var names []string
	for _, id := range inv {
		name := id
		if item, ok := m.engine.Catalog.Items[id]; ok && item.Name.Target != "" {
			name = item.Name.Target
		}
		names = append(names, name)
	}
	return []string{"You are carrying: " + strings.Join(names, ", ") + "."}
}

func (m *Model) cmdWhere() []string {
	w := m.engine.World
	out := []string{"You are at " + m.locationDisplayName() + "."}
	if loc, ok := w.Catalog.Locations[w.CurrentLocation]; ok && len(loc.Connections) > 0 {
		out = append(out, "You can go to: "+strings.Join(loc.Connections, ", ")+".")
	}
	var npcs []string
	for id, npc := range w.Catalog.NPCs {
		if npc.LocationID == w.CurrentLocation {
			npcs = append(npcs, id)
		}
	}
	if len(npcs) > 0 {
		sort.Strings(npcs)
		out = append(out, "People here: "+strings.Join(npcs, ", ")+".")
	}
	var items []string
	for id, item := range w.Catalog.Items {
		if item.LocationID == w.CurrentLocation {
			items = append(items, id)
		}
	}
	if len(items) > 0 {
		sort.Strings(items)
		out = append(out, "You see: "+strings.Join(items, ", ")+".")
	}
	return out
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Hasta luego."}, true

	case "/save":
		return m.cmdSave(arg), false

	case "/load":
		return m.cmdLoad(arg), false

	case "/slots":
		return m.cmdSlots(), false

	case "/help":
		return m.cmdHelp(), false

	case "/state":
		return m.cmdState(), false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdSave(name string) []string {
	if m.saves == nil {
		return []string{"Saving is disabled (no save database)."}
	}
	if name == "" {
		name = "quicksave"
	}

	data, err := save.Save(m.engine)
	if err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	if err := m.saves.Put(context.Background(), name, data); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	return []string{fmt.Sprintf("Session saved to %s.", name)}
}

func (m *Model) cmdLoad(name string) []string {
	if m.saves == nil {
		return []string{"Loading is disabled (no save database)."}
	}
	if name == "" {
		name = "quicksave"
	}

	data, err := m.saves.Get(context.Background(), name)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	sd, err := save.Load(data)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	save.Apply(m.engine, sd)

	return []string{fmt.Sprintf("Session loaded from %s (level %s, %d interactions).",
		name, sd.Level, sd.Progress.TotalInteractions)}
}

func (m *Model) cmdSlots() []string {
	if m.saves == nil {
		return []string{"No save database."}
	}
	slots, err := m.saves.List(context.Background())
	if err != nil {
		return []string{fmt.Sprintf("Listing saves failed: %v", err)}
	}
	if len(slots) == 0 {
		return []string{"No saves yet."}
	}
	var out []string
	for _, s := range slots {
		out = append(out, fmt.Sprintf("%s (%s)", s.Name, s.UpdatedAt.Format("2006-01-02 15:04")))
	}
	return out
}

func (m *Model) cmdHelp() []string {
	return []string{
		"System:",
		"  /save [name]  — Save session (default: quicksave)",
		"  /load [name]  — Load session",
		"  /slots        — List saves",
		"  /quit         — Exit",
		"  /help         — Show this help",
		"  /state        — Debug: dump session state",
		"",
		"World commands:",
		"  go <location>        — Travel",
		"  take <item>          — Pick something up",
		"  give <item> to <npc> — Hand an item over",
		"  talk <npc>           — Strike up a conversation",
		"  learn <info>         — Note something learned",
		"  accept <quest>       — Take on a quest",
		"  where (l)            — Look around",
		"  inventory (i)        — Check what you're carrying",
		"  quests (q)           — Quest log",
		"  skills               — Skill levels",
		"  level                — Progress toward the next level",
		"  again (g)            — Repeat your last input",
		"",
		"Anything else is spoken in the target language.",
		"Navigation: PgUp/PgDn to scroll, Up/Down for input history",
	}
}

func (m *Model) cmdState() []string {
	w := m.engine.World
	st := m.engine.Progress
	out := []string{
		fmt.Sprintf("Level: %s  XP: %d  Interactions: %d", w.Level, w.XP, st.TotalInteractions),
		fmt.Sprintf("Location: %s", w.CurrentLocation),
		fmt.Sprintf("Inventory: %v", w.Inventory),
	}
	if len(w.StoryFlags) > 0 {
		out = append(out, fmt.Sprintf("Flags: %v", w.StoryFlags))
	}
	if len(st.FiredTriggers) > 0 {
		out = append(out, fmt.Sprintf("Fired triggers: %d", len(st.FiredTriggers)))
	}
	return out
}

// appendOutput adds lines to the narrative and refreshes the viewport.
func (m Model) appendOutput(msg gameOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: "> " + msg.input, isInput: true,
		})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	// Blank line separator between turns.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current
// width and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries. Widths are display cells, not bytes, so accented text
// does not wrap early.
func wordWrap(text string, width int) string {
	if width <= 0 || lipgloss.Width(text) <= width {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wLen := lipgloss.Width(word)

		if i == 0 {
			result.WriteString(word)
			lineLen = wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// parseCommand splits "give manzana to maria" into verb, object, target.
// The "to" keyword separates object from target.
func parseCommand(input string) (verb, object, target string) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return "", "", ""
	}
	verb = strings.ToLower(fields[0])
	rest := fields[1:]
	for i, f := range rest {
		if strings.EqualFold(f, "to") {
			return verb, strings.Join(rest[:i], " "), strings.Join(rest[i+1:], " ")
		}
	}
	return verb, strings.Join(rest, " "), ""
}

func metMark(met bool) string {
	if met {
		return "✓"
	}
	return "…"
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (those drive input history instead).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
