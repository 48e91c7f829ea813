// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for the LingoQuest progression engine. Anything that is not a
// recognized world command is treated as an utterance in the target
// language and sent through the grammar collaborator.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/tessera-games/lingoquest/engine"
	"github.com/tessera-games/lingoquest/engine/save"
	"github.com/tessera-games/lingoquest/store/sqlite"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Engine *engine.Engine
	Saves  *sqlite.Store // optional; nil disables /save and /load
	In     io.Reader
	Out    io.Writer
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine, saves *sqlite.Store) *CLI {
	return &CLI{
		Engine: eng,
		Saves:  saves,
		In:     os.Stdin,
		Out:    os.Stdout,
	}
}

// Run starts the session loop: prompt → input → dispatch → output.
func (c *CLI) Run(ctx context.Context) {
	c.printLine(fmt.Sprintf("You are at %s (level %s). Type /help for commands; anything else is spoken aloud.",
		c.locationName(c.Engine.World.CurrentLocation), c.Engine.World.Level))

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if c.handleMeta(ctx, input) {
				return // /quit
			}
			continue
		}

		if c.handleCommand(input) {
			continue
		}

		// Not a world command: speak it.
		res, err := c.Engine.HandleUtterance(ctx, input)
		if err != nil {
			c.printSystem(fmt.Sprintf("Grammar check unavailable: %v", err))
			continue
		}
		c.printResult(res)
	}
}

// handleCommand dispatches world commands. Returns false when the input
// is not a recognized command and should be treated as an utterance.
func (c *CLI) handleCommand(input string) bool {
	verb, object, target := parseCommand(input)

	var res engine.Result
	var err error

	switch verb {
	case "go", "walk":
		if object == "" {
			c.printLine("Go where?")
			return true
		}
		res, err = c.Engine.MoveTo(object)
	case "take", "get":
		if object == "" {
			c.printLine("Take what?")
			return true
		}
		res, err = c.Engine.TakeItem(object)
	case "give":
		if object == "" || target == "" {
			c.printLine("Give what to whom? (give <item> to <npc>)")
			return true
		}
		res, err = c.Engine.GiveItem(object, target)
	case "talk", "speak":
		if object == "" {
			c.printLine("Talk to whom?")
			return true
		}
		res, err = c.Engine.TalkTo(object)
	case "learn":
		if object == "" {
			c.printLine("Learn what?")
			return true
		}
		res = c.Engine.LearnInfo(object)
	case "accept":
		if object == "" {
			c.printLine("Accept which quest?")
			return true
		}
		res, err = c.Engine.AcceptQuest(object)
	case "inventory", "i":
		c.cmdInventory()
		return true
	case "quests", "q":
		c.cmdQuests()
		return true
	case "skills":
		c.cmdSkills()
		return true
	case "level":
		c.cmdLevel()
		return true
	case "where", "look", "l":
		c.cmdWhere()
		return true
	default:
		return false
	}

	if err != nil {
		c.printLine(capitalize(err.Error()) + ".")
		return true
	}
	c.printResult(res)
	return true
}

// handleMeta dispatches meta-commands. Returns true to exit.
func (c *CLI) handleMeta(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Hasta luego.")
		return true
	case "/save":
		c.cmdSave(ctx, arg)
	case "/load":
		c.cmdLoad(ctx, arg)
	case "/slots":
		c.cmdSlots(ctx)
	case "/help":
		c.cmdHelp()
	case "/state":
		c.cmdState()
	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}
	return false
}

func (c *CLI) cmdSave(ctx context.Context, name string) {
	if c.Saves == nil {
		c.printSystem("Saving is disabled (no save database).")
		return
	}
	if name == "" {
		name = "quicksave"
	}
	data, err := save.Save(c.Engine)
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	if err := c.Saves.Put(ctx, name, data); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Session saved to %s.", name))
}

func (c *CLI) cmdLoad(ctx context.Context, name string) {
	if c.Saves == nil {
		c.printSystem("Loading is disabled (no save database).")
		return
	}
	if name == "" {
		name = "quicksave"
	}
	data, err := c.Saves.Get(ctx, name)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	sd, err := save.Load(data)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	save.Apply(c.Engine, sd)
	c.printSystem(fmt.Sprintf("Session loaded from %s (level %s, %d interactions).",
		name, sd.Level, sd.Progress.TotalInteractions))
}

func (c *CLI) cmdSlots(ctx context.Context) {
	if c.Saves == nil {
		c.printSystem("No save database.")
		return
	}
	slots, err := c.Saves.List(ctx)
	if err != nil {
		c.printSystem(fmt.Sprintf("Listing saves failed: %v", err))
		return
	}
	if len(slots) == 0 {
		c.printSystem("No saves yet.")
		return
	}
	for _, s := range slots {
		c.printLine(fmt.Sprintf("  %s (%s)", s.Name, s.UpdatedAt.Format("2006-01-02 15:04")))
	}
}

func (c *CLI) cmdInventory() {
	inv := c.Engine.World.Inventory
	if len(inv) == 0 {
		c.printLine("You are carrying nothing.")
		return
	}
	var names []string
	for _, id := range inv {
		names = append(names, c.itemName(id))
	}
	c.printLine("You are carrying: " + strings.Join(names, ", ") + ".")
}

func (c *CLI) cmdQuests() {
	w := c.Engine.World
	if len(w.ActiveQuests) == 0 {
		c.printLine("No active quests.")
	}
	for _, q := range w.ActiveQuestList() {
		done := 0
		for _, t := range q.Tasks {
			if t.Completed {
				done++
			}
		}
		c.printLine(fmt.Sprintf("  %s — %s (%d/%d)", q.ID, q.Name.Target, done, len(q.Tasks)))
		for _, t := range q.Tasks {
			mark := "[ ]"
			if t.Completed {
				mark = "[x]"
			}
			c.printLine(fmt.Sprintf("    %s %s", mark, t.Description.Target))
		}
	}
	if len(w.CompletedQuests) > 0 {
		var ids []string
		for id := range w.CompletedQuests {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		c.printLine("Completed: " + strings.Join(ids, ", "))
	}
}

func (c *CLI) cmdSkills() {
	st := c.Engine.Progress
	if len(st.Skills) == 0 {
		c.printLine("No skill points yet. Try speaking some Spanish.")
		return
	}
	// Catalog order first, then any skills the catalog does not know.
	seen := map[string]bool{}
	for _, id := range c.Engine.Catalog.SkillOrder {
		if lvl, ok := st.Skills[id]; ok && lvl > 0 {
			c.printLine(fmt.Sprintf("  %-32s %3d", id, lvl))
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
		c.printLine(fmt.Sprintf("  %-32s %3d", id, st.Skills[id]))
	}
	c.printLine(fmt.Sprintf("  %-32s %3d", "total", st.TotalSkillPoints()))
}

func (c *CLI) cmdLevel() {
	d := c.Engine.LevelDetails()
	c.printLine(fmt.Sprintf("Current level: %s", c.Engine.World.Level))
	if d.AtMaxLevel {
		c.printLine("Already at max level.")
		return
	}
	c.printLine(fmt.Sprintf("Toward %s: %s", d.NextLevel, d.Description))
	c.printLine(fmt.Sprintf("  total points: %d/%d %s", d.TotalPoints, d.RequiredPoints, metMark(d.TotalMet)))
	for _, th := range d.Thresholds {
		c.printLine(fmt.Sprintf("  %s: %d/%d %s", th.SkillID, th.Current, th.Required, metMark(th.Met)))
	}
	if d.Flexible.Required > 0 {
		c.printLine(fmt.Sprintf("  flexible: %d/%d skills at %d+ %s",
			d.Flexible.Count, d.Flexible.Required, d.Flexible.Threshold, metMark(d.Flexible.Met)))
	}
}

func (c *CLI) cmdWhere() {
	w := c.Engine.World
	c.printLine("You are at " + c.locationName(w.CurrentLocation) + ".")
	if loc, ok := w.Catalog.Locations[w.CurrentLocation]; ok && len(loc.Connections) > 0 {
		var names []string
		for _, id := range loc.Connections {
			names = append(names, id)
		}
		c.printLine("You can go to: " + strings.Join(names, ", ") + ".")
	}
	var npcs []string
	for id, npc := range w.Catalog.NPCs {
		if npc.LocationID == w.CurrentLocation {
			npcs = append(npcs, id)
		}
	}
	if len(npcs) > 0 {
		sort.Strings(npcs)
		c.printLine("People here: " + strings.Join(npcs, ", ") + ".")
	}
	var items []string
	for id, item := range w.Catalog.Items {
		if item.LocationID == w.CurrentLocation {
			items = append(items, id)
		}
	}
	if len(items) > 0 {
		sort.Strings(items)
		c.printLine("You see: " + strings.Join(items, ", ") + ".")
	}
}

func (c *CLI) cmdState() {
	w := c.Engine.World
	st := c.Engine.Progress
	c.printSystem(fmt.Sprintf("Level: %s  XP: %d  Interactions: %d", w.Level, w.XP, st.TotalInteractions))
	c.printSystem(fmt.Sprintf("Location: %s", w.CurrentLocation))
	c.printSystem(fmt.Sprintf("Inventory: %v", w.Inventory))
	if len(w.StoryFlags) > 0 {
		c.printSystem(fmt.Sprintf("Flags: %v", w.StoryFlags))
	}
	if len(st.FiredTriggers) > 0 {
		c.printSystem(fmt.Sprintf("Fired triggers: %d", len(st.FiredTriggers)))
	}
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [name]   — Save session (default: quicksave)",
		"  /load [name]   — Load session",
		"  /slots         — List saves",
		"  /state         — Debug: dump session state",
		"  /quit          — Exit",
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
		"",
		"Anything else is spoken in the target language.",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

// printResult renders the events of one engine step.
func (c *CLI) printResult(res engine.Result) {
	for _, a := range res.Awards {
		c.printLine(fmt.Sprintf("+%d %s (%s)", a.PointsAwarded, a.SkillID, a.TriggerDescription))
	}
	if res.LevelUp != nil {
		c.printLine(fmt.Sprintf("*** Level up! %s -> %s ***", res.LevelUp.OldLevel, res.LevelUp.NewLevel))
	}
	for _, t := range res.Tasks {
		c.printLine(fmt.Sprintf("Task complete: %s (%d/%d in %s)",
			t.TaskDescription, t.CompletedTasks, t.TotalTasks, t.QuestName))
	}
	for _, q := range res.QuestsCompleted {
		c.printLine(fmt.Sprintf("Quest complete: %s (+%d XP)", q.QuestName, q.XPReward))
	}
	for _, a := range res.Announcements {
		c.printLine(a)
	}
}

func (c *CLI) locationName(id string) string {
	if loc, ok := c.Engine.Catalog.Locations[id]; ok && loc.Name.Target != "" {
		return loc.Name.Target
	}
	if id == "" {
		return "nowhere in particular"
	}
	return id
}

func (c *CLI) itemName(id string) string {
	if item, ok := c.Engine.Catalog.Items[id]; ok && item.Name.Target != "" {
		return item.Name.Target
	}
	return id
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}

// parseCommand splits "give apple to maria" into verb, object, target.
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

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
