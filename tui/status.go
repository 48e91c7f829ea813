package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// locationDisplayName derives a readable name for the current location,
// preferring the catalog's target-language name over the raw id.
// "plaza_mayor" -> "Plaza Mayor" when the catalog has no name for it.
func (m Model) locationDisplayName() string {
	id := m.engine.World.CurrentLocation
	if loc, ok := m.engine.Catalog.Locations[id]; ok && loc.Name.Target != "" {
		return loc.Name.Target
	}
	words := strings.Split(id, "_")
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// renderStatusBar produces a full-width inverted status line showing
// location, CEFR level, skill points, quest progress, and interactions.
func (m Model) renderStatusBar() string {
	w := m.engine.World
	st := m.engine.Progress

	left := fmt.Sprintf(" %s | %s", m.locationDisplayName(), w.Level)

	active := len(w.ActiveQuests)
	done := len(w.CompletedQuests)
	right := fmt.Sprintf("I:%d ", st.TotalInteractions)

	candidate := fmt.Sprintf("Pts: %d | Q: %d/%d | I:%d ",
		st.TotalSkillPoints(), active, active+done, st.TotalInteractions)
	if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
		right = candidate
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
