package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarrative = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleAward = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	styleLevelUp = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	styleQuest = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarrative lineKind = iota
	kindAward
	kindLevelUp
	kindQuest
	kindSystem
	kindError
)

// classifyLine determines how an engine output line should be styled.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "+"):
		return kindAward
	case strings.HasPrefix(line, "*** Level up"):
		return kindLevelUp
	case strings.HasPrefix(line, "Task complete"),
		strings.HasPrefix(line, "Quest complete"),
		strings.HasPrefix(line, "Unlocked:"):
		return kindQuest
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "You can't"),
		strings.HasPrefix(line, "You don't"),
		strings.HasPrefix(line, "Unknown"):
		return kindError
	default:
		return kindNarrative
	}
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindAward:
		return styleAward.Render(line)
	case kindLevelUp:
		return styleLevelUp.Render(line)
	case kindQuest:
		return styleQuest.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	default:
		return styleNarrative.Render(line)
	}
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
