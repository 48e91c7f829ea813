// Package tui provides a Bubble Tea terminal UI for LingoQuest sessions.
package tui

// History is a bounded input-history buffer with cursor navigation.
type History struct {
	entries []string
	max     int
	cursor  int // -1 = not navigating
}

// NewHistory creates a history buffer holding at most max entries.
func NewHistory(max int) *History {
	return &History{max: max, cursor: -1}
}

// Push records an input line. Consecutive duplicates are skipped.
func (h *History) Push(line string) {
	if n := len(h.entries); n > 0 && h.entries[n-1] == line {
		return
	}
	h.entries = append(h.entries, line)
	if len(h.entries) > h.max {
		h.entries = h.entries[1:]
	}
}

// Prev moves to the previous (older) entry, staying on the oldest once
// reached. Returns ("", false) when the history is empty.
func (h *History) Prev() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	switch {
	case h.cursor == -1:
		h.cursor = len(h.entries) - 1
	case h.cursor > 0:
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// Next moves toward the newest entry. Returns ("", false) once past the
// most recent entry, leaving the cursor reset for fresh input.
func (h *History) Next() (string, bool) {
	if h.cursor == -1 {
		return "", false
	}
	h.cursor++
	if h.cursor >= len(h.entries) {
		h.cursor = -1
		return "", false
	}
	return h.entries[h.cursor], true
}

// ResetCursor leaves navigation mode.
func (h *History) ResetCursor() {
	h.cursor = -1
}
