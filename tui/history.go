package tui

import "strings"

// History recalls submitted commands with Up/Down. Each command is kept
// once, at the position of its latest use. Recall is filtered by what was
// typed when navigation started: "ti" then Up walks only commands that
// begin with "ti", and stepping back past the newest match restores "ti".
type History struct {
	entries []string
	limit   int

	// Navigation state. pos is -1 while the input line is the user's own.
	pos    int
	prefix string
}

// NewHistory creates a history that keeps at most limit commands.
func NewHistory(limit int) *History {
	if limit < 1 {
		limit = 1
	}
	return &History{limit: limit, pos: -1}
}

// Push records cmd as the newest command and ends navigation.
func (h *History) Push(cmd string) {
	h.pos = -1
	if cmd == "" {
		return
	}
	for i, e := range h.entries {
		if e == cmd {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			break
		}
	}
	h.entries = append(h.entries, cmd)
	if over := len(h.entries) - h.limit; over > 0 {
		h.entries = h.entries[over:]
	}
}

// Len returns the number of recorded commands.
func (h *History) Len() int { return len(h.entries) }

// Prev recalls the next older command matching the prefix. typed is the
// current input; it becomes the prefix when navigation starts. At the
// oldest match the same command is returned again. ok is false when
// nothing matches.
func (h *History) Prev(typed string) (string, bool) {
	if h.pos == -1 {
		h.prefix = typed
		if i := h.match(len(h.entries)-1, -1); i >= 0 {
			h.pos = i
			return h.entries[i], true
		}
		return "", false
	}
	if i := h.match(h.pos-1, -1); i >= 0 {
		h.pos = i
	}
	return h.entries[h.pos], true
}

// Next recalls the next newer matching command. Past the newest match it
// ends navigation and returns the text typed before it began. ok is false
// only when no navigation is in progress.
func (h *History) Next() (string, bool) {
	if h.pos == -1 {
		return "", false
	}
	if i := h.match(h.pos+1, 1); i >= 0 {
		h.pos = i
		return h.entries[i], true
	}
	h.pos = -1
	return h.prefix, true
}

// Navigating reports whether Up has been pressed since the last Push or
// Reset.
func (h *History) Navigating() bool { return h.pos != -1 }

// Reset ends navigation without recording anything.
func (h *History) Reset() { h.pos = -1 }

// match scans from i in direction step for an entry with the prefix.
func (h *History) match(i, step int) int {
	for ; i >= 0 && i < len(h.entries); i += step {
		if strings.HasPrefix(h.entries[i], h.prefix) {
			return i
		}
	}
	return -1
}
