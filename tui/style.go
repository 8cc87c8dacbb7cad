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

	styleStatusDanger = lipgloss.NewStyle().
				Background(lipgloss.Color("52")).
				Foreground(lipgloss.Color("252")).
				Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarrative = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleBoss = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208")).
			Bold(true)

	styleDamage = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	styleProgress = lipgloss.NewStyle().
			Foreground(lipgloss.Color("76"))

	styleDialogue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("160"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarrative lineKind = iota
	kindBoss
	kindDamage
	kindProgress
	kindDialogue
	kindSystem
	kindError
	kindTrace
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "Boss "), strings.HasPrefix(line, "Boss:"), strings.HasPrefix(line, "The boss"):
		return kindBoss
	case strings.HasPrefix(line, "You take "), strings.HasPrefix(line, "You have fallen"):
		return kindDamage
	case strings.HasPrefix(line, "Objective complete"),
		strings.HasPrefix(line, "Accepted:"),
		strings.HasPrefix(line, "Clear recorded"):
		return kindProgress
	case strings.HasPrefix(line, "I don't understand"),
		strings.HasPrefix(line, "Cannot "),
		strings.HasPrefix(line, "There is nothing"),
		strings.HasPrefix(line, "Your inventory is full"):
		return kindError
	case isSpeech(line):
		return kindDialogue
	default:
		return kindNarrative
	}
}

// isSpeech reports whether line reads "Speaker: words". The speaker must be
// a capitalized name without digits so status lines like "Slot 1: ..." are
// not mistaken for dialogue.
func isSpeech(line string) bool {
	speaker, words, ok := strings.Cut(line, ": ")
	if !ok || speaker == "" || words == "" || len(speaker) > 32 {
		return false
	}
	if speaker[0] < 'A' || speaker[0] > 'Z' {
		return false
	}
	return !strings.ContainsAny(speaker, "0123456789[]")
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindBoss:
		return styleBoss.Render(line)
	case kindDamage:
		return styleDamage.Render(line)
	case kindProgress:
		return styleProgress.Render(line)
	case kindDialogue:
		return styleDialogue.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleNarrative.Render(line)
	}
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
