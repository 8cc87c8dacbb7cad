// Package parser converts command strings into Intent structs.
// Intentionally dumb: no NLP, just verb aliases and argument splitting.
package parser

import (
	"strconv"
	"strings"

	"github.com/nathoo/raidcore/types"
)

// Verbs understood by the engine.
const (
	VerbTick      = "tick"
	VerbHit       = "hit"
	VerbKill      = "kill"
	VerbUse       = "use"
	VerbCraft     = "craft"
	VerbTouch     = "touch"
	VerbTalk      = "talk"
	VerbGive      = "give"
	VerbAccept    = "accept"
	VerbQuests    = "quests"
	VerbBoss      = "boss"
	VerbPool      = "pool"
	VerbInventory = "inventory"
	VerbMove      = "move"
	VerbAbandon   = "abandon"
	VerbLook      = "look"
)

var verbAliases = map[string]string{
	// Time
	"wait": VerbTick,
	"z":    VerbTick,
	"t":    VerbTick,

	// Combat
	"attack": VerbHit,
	"strike": VerbHit,
	"h":      VerbHit,
	"slay":   VerbKill,

	// Items
	"consume": VerbUse,
	"eat":     VerbUse,
	"drink":   VerbUse,
	"take":    VerbGive,
	"get":     VerbGive,
	"loot":    VerbGive,
	"receive": VerbGive,
	"make":    VerbCraft,
	"forge":   VerbCraft,
	"inv":     VerbInventory,
	"i":       VerbInventory,

	// Interaction
	"interact": VerbTouch,
	"press":    VerbTouch,
	"pull":     VerbTouch,
	"open":     VerbTouch,
	"speak":    VerbTalk,
	"chat":     VerbTalk,
	"ask":      VerbTalk,

	// Progression
	"start":   VerbAccept,
	"q":       VerbQuests,
	"journal": VerbQuests,
	"drop":    VerbAbandon,

	// Status
	"status": VerbBoss,
	"l":      VerbLook,
	"go":     VerbMove,
	"walk":   VerbMove,
}

var fillers = map[string]bool{
	"the": true, "a": true, "an": true,
	"to": true, "with": true, "at": true,
	"on": true, "for": true,
}

// Parse converts a raw command string into an Intent.
func Parse(input string) types.Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Intent{}
	}

	words := strings.Fields(strings.ToLower(input))

	// Handle multi-word verb phrases before general parsing.
	words = expandMultiWordVerbs(words)

	// Apply verb aliases.
	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	return types.Intent{
		Verb: words[0],
		Args: stripFillers(words[1:]),
	}
}

// expandMultiWordVerbs handles "talk to", "pick up", "look around" etc.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	switch words[0] {
	case "pick":
		if words[1] == "up" {
			return append([]string{VerbGive}, words[2:]...)
		}
	case "look":
		if words[1] == "around" {
			return append([]string{VerbLook}, words[2:]...)
		}
	case "boss":
		if words[1] == "pool" || words[1] == "patterns" {
			return append([]string{VerbPool}, words[2:]...)
		}
	case "give":
		// "give up" abandons rather than gives.
		if words[1] == "up" {
			return append([]string{VerbAbandon}, words[2:]...)
		}
	}

	return words
}

// stripFillers removes articles and prepositions from the argument list.
func stripFillers(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !fillers[w] {
			result = append(result, w)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// IntArg returns argument i of in as an integer.
func IntArg(in types.Intent, i int) (int, bool) {
	if i < 0 || i >= len(in.Args) {
		return 0, false
	}
	n, err := strconv.Atoi(in.Args[i])
	if err != nil {
		return 0, false
	}
	return n, true
}

// FloatArg returns argument i of in as a float.
func FloatArg(in types.Intent, i int) (float64, bool) {
	if i < 0 || i >= len(in.Args) {
		return 0, false
	}
	f, err := strconv.ParseFloat(in.Args[i], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
