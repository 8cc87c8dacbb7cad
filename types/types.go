// Package types defines the shared data structures for the raidcore engines.
// This package contains only definitions and their display names, no engine logic.
package types

import "strconv"

// ConditionCode classifies a gameplay event and routes it to interested objectives.
type ConditionCode int

const (
	// ConditionDataReady is a system signal: objective data was loaded or an
	// objective completed. It is never an objective condition.
	ConditionDataReady     ConditionCode = 0
	ConditionBossEncounter ConditionCode = 1
	ConditionBossKill      ConditionCode = 2
	ConditionItemConsume   ConditionCode = 3
	ConditionMonsterKill   ConditionCode = 4
	ConditionCrafting      ConditionCode = 5
	ConditionObjectTouch   ConditionCode = 6
	ConditionItemGift      ConditionCode = 7
	ConditionDialogue      ConditionCode = 8
)

// GameplayConditions lists every code an objective may be authored against.
var GameplayConditions = []ConditionCode{
	ConditionBossEncounter,
	ConditionBossKill,
	ConditionItemConsume,
	ConditionMonsterKill,
	ConditionCrafting,
	ConditionObjectTouch,
	ConditionItemGift,
	ConditionDialogue,
}

var conditionNames = map[ConditionCode]string{
	ConditionDataReady:     "data_ready",
	ConditionBossEncounter: "boss_encounter",
	ConditionBossKill:      "boss_kill",
	ConditionItemConsume:   "item_consume",
	ConditionMonsterKill:   "monster_kill",
	ConditionCrafting:      "crafting",
	ConditionObjectTouch:   "object_interact",
	ConditionItemGift:      "item_gift",
	ConditionDialogue:      "dialogue",
}

func (c ConditionCode) String() string {
	if name, ok := conditionNames[c]; ok {
		return name
	}
	return "condition(" + strconv.Itoa(int(c)) + ")"
}

// IsGameplay reports whether c is a valid objective condition (1..8).
func (c ConditionCode) IsGameplay() bool {
	return c >= ConditionBossEncounter && c <= ConditionDialogue
}

// ObjectiveState is the lifecycle position of an objective.
type ObjectiveState int

const (
	NotStartable ObjectiveState = iota
	Startable
	InProgress
	Complete
)

func (s ObjectiveState) String() string {
	switch s {
	case NotStartable:
		return "not_startable"
	case Startable:
		return "startable"
	case InProgress:
		return "in_progress"
	case Complete:
		return "complete"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// Event is a condition-coded gameplay event. Payload is only meaningful for
// ConditionItemGift, where it carries the post-transfer item count.
type Event struct {
	Code    ConditionCode
	Key     int
	Payload *int
}

// ObjectiveDef is the authored definition of an objective row.
type ObjectiveDef struct {
	ID        int
	Name      string
	Condition ConditionCode
	Key       int
	Target    int
	Prereqs   []int
	AutoStart bool
}

// Vec3 is a position or direction in world space. Y is up.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Body is anything the world can report in a tag lookup or overlap query.
type Body struct {
	ID       string `json:"id"`
	Tag      string `json:"tag"`
	Position Vec3   `json:"position"`
}

// Item is one inventory stack.
type Item struct {
	ID        int
	Countable bool
	Amount    int
	MaxAmount int
}

// ClearRecord is one entry of the durable completion log.
type ClearRecord struct {
	Tag       string `json:"tag"`
	Timestamp string `json:"timestamp"`
}

// Intent is the parsed representation of an operator command.
type Intent struct {
	Verb string
	Args []string
}

// Result is the output of a single engine step.
type Result struct {
	Events []Event
	Output []string
}
