package engine

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nathoo/raidcore/types"
	"github.com/nathoo/raidcore/world"
)

var title = cases.Title(language.English)

// DisplayName turns a snake_case name such as "in_progress" into
// "In Progress".
func DisplayName(s string) string {
	return title.String(strings.ReplaceAll(s, "_", " "))
}

func (e *Engine) describeQuests() []string {
	objs := e.Quests.Objectives()
	if len(objs) == 0 {
		return []string{"Your journal is empty."}
	}
	out := make([]string, 0, len(objs))
	for i, o := range objs {
		out = append(out, fmt.Sprintf("%d. [%s] %s (%d) %d/%d, %s %d",
			i+1, StateLabel(o.State), o.Def.Name, o.Def.ID,
			o.Progress, o.Def.Target, DisplayName(o.Def.Condition.String()), o.Def.Key))
	}
	return out
}

func (e *Engine) describeBoss() []string {
	b := e.Boss
	out := []string{
		fmt.Sprintf("Boss %d: %s  HP %d/%d  AC %d", b.BossID(), e.bossState(), b.HP(), b.MaxHP(), b.AC()),
	}
	if t, ok := b.Target(); ok {
		deg := b.Yaw() * 180 / math.Pi
		out = append(out, fmt.Sprintf("Target: %s at %.1f away, facing %.0f°", t.ID, world.Distance(b.Position(), t.Position), deg))
	} else {
		out = append(out, "Target: none")
	}
	if hz := b.Hazards(); len(hz) > 0 {
		live := 0
		for _, h := range hz {
			if !h.Expired() {
				live++
			}
		}
		out = append(out, fmt.Sprintf("Hazards: %d live", live))
	}
	out = append(out, fmt.Sprintf("You: HP %d/%d", e.Player.HP(), e.Player.MaxHP()))
	return out
}

func (e *Engine) describePool() []string {
	b := e.Boss
	pool := b.Pool()
	names := make([]string, 0, len(pool))
	for _, slot := range pool {
		if st := b.Slot(slot); st != nil {
			names = append(names, st.Name())
		}
	}
	if len(names) == 0 {
		return []string{"Pattern pool: empty (a new round is drawn on the next attack)"}
	}
	return []string{"Pattern pool: " + strings.Join(names, ", ")}
}

func (e *Engine) describeInventory() []string {
	var out []string
	for i, it := range e.Inventory.Slots() {
		if it == nil {
			continue
		}
		out = append(out, fmt.Sprintf("Slot %d: item %d x%d/%d", i+1, it.ID, it.Amount, it.MaxAmount))
	}
	if len(out) == 0 {
		return []string{"You are carrying nothing."}
	}
	return out
}

func (e *Engine) describeWorld() []string {
	me, ok := e.World.Get(PlayerBodyID)
	if !ok {
		return []string{"You are nowhere."}
	}
	out := []string{fmt.Sprintf("You stand at (%.1f, %.1f).", me.Position.X, me.Position.Z)}
	for _, b := range e.World.Bodies() {
		if b.ID == PlayerBodyID {
			continue
		}
		out = append(out, fmt.Sprintf("  %s [%s] %.1f away", b.ID, b.Tag, world.Distance(me.Position, b.Position)))
	}
	return out
}

// StateLabel returns the display label of an objective state.
func StateLabel(s types.ObjectiveState) string {
	return DisplayName(s.String())
}
