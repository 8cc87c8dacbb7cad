// Package quest tracks objectives and advances them from gameplay events.
package quest

import (
	"errors"
	"fmt"

	"github.com/nathoo/raidcore/engine/table"
	"github.com/nathoo/raidcore/types"
)

var (
	// ErrNotFound is returned for an objective id that is not tracked or
	// has no row in the data table.
	ErrNotFound = errors.New("objective not found")
	// ErrNotStartable is returned when accepting an objective that is not
	// Startable.
	ErrNotStartable = errors.New("objective is not startable")
)

// Objective is one tracked objective. Progress stays within [0, Target] and
// never decreases; State only moves forward.
type Objective struct {
	Def      types.ObjectiveDef
	Progress int
	State    types.ObjectiveState
}

// NewObjective creates an objective from its definition. Objectives with
// prerequisites start NotStartable, the rest Startable; auto-start promotes
// Startable to InProgress.
func NewObjective(def types.ObjectiveDef) *Objective {
	o := &Objective{Def: def, State: types.Startable}
	if len(def.Prereqs) > 0 {
		o.State = types.NotStartable
	}
	o.autoStart()
	return o
}

// DefFromTable reads the objective row id.
func DefFromTable(src table.Source, id int) (types.ObjectiveDef, error) {
	if _, ok := src.Value(id, "condition"); !ok {
		return types.ObjectiveDef{}, fmt.Errorf("row %d: %w", id, ErrNotFound)
	}
	def := types.ObjectiveDef{
		ID:        id,
		Name:      table.String(src, id, "name", ""),
		Condition: types.ConditionCode(table.Int(src, id, "condition", 0)),
		Key:       table.Int(src, id, "key", 0),
		Target:    table.Int(src, id, "target", 1),
		Prereqs:   table.IntList(src, id, "prereqs"),
		AutoStart: table.Bool(src, id, "auto_start", false),
	}
	if def.Target < 1 {
		def.Target = 1
	}
	if def.Name == "" {
		def.Name = fmt.Sprintf("objective %d", id)
	}
	return def, nil
}

// Matches reports whether e advances this objective.
func (o *Objective) Matches(code types.ConditionCode, key int) bool {
	return o.State == types.InProgress && o.Def.Condition == code && o.Def.Key == key
}

// Add increments progress by n. It reports whether this call completed the
// objective.
func (o *Objective) Add(n int) bool {
	if n <= 0 {
		return false
	}
	return o.Set(o.Progress + n)
}

// Set moves progress to v, clamped to the target. Lower values are ignored.
// It reports whether this call completed the objective.
func (o *Objective) Set(v int) bool {
	if o.State != types.InProgress {
		return false
	}
	if v > o.Def.Target {
		v = o.Def.Target
	}
	if v <= o.Progress {
		return false
	}
	o.Progress = v
	if o.Progress == o.Def.Target {
		o.State = types.Complete
		return true
	}
	return false
}

// TryUnlock moves NotStartable to Startable when every prerequisite is
// complete. It is safe to call repeatedly and reports whether the state
// changed.
func (o *Objective) TryUnlock(complete func(id int) bool) bool {
	if o.State != types.NotStartable {
		return false
	}
	for _, id := range o.Def.Prereqs {
		if !complete(id) {
			return false
		}
	}
	o.State = types.Startable
	o.autoStart()
	return true
}

// Accept moves Startable to InProgress.
func (o *Objective) Accept() error {
	if o.State != types.Startable {
		return fmt.Errorf("objective %d is %s: %w", o.Def.ID, o.State, ErrNotStartable)
	}
	o.State = types.InProgress
	return nil
}

func (o *Objective) autoStart() {
	if o.Def.AutoStart && o.State == types.Startable {
		o.State = types.InProgress
	}
}
