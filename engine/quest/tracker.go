package quest

import (
	"fmt"
	"log/slog"

	"github.com/nathoo/raidcore/engine/bus"
	"github.com/nathoo/raidcore/engine/table"
	"github.com/nathoo/raidcore/inventory"
	"github.com/nathoo/raidcore/types"
)

// CompleteFunc is called once for every objective that completes.
type CompleteFunc func(o Objective)

// Tracker holds the active objective set.
type Tracker struct {
	objectives []*Objective
	inv        inventory.View
	bus        *bus.Bus
	subs       []*bus.Subscription
	listeners  []CompleteFunc
	logger     *slog.Logger
}

// NewTracker creates an empty tracker. inv answers ItemGift count queries
// when an event carries no payload; it may be nil.
func NewTracker(inv inventory.View, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Tracker{inv: inv, logger: logger}
}

// LoadFromTable appends one objective for each consecutive row starting at
// the first objective id. It returns the number loaded. A bad row loads
// nothing.
func (t *Tracker) LoadFromTable(src table.Source) (int, error) {
	n := src.RowCount(table.QuestFirstID)
	defs := make([]types.ObjectiveDef, 0, n)
	for i := 0; i < n; i++ {
		def, err := DefFromTable(src, table.QuestFirstID+i)
		if err != nil {
			return 0, fmt.Errorf("loading objectives: %w", err)
		}
		defs = append(defs, def)
	}
	for _, def := range defs {
		t.Add(def)
	}
	t.logger.Info("objectives loaded", "count", n)
	return n, nil
}

// Create appends the objective defined by row id.
func (t *Tracker) Create(src table.Source, id int) error {
	def, err := DefFromTable(src, id)
	if err != nil {
		return fmt.Errorf("creating objective: %w", err)
	}
	t.Add(def)
	return nil
}

// Add appends an objective built from def.
func (t *Tracker) Add(def types.ObjectiveDef) *Objective {
	o := NewObjective(def)
	t.objectives = append(t.objectives, o)
	t.logger.Debug("objective created", "id", def.ID, "state", o.State)
	return o
}

// Remove deletes the objective at index. Out-of-range indexes are ignored.
func (t *Tracker) Remove(index int) {
	if index < 0 || index >= len(t.objectives) {
		t.logger.Debug("remove index out of range", "index", index, "len", len(t.objectives))
		return
	}
	t.objectives = append(t.objectives[:index], t.objectives[index+1:]...)
}

// Accept starts the Startable objective id.
func (t *Tracker) Accept(id int) error {
	o := t.find(id)
	if o == nil {
		return fmt.Errorf("accepting %d: %w", id, ErrNotFound)
	}
	if err := o.Accept(); err != nil {
		return err
	}
	t.logger.Info("objective accepted", "id", id, "name", o.Def.Name)
	return nil
}

// Objectives returns a snapshot of the active set in order.
func (t *Tracker) Objectives() []Objective {
	out := make([]Objective, len(t.objectives))
	for i, o := range t.objectives {
		out[i] = *o
	}
	return out
}

// Find returns a snapshot of objective id.
func (t *Tracker) Find(id int) (Objective, bool) {
	o := t.find(id)
	if o == nil {
		return Objective{}, false
	}
	return *o, true
}

// Len returns the number of tracked objectives.
func (t *Tracker) Len() int {
	return len(t.objectives)
}

// OnComplete registers fn to run whenever an objective completes.
func (t *Tracker) OnComplete(fn CompleteFunc) {
	t.listeners = append(t.listeners, fn)
}

// Attach subscribes the tracker to DataReady and every gameplay condition
// on b. Completions are announced on b as DataReady.
func (t *Tracker) Attach(b *bus.Bus) {
	t.Detach()
	t.bus = b
	t.subs = append(t.subs, b.Subscribe(types.ConditionDataReady, func(types.Event) { t.OnDataReady() }))
	for _, code := range types.GameplayConditions {
		t.subs = append(t.subs, b.Subscribe(code, func(e types.Event) {
			t.OnGameplayEventWithPayload(e.Code, e.Key, e.Payload)
		}))
	}
}

// Detach cancels every subscription made by Attach.
func (t *Tracker) Detach() {
	for _, s := range t.subs {
		s.Cancel()
	}
	t.subs = nil
	t.bus = nil
}

// OnDataReady tries to unlock every NotStartable objective.
func (t *Tracker) OnDataReady() {
	for _, o := range t.objectives {
		if o.State != types.NotStartable {
			continue
		}
		if o.TryUnlock(t.isComplete) {
			t.logger.Info("objective unlocked", "id", o.Def.ID, "state", o.State)
		}
	}
}

// OnGameplayEvent applies an event without payload.
func (t *Tracker) OnGameplayEvent(code types.ConditionCode, key int) {
	t.OnGameplayEventWithPayload(code, key, nil)
}

// OnGameplayEventWithPayload advances every InProgress objective matching
// code and key. ItemGift objectives take the held item count (payload when
// given, otherwise the inventory); all others advance by one. Nothing
// changes when no InProgress objective uses code.
func (t *Tracker) OnGameplayEventWithPayload(code types.ConditionCode, key int, payload *int) {
	if !t.hasActive(code) {
		t.logger.Debug("no objective in progress for condition", "condition", code, "key", key)
		return
	}

	held := 0
	if code == types.ConditionItemGift {
		switch {
		case payload != nil:
			held = *payload
		case t.inv != nil:
			held = t.inv.CountItem(key)
		}
	}

	var completed []*Objective
	for _, o := range t.objectives {
		if !o.Matches(code, key) {
			continue
		}
		var done bool
		if code == types.ConditionItemGift {
			done = o.Set(held)
		} else {
			done = o.Add(1)
		}
		t.logger.Debug("objective progress", "id", o.Def.ID, "progress", o.Progress, "target", o.Def.Target)
		if done {
			completed = append(completed, o)
		}
	}

	for _, o := range completed {
		t.logger.Info("objective complete", "id", o.Def.ID, "name", o.Def.Name)
		for _, fn := range t.listeners {
			fn(*o)
		}
	}
	if len(completed) > 0 {
		t.announce()
	}
}

// Restore overwrites progress and state for objective id. It is used when
// loading a save and bypasses the forward-only rules.
func (t *Tracker) Restore(id, progress int, state types.ObjectiveState) error {
	o := t.find(id)
	if o == nil {
		return fmt.Errorf("restoring %d: %w", id, ErrNotFound)
	}
	if progress < 0 || progress > o.Def.Target {
		return fmt.Errorf("restoring %d: progress %d outside [0,%d]", id, progress, o.Def.Target)
	}
	o.Progress = progress
	o.State = state
	return nil
}

// announce raises DataReady so prerequisite chains unlock.
func (t *Tracker) announce() {
	if t.bus != nil {
		t.bus.Publish(types.Event{Code: types.ConditionDataReady})
		return
	}
	t.OnDataReady()
}

func (t *Tracker) hasActive(code types.ConditionCode) bool {
	for _, o := range t.objectives {
		if o.State == types.InProgress && o.Def.Condition == code {
			return true
		}
	}
	return false
}

func (t *Tracker) isComplete(id int) bool {
	o := t.find(id)
	return o != nil && o.State == types.Complete
}

func (t *Tracker) find(id int) *Objective {
	for _, o := range t.objectives {
		if o.Def.ID == id {
			return o
		}
	}
	return nil
}
