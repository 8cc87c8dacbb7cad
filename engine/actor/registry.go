package actor

import "sort"

// Factory builds the attack state for one slot of a boss.
type Factory func(bossID int, a *Actor) State

type entry struct {
	name    string
	factory Factory
}

// Registry maps attack slots to their factories. It replaces lookup by type
// name: a slot with no registered factory stays empty on every actor.
type Registry struct {
	entries map[int]entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: map[int]entry{}}
}

// Register binds slot to factory, replacing any previous binding.
func (r *Registry) Register(slot int, name string, factory Factory) {
	r.entries[slot] = entry{name: name, factory: factory}
}

// Build constructs the state for slot, or reports false if the slot is unbound.
func (r *Registry) Build(slot, bossID int, a *Actor) (State, bool) {
	e, ok := r.entries[slot]
	if !ok || e.factory == nil {
		return nil, false
	}
	return e.factory(bossID, a), true
}

// Name returns the registered name for slot.
func (r *Registry) Name(slot int) string {
	return r.entries[slot].name
}

// Len returns the number of bound slots.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Slots returns the bound slots in ascending order.
func (r *Registry) Slots() []int {
	out := make([]int, 0, len(r.entries))
	for s := range r.entries {
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}

// Default returns a registry holding the built-in attack set.
func Default() *Registry {
	r := NewRegistry()
	r.Register(SlotSlam, "Slam", newSlam)
	r.Register(SlotVolley, "Volley", newVolley)
	r.Register(SlotCharge, "Charge", newCharge)
	r.Register(SlotQuake, "Quake", newQuake)
	r.Register(SlotSummon, "Summon", newSummon)
	r.Register(SlotBarrage, "Barrage", newBarrage)
	return r
}
