// Package world is the in-memory spatial registry the engines query for
// tagged bodies and radius overlaps. It stands in for a physics scene.
package world

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/nathoo/raidcore/types"
)

// Well-known tags.
const (
	TagPlayer  = "Player"
	TagBoss    = "Boss"
	TagHazard  = "Hazard"
	TagNPC     = "NPC"
	TagMonster = "Monster"
)

// DamageFunc receives damage dealt to a body.
type DamageFunc func(bodyID string, amount int)

// World holds every body by id.
type World struct {
	bodies   map[string]*types.Body
	onDamage DamageFunc
	logger   *slog.Logger
}

// New creates an empty world. A nil logger discards log output.
func New(logger *slog.Logger) *World {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &World{bodies: map[string]*types.Body{}, logger: logger}
}

// OnDamage sets the function that receives Damage calls.
func (w *World) OnDamage(fn DamageFunc) {
	w.onDamage = fn
}

// Add places a body. Adding an existing id is an error.
func (w *World) Add(b types.Body) error {
	if b.ID == "" {
		return fmt.Errorf("body has no id")
	}
	if _, ok := w.bodies[b.ID]; ok {
		return fmt.Errorf("body %q already exists", b.ID)
	}
	body := b
	w.bodies[b.ID] = &body
	w.logger.Debug("body added", "id", b.ID, "tag", b.Tag, "pos", b.Position)
	return nil
}

// Move sets a body's position.
func (w *World) Move(id string, pos types.Vec3) error {
	b, ok := w.bodies[id]
	if !ok {
		return fmt.Errorf("body %q not found", id)
	}
	b.Position = pos
	return nil
}

// Remove deletes a body. It reports whether the body existed.
func (w *World) Remove(id string) bool {
	if _, ok := w.bodies[id]; !ok {
		return false
	}
	delete(w.bodies, id)
	w.logger.Debug("body removed", "id", id)
	return true
}

// Get returns a copy of the body with id.
func (w *World) Get(id string) (types.Body, bool) {
	b, ok := w.bodies[id]
	if !ok {
		return types.Body{}, false
	}
	return *b, true
}

// FindWithTag returns the first body carrying tag, ordered by id.
func (w *World) FindWithTag(tag string) (types.Body, bool) {
	found := w.WithTag(tag)
	if len(found) == 0 {
		return types.Body{}, false
	}
	return found[0], true
}

// WithTag returns every body carrying tag, ordered by id.
func (w *World) WithTag(tag string) []types.Body {
	var out []types.Body
	for _, b := range w.bodies {
		if b.Tag == tag {
			out = append(out, *b)
		}
	}
	sortBodies(out)
	return out
}

// Overlap returns every body within radius of center (inclusive), ordered
// by id.
func (w *World) Overlap(center types.Vec3, radius float64) []types.Body {
	var out []types.Body
	for _, b := range w.bodies {
		if Distance(center, b.Position) <= radius {
			out = append(out, *b)
		}
	}
	sortBodies(out)
	return out
}

// Damage forwards damage to the OnDamage function, if any.
func (w *World) Damage(bodyID string, amount int) {
	if _, ok := w.bodies[bodyID]; !ok {
		w.logger.Debug("damage to missing body dropped", "id", bodyID, "amount", amount)
		return
	}
	if w.onDamage != nil {
		w.onDamage(bodyID, amount)
	}
}

// Bodies returns every body, ordered by id.
func (w *World) Bodies() []types.Body {
	out := make([]types.Body, 0, len(w.bodies))
	for _, b := range w.bodies {
		out = append(out, *b)
	}
	sortBodies(out)
	return out
}

// Distance is the euclidean distance between a and b.
func Distance(a, b types.Vec3) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func sortBodies(bs []types.Body) {
	sort.Slice(bs, func(i, j int) bool { return bs[i].ID < bs[j].ID })
}
