package actor

import (
	"fmt"
	"time"

	"github.com/nathoo/raidcore/types"
)

// Saved state names.
const (
	SavedIdle   = "idle"
	SavedAttack = "attack"
	SavedDie    = "die"
)

// Snapshot is the runtime state of an actor that a save must carry for a
// restored encounter to continue exactly where it stopped.
type Snapshot struct {
	HP          int              `json:"hp"`
	State       string           `json:"state"`
	Slot        int              `json:"slot"`
	Elapsed     time.Duration    `json:"elapsed"`
	Ticked      bool             `json:"ticked"`
	Pool        []int            `json:"pool"`
	Position    types.Vec3       `json:"position"`
	Yaw         float64          `json:"yaw"`
	Encountered bool             `json:"encountered"`
	Spawned     int              `json:"spawned"`
	DespawnIn   time.Duration    `json:"despawn_in,omitempty"`
	Despawned   bool             `json:"despawned,omitempty"`
	Hazards     []HazardSnapshot `json:"hazards,omitempty"`
}

// HazardSnapshot is one live hazard.
type HazardSnapshot struct {
	ID        string        `json:"id"`
	BulletID  int           `json:"bullet_id"`
	Position  types.Vec3    `json:"position"`
	Inside    bool          `json:"inside"`
	Hits      int           `json:"hits"`
	Remaining time.Duration `json:"remaining"`
}

// Snapshot captures the actor's current state.
func (a *Actor) Snapshot() Snapshot {
	s := Snapshot{
		HP:          a.HP(),
		State:       SavedIdle,
		Slot:        -1,
		Elapsed:     a.elapsed,
		Ticked:      a.ticked,
		Pool:        a.Pool(),
		Position:    a.position,
		Yaw:         a.yaw,
		Encountered: a.encountered,
		Spawned:     a.spawned,
		Despawned:   a.despawned,
	}
	switch {
	case a.current != nil && a.current == a.die:
		s.State = SavedDie
	case a.isAttack(a.current):
		s.State = SavedAttack
		s.Slot = a.slotOf(a.current)
	}
	now := a.sched.Now()
	if a.despawn.Pending() {
		s.DespawnIn = a.despawn.ResumeAt() - now
	}
	for _, h := range a.hazards {
		if h.Expired() {
			continue
		}
		s.Hazards = append(s.Hazards, HazardSnapshot{
			ID:        h.id,
			BulletID:  h.bulletID,
			Position:  h.position,
			Inside:    h.inside,
			Hits:      h.hits,
			Remaining: h.ExpiresAt() - now,
		})
	}
	return s
}

// Restore puts an initialized actor into the saved state. States are set
// directly: no Enter runs, so attack effects and events are not raised
// again.
func (a *Actor) Restore(s Snapshot) error {
	if a.current == nil {
		return fmt.Errorf("actor %s: restore before initialize", a.id)
	}
	if a.dying {
		return fmt.Errorf("actor %s: restore onto a dying actor", a.id)
	}

	var next State
	switch s.State {
	case SavedIdle, "":
		next = a.idle
	case SavedDie:
		next = a.die
	case SavedAttack:
		next = a.Slot(s.Slot)
		if next == nil {
			return fmt.Errorf("actor %s: saved attack slot %d is not usable", a.id, s.Slot)
		}
	default:
		return fmt.Errorf("actor %s: unknown saved state %q", a.id, s.State)
	}
	for _, slot := range s.Pool {
		if a.Slot(slot) == nil {
			return fmt.Errorf("actor %s: saved pool holds unusable slot %d", a.id, slot)
		}
	}
	if err := a.health.SetHP(s.HP); err != nil {
		return fmt.Errorf("actor %s: restoring hp: %w", a.id, err)
	}

	for _, h := range a.hazards {
		h.Expire()
	}
	a.hazards = nil

	a.current = next
	a.elapsed = s.Elapsed
	a.ticked = s.Ticked
	a.pool = append([]int(nil), s.Pool...)
	a.yaw = s.Yaw
	a.encountered = s.Encountered
	a.spawned = s.Spawned
	a.setPosition(s.Position)

	if next == a.die {
		a.dying = true
		if s.Despawned {
			a.world.Remove(a.bodyID)
			a.despawned = true
		} else {
			a.scheduleDespawn(s.DespawnIn)
		}
	}

	for _, hs := range s.Hazards {
		if hs.Remaining <= 0 {
			continue
		}
		h, err := NewHazard(HazardConfig{
			ID:        hs.ID,
			BulletID:  hs.BulletID,
			Position:  hs.Position,
			TargetTag: a.targetTag,
			Lifetime:  hs.Remaining,
		}, a.tbl, a.world, a.sched, a.logger)
		if err != nil {
			return fmt.Errorf("actor %s: restoring hazard: %w", a.id, err)
		}
		h.inside = hs.Inside
		h.hits = hs.Hits
		a.hazards = append(a.hazards, h)
	}

	a.logger.Info("actor restored", "state", stateName(a.current), "hp", s.HP,
		"pool", a.pool, "hazards", len(a.hazards))
	return nil
}

func (a *Actor) slotOf(s State) int {
	for i, st := range a.slots {
		if st != nil && st == s {
			return i
		}
	}
	return -1
}
