package actor

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nathoo/raidcore/engine/sched"
	"github.com/nathoo/raidcore/engine/table"
	"github.com/nathoo/raidcore/types"
	"github.com/nathoo/raidcore/world"
)

// Bullet row defaults.
const (
	DefaultBulletID       = 6912
	DefaultHazardRadius   = 1.9
	DefaultHazardLifetime = 5 * time.Second
)

// Hazard is a bouncing projectile that hurts the player on contact. It hits
// once per overlap: after a hit it re-arms only when the player has left its
// radius.
type Hazard struct {
	id       string
	bulletID int
	position types.Vec3
	radius   float64
	damage   int
	tag      string

	world   World
	logger  *slog.Logger
	expiry  *sched.Handle
	inside  bool
	expired bool
	hits    int
}

// HazardConfig describes one hazard spawn.
type HazardConfig struct {
	ID       string
	BulletID int
	Position types.Vec3
	// TargetTag is the tag that takes damage. Defaults to "Player".
	TargetTag string
	// Lifetime overrides the bullet row's lifetime when positive.
	Lifetime time.Duration
}

// NewHazard reads damage, radius and lifetime from the bullet row, places
// the hazard body in the world and schedules its expiry.
func NewHazard(cfg HazardConfig, tbl table.Source, w World, s *sched.Scheduler, logger *slog.Logger) (*Hazard, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	tag := cfg.TargetTag
	if tag == "" {
		tag = world.TagPlayer
	}
	h := &Hazard{
		id:       cfg.ID,
		bulletID: cfg.BulletID,
		position: cfg.Position,
		radius:   table.Float(tbl, cfg.BulletID, "radius", DefaultHazardRadius),
		damage:   table.Int(tbl, cfg.BulletID, "damage", 0),
		tag:      tag,
		world:    w,
		logger:   logger.With("hazard", cfg.ID),
	}
	if err := w.Add(types.Body{ID: cfg.ID, Tag: world.TagHazard, Position: cfg.Position}); err != nil {
		return nil, fmt.Errorf("spawning hazard: %w", err)
	}
	lifetime := cfg.Lifetime
	if lifetime <= 0 {
		lifetime = seconds(table.Float(tbl, cfg.BulletID, "lifetime", DefaultHazardLifetime.Seconds()))
	}
	h.expiry = s.After(lifetime, "expire "+cfg.ID, h.Expire)
	return h, nil
}

// Tick checks the overlap and deals damage on entry. It reports whether a
// hit landed this tick.
func (h *Hazard) Tick() bool {
	if h.expired {
		return false
	}
	var victim *types.Body
	for _, b := range h.world.Overlap(h.position, h.radius) {
		if b.Tag == h.tag {
			victim = &b
			break
		}
	}
	if victim == nil {
		h.inside = false
		return false
	}
	if h.inside {
		return false
	}
	h.inside = true
	h.hits++
	h.logger.Debug("hazard hit", "target", victim.ID, "damage", h.damage)
	h.world.Damage(victim.ID, h.damage)
	return true
}

// Expire removes the hazard from the world. It is safe to call twice.
func (h *Hazard) Expire() {
	if h.expired {
		return
	}
	h.expired = true
	h.expiry.Cancel()
	h.world.Remove(h.id)
}

// ID returns the hazard body id.
func (h *Hazard) ID() string { return h.id }

// BulletID returns the bullet row the hazard was built from.
func (h *Hazard) BulletID() int { return h.bulletID }

// ExpiresAt returns the simulation time the hazard leaves the world.
func (h *Hazard) ExpiresAt() time.Duration { return h.expiry.ResumeAt() }

// Position returns where the hazard sits.
func (h *Hazard) Position() types.Vec3 { return h.position }

// Radius returns the damage radius.
func (h *Hazard) Radius() float64 { return h.radius }

// Damage returns the damage per hit.
func (h *Hazard) Damage() int { return h.damage }

// Hits returns how many hits the hazard has landed.
func (h *Hazard) Hits() int { return h.hits }

// Expired reports whether the hazard has left the world.
func (h *Hazard) Expired() bool { return h.expired }

func (a *Actor) spawnHazard(bulletID int, pos types.Vec3) {
	a.spawned++
	h, err := NewHazard(HazardConfig{
		ID:        fmt.Sprintf("hazard-%d-%d", a.bossID, a.spawned),
		BulletID:  bulletID,
		Position:  pos,
		TargetTag: a.targetTag,
	}, a.tbl, a.world, a.sched, a.logger)
	if err != nil {
		a.logger.Warn("hazard not spawned", "error", err)
		return
	}
	a.hazards = append(a.hazards, h)
}
