package actor

import (
	"fmt"
	"math"
	"time"

	"github.com/nathoo/raidcore/engine/table"
	"github.com/nathoo/raidcore/types"
	"github.com/nathoo/raidcore/world"
)

// Built-in attack slots.
const (
	SlotSlam = iota
	SlotVolley
	SlotCharge
	SlotQuake
	SlotSummon
	SlotBarrage
)

// attack is a timed attack state. The effect fires once on entry; the state
// returns to Idle after its duration.
type attack struct {
	name     string
	slot     int
	row      int
	damage   int
	duration time.Duration
	reach    float64
	effect   func(a *Actor, at *attack)
	uses     int
}

type attackDefaults struct {
	damage   int
	duration time.Duration
	reach    float64
}

func newAttack(a *Actor, slot int, name string, def attackDefaults, effect func(*Actor, *attack)) *attack {
	row := a.attackBase + slot
	return &attack{
		name:     name,
		slot:     slot,
		row:      row,
		damage:   table.Int(a.tbl, row, "damage", def.damage),
		duration: seconds(table.Float(a.tbl, row, "duration", def.duration.Seconds())),
		reach:    table.Float(a.tbl, row, "range", def.reach),
		effect:   effect,
	}
}

func (at *attack) Name() string { return fmt.Sprintf("Attack_%d(%s)", at.slot, at.name) }

func (at *attack) Enter(a *Actor) {
	at.uses++
	a.logger.Info("attack", "slot", at.slot, "name", at.name, "damage", at.damage)
	if at.effect != nil {
		at.effect(a, at)
	}
}

func (at *attack) Update(a *Actor) {
	if !a.waited(at.duration) {
		return
	}
	if err := a.ChangeState(a.idle); err != nil {
		a.logger.Warn("returning to idle", "slot", at.slot, "error", err)
	}
}

func (at *attack) Exit(*Actor) {}

func newSlam(_ int, a *Actor) State {
	return newAttack(a, SlotSlam, "Slam", attackDefaults{damage: 12, duration: time.Second, reach: 3},
		func(a *Actor, at *attack) {
			strike(a, a.position, at.reach, at.damage)
		})
}

// Volley lobs bouncing bullets in a line across the target.
func newVolley(_ int, a *Actor) State {
	return newAttack(a, SlotVolley, "Volley", attackDefaults{duration: 2 * time.Second},
		func(a *Actor, at *attack) {
			n := table.Int(a.tbl, at.row, "bullets", 3)
			bullet := table.Int(a.tbl, at.row, "bullet", DefaultBulletID)
			spacing := table.Float(a.tbl, at.row, "spacing", 1.5)
			center := a.target.Position
			for i := 0; i < n; i++ {
				offset := (float64(i) - float64(n-1)/2) * spacing
				a.spawnHazard(bullet, types.Vec3{X: center.X + offset, Y: center.Y, Z: center.Z})
			}
		})
}

// Charge closes distance toward the target, then strikes at short range.
func newCharge(_ int, a *Actor) State {
	return newAttack(a, SlotCharge, "Charge", attackDefaults{damage: 18, duration: 1500 * time.Millisecond, reach: 2},
		func(a *Actor, at *attack) {
			dist := table.Float(a.tbl, at.row, "distance", 4)
			a.setPosition(horizontalStep(a.position, a.target.Position, dist))
			strike(a, a.position, at.reach, at.damage)
		})
}

func newQuake(_ int, a *Actor) State {
	return newAttack(a, SlotQuake, "Quake", attackDefaults{damage: 8, duration: 2500 * time.Millisecond, reach: 6},
		func(a *Actor, at *attack) {
			strike(a, a.position, at.reach, at.damage)
		})
}

// Summon calls minions around the boss. Minions carry the Monster tag.
func newSummon(bossID int, a *Actor) State {
	return newAttack(a, SlotSummon, "Summon", attackDefaults{duration: 3 * time.Second},
		func(a *Actor, at *attack) {
			n := table.Int(a.tbl, at.row, "count", 2)
			for i := 0; i < n; i++ {
				a.spawned++
				pos := types.Vec3{X: a.position.X + float64(2*i-n+1), Y: a.position.Y, Z: a.position.Z - 2}
				body := types.Body{ID: fmt.Sprintf("minion-%d-%d", bossID, a.spawned), Tag: world.TagMonster, Position: pos}
				if err := a.world.Add(body); err != nil {
					a.logger.Warn("minion not summoned", "error", err)
				}
			}
		})
}

// Barrage rings the boss with bullets.
func newBarrage(_ int, a *Actor) State {
	return newAttack(a, SlotBarrage, "Barrage", attackDefaults{duration: 2 * time.Second},
		func(a *Actor, at *attack) {
			n := table.Int(a.tbl, at.row, "bullets", 4)
			bullet := table.Int(a.tbl, at.row, "bullet", DefaultBulletID)
			spread := table.Float(a.tbl, at.row, "spread", 3)
			for i := 0; i < n; i++ {
				dir := Forward(a.yaw + 2*math.Pi*float64(i)/float64(n))
				a.spawnHazard(bullet, types.Vec3{
					X: a.position.X + dir.X*spread,
					Y: a.position.Y,
					Z: a.position.Z + dir.Z*spread,
				})
			}
		})
}

// strike damages every target-tagged body within reach of center and
// returns how many were hit.
func strike(a *Actor, center types.Vec3, reach float64, damage int) int {
	hits := 0
	for _, b := range a.world.Overlap(center, reach) {
		if b.Tag != a.targetTag {
			continue
		}
		a.world.Damage(b.ID, damage)
		hits++
	}
	return hits
}
