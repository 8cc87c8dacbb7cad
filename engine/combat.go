package engine

import (
	"github.com/nathoo/raidcore/engine/parser"
	"github.com/nathoo/raidcore/engine/rng"
	"github.com/nathoo/raidcore/engine/table"
	"github.com/nathoo/raidcore/types"
	"github.com/nathoo/raidcore/world"
)

// Player attack tuning.
const (
	AttackBonus  = 4
	DamageDie    = 8
	DamageBonus  = 2
	CriticalRoll = 20
	FumbleRoll   = 1
)

// AttackRoll rolls 1d20+bonus against ac. A natural 20 always hits and
// doubles the damage dice; a natural 1 always misses. Damage is
// 1d8+DamageBonus unless fixed is positive.
func AttackRoll(r *rng.RNG, bonus, ac, fixed int) (hit bool, roll, damage int) {
	roll = r.Roll(20)
	switch {
	case roll == FumbleRoll:
		return false, roll, 0
	case roll == CriticalRoll:
		hit = true
	default:
		hit = roll+bonus >= ac
	}
	if !hit {
		return false, roll, 0
	}
	if fixed > 0 {
		return true, roll, fixed
	}
	damage = r.Roll(DamageDie) + DamageBonus
	if roll == CriticalRoll {
		damage += r.Roll(DamageDie)
	}
	return true, roll, damage
}

// cmdHit attacks the boss. An optional argument fixes the damage dealt on
// a hit.
func (e *Engine) cmdHit(intent types.Intent) {
	if e.Boss.Dying() || e.Boss.Despawned() {
		e.say("There is nothing left to hit.")
		return
	}
	fixed := 0
	if len(intent.Args) > 0 {
		n, ok := parser.IntArg(intent, 0)
		if !ok || n <= 0 {
			e.say("Damage must be a positive number.")
			return
		}
		fixed = n
	}

	ac := e.Boss.AC()
	hit, roll, damage := AttackRoll(e.RNG, AttackBonus, ac, fixed)
	if !hit {
		e.say("You miss! Roll: 1d20+%d -> [%d]+%d = %d vs AC %d", AttackBonus, roll, AttackBonus, roll+AttackBonus, ac)
		return
	}
	remaining := e.Boss.OnDamage(damage)
	e.say("You strike the boss! Roll: 1d20+%d -> [%d]+%d = %d vs AC %d -> %d damage (HP %d/%d)",
		AttackBonus, roll, AttackBonus, roll+AttackBonus, ac, damage, remaining, e.Boss.MaxHP())
}

// cmdKill slays a monster. Without an argument it slays the first summoned
// minion, keyed by the boss row's minion_key (default: the boss id).
func (e *Engine) cmdKill(intent types.Intent) {
	minions := e.World.WithTag(world.TagMonster)

	if len(intent.Args) == 0 {
		if len(minions) == 0 {
			e.say("There are no monsters here.")
			return
		}
		e.World.Remove(minions[0].ID)
		key := table.Int(e.Table, e.bossID, "minion_key", e.bossID)
		e.say("You slay %s.", minions[0].ID)
		e.Bus.Publish(types.Event{Code: types.ConditionMonsterKill, Key: key})
		return
	}

	key, ok := parser.IntArg(intent, 0)
	if !ok {
		e.say("Kill what? (monster key)")
		return
	}
	e.say("You slay monster %d.", key)
	e.Bus.Publish(types.Event{Code: types.ConditionMonsterKill, Key: key})
}
