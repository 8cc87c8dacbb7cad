package actor

import "github.com/nathoo/raidcore/types"

// State is one behavior of an actor. ChangeState calls Exit on the old
// state, then Enter and Update on the new one; Tick calls Update.
type State interface {
	Name() string
	Enter(a *Actor)
	Update(a *Actor)
	Exit(a *Actor)
}

// idleState waits out the boss's idle time, then starts the next attack
// from the pattern pool.
type idleState struct{}

func (idleState) Name() string { return "Idle" }

func (idleState) Enter(a *Actor) {
	a.logger.Debug("idle", "idle_time", a.idleTime)
}

func (idleState) Update(a *Actor) {
	if !a.HasTarget() || !a.waited(a.idleTime) {
		return
	}
	slot := a.NextPattern()
	if slot < 0 {
		return
	}
	if err := a.ChangeState(a.slots[slot]); err != nil {
		a.logger.Warn("attack not started", "slot", slot, "error", err)
	}
}

func (idleState) Exit(*Actor) {}

// dieState announces the kill and schedules the despawn. It never exits.
type dieState struct{}

func (dieState) Name() string { return "Die" }

func (dieState) Enter(a *Actor) {
	a.logger.Info("boss defeated", "boss", a.bossID)
	a.publish(types.Event{Code: types.ConditionBossKill, Key: a.bossID})
	a.Dead()
}

func (dieState) Update(*Actor) {}

func (dieState) Exit(*Actor) {}
