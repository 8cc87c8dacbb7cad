package actor

import (
	"slices"
	"testing"
	"time"

	"github.com/nathoo/raidcore/types"
	"github.com/nathoo/raidcore/world"
)

func totalHits(hs []*Hazard) int {
	n := 0
	for _, h := range hs {
		n += h.Hits()
	}
	return n
}

func TestSnapshot_RestoreMidAttack(t *testing.T) {
	env := newEnv(t, true)
	a := spawn(t, env.options())
	if err := a.ChangeState(a.Slot(SlotVolley)); err != nil {
		t.Fatal(err)
	}
	env.sched.Advance(500 * time.Millisecond)
	a.Tick(500 * time.Millisecond)

	snap := a.Snapshot()
	if snap.State != SavedAttack || snap.Slot != SlotVolley {
		t.Fatalf("saved state = %s slot %d", snap.State, snap.Slot)
	}
	if snap.Elapsed != 500*time.Millisecond || !snap.Ticked {
		t.Errorf("saved elapsed = %s ticked %v", snap.Elapsed, snap.Ticked)
	}
	if len(snap.Hazards) != 3 || snap.Hazards[0].Remaining != 1500*time.Millisecond {
		t.Fatalf("saved hazards = %+v", snap.Hazards)
	}

	other := newEnv(t, true)
	other.sched.SetNow(env.sched.Now())
	b := spawn(t, other.options())
	encounters := other.bus.count(types.ConditionBossEncounter)
	if err := b.Restore(snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if b.Current() != b.Slot(SlotVolley) || b.Elapsed() != a.Elapsed() {
		t.Errorf("restored state = %s at %s", b.Current().Name(), b.Elapsed())
	}
	if !slices.Equal(b.Pool(), a.Pool()) {
		t.Errorf("restored pool = %v, want %v", b.Pool(), a.Pool())
	}
	if got := len(other.world.WithTag(world.TagHazard)); got != 3 {
		t.Errorf("hazard bodies = %d, want 3", got)
	}
	if got := other.bus.count(types.ConditionBossEncounter); got != encounters {
		t.Errorf("restore raised encounter events: %d -> %d", encounters, got)
	}

	for _, step := range []time.Duration{500 * time.Millisecond, time.Second} {
		env.sched.Advance(step)
		a.Tick(step)
		other.sched.Advance(step)
		b.Tick(step)
		if a.Current().Name() != b.Current().Name() {
			t.Fatalf("diverged: %s vs %s", a.Current().Name(), b.Current().Name())
		}
		if len(a.Hazards()) != len(b.Hazards()) || totalHits(a.Hazards()) != totalHits(b.Hazards()) {
			t.Fatalf("hazards diverged: %d/%d vs %d/%d", len(a.Hazards()), totalHits(a.Hazards()),
				len(b.Hazards()), totalHits(b.Hazards()))
		}
	}
	if b.Current() != b.IdleState() {
		t.Errorf("expected Idle after the volley, got %s", b.Current().Name())
	}
	if got := len(other.world.WithTag(world.TagHazard)); got != 0 {
		t.Errorf("restored hazards did not expire: %d", got)
	}
}

func TestSnapshot_RestoreDying(t *testing.T) {
	env := newEnv(t, true)
	a := spawn(t, env.options())
	a.OnDamage(500)
	env.sched.Advance(2 * time.Second)

	snap := a.Snapshot()
	if snap.State != SavedDie || snap.DespawnIn != time.Second || snap.HP != 0 {
		t.Fatalf("saved = %+v", snap)
	}

	other := newEnv(t, true)
	b := spawn(t, other.options())
	if err := b.Restore(snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if b.Current() != b.DieState() || !b.Dying() {
		t.Fatalf("restored state = %s dying %v", b.Current().Name(), b.Dying())
	}
	if got := other.bus.count(types.ConditionBossKill); got != 0 {
		t.Errorf("restore raised kill events: %d", got)
	}
	if hp := b.OnDamage(10); hp != 0 {
		t.Errorf("damage after restore = %d", hp)
	}

	other.sched.Advance(900 * time.Millisecond)
	if _, ok := other.world.Get(b.BodyID()); !ok {
		t.Fatal("body removed before the saved despawn delay")
	}
	other.sched.Advance(100 * time.Millisecond)
	if !b.Despawned() {
		t.Error("boss not despawned after the saved delay")
	}

	gone := b.Snapshot()
	last := newEnv(t, true)
	c := spawn(t, last.options())
	if err := c.Restore(gone); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if _, ok := last.world.Get(c.BodyID()); ok || !c.Despawned() {
		t.Error("despawned boss restored into the world")
	}
}

func TestSnapshot_RestoreErrors(t *testing.T) {
	env := newEnv(t, true)
	a := spawn(t, env.options())

	if err := New(env.options()).Restore(a.Snapshot()); err == nil {
		t.Error("expected error before initialize")
	}
	bad := a.Snapshot()
	bad.State, bad.Slot = SavedAttack, 42
	if err := a.Restore(bad); err == nil {
		t.Error("expected error for unusable slot")
	}
	bad = a.Snapshot()
	bad.State = "dancing"
	if err := a.Restore(bad); err == nil {
		t.Error("expected error for unknown state")
	}
	bad = a.Snapshot()
	bad.Pool = []int{42}
	if err := a.Restore(bad); err == nil {
		t.Error("expected error for unusable pool slot")
	}
}
