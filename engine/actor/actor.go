// Package actor runs a boss's behavior state machine: Idle, Die, and a
// table of attack states drawn in randomized non-repeating rounds.
package actor

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/d20"
	"github.com/nathoo/raidcore/engine/rng"
	"github.com/nathoo/raidcore/engine/sched"
	"github.com/nathoo/raidcore/engine/table"
	"github.com/nathoo/raidcore/types"
	"github.com/nathoo/raidcore/world"
)

// Boss row defaults.
const (
	DefaultSlots        = 10
	DefaultPatternCount = 3
	DefaultIdleTime     = 2 * time.Second
	DefaultAC           = 10
	// DespawnDelay is how long a defeated boss stays in the world.
	DespawnDelay = 3 * time.Second
)

var (
	// ErrTerminal is returned by ChangeState once the actor is in Die.
	ErrTerminal = errors.New("actor is dead")
	// ErrIllegalTransition is returned when an attack is entered from a
	// state other than Idle or another attack.
	ErrIllegalTransition = errors.New("illegal state transition")
)

// World is the spatial collaborator an actor queries and mutates.
type World interface {
	FindWithTag(tag string) (types.Body, bool)
	Overlap(center types.Vec3, radius float64) []types.Body
	Damage(bodyID string, amount int)
	Add(b types.Body) error
	Move(id string, pos types.Vec3) error
	Remove(id string) bool
}

// Publisher receives the events an actor raises.
type Publisher interface {
	Publish(e types.Event)
}

// Options wires an actor to its collaborators. Table, World, Scheduler and
// RNG are required.
type Options struct {
	Table     table.Source
	World     World
	Bus       Publisher
	Scheduler *sched.Scheduler
	RNG       *rng.RNG
	Registry  *Registry
	Logger    *slog.Logger

	// Position is where the boss body spawns.
	Position types.Vec3
	// TargetTag names the body the boss hunts. Defaults to "Player".
	TargetTag string

	// Idle and Die replace the built-in states when set.
	Idle State
	Die  State

	// OnDespawn runs after the boss body leaves the world.
	OnDespawn func(a *Actor)
}

// Actor is one boss instance.
type Actor struct {
	id     string
	bossID int
	bodyID string

	tbl      table.Source
	world    World
	bus      Publisher
	sched    *sched.Scheduler
	rng      *rng.RNG
	registry *Registry
	logger   *slog.Logger

	health   *d20.Actor
	position types.Vec3
	yaw      float64

	targetTag   string
	target      types.Body
	hasTarget   bool
	encountered bool

	idle    State
	die     State
	current State
	slots   []State
	elapsed time.Duration
	ticked  bool

	pool         []int
	patternCount int
	idleTime     time.Duration
	attackBase   int

	hazards   []*Hazard
	spawned   int
	dying     bool
	despawned bool
	despawn   *sched.Handle
	onDespawn func(a *Actor)
}

// New creates an uninitialized actor.
func New(opts Options) *Actor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	reg := opts.Registry
	if reg == nil {
		reg = Default()
	}
	tag := opts.TargetTag
	if tag == "" {
		tag = world.TagPlayer
	}
	id := uuid.NewString()
	return &Actor{
		id:        id,
		tbl:       opts.Table,
		world:     opts.World,
		bus:       opts.Bus,
		sched:     opts.Scheduler,
		rng:       opts.RNG,
		registry:  reg,
		logger:    logger.With("actor", id),
		position:  opts.Position,
		targetTag: tag,
		idle:      opts.Idle,
		die:       opts.Die,
		onDespawn: opts.OnDespawn,
	}
}

// Initialize reads the boss row, builds health and states, resolves the
// target, enters Idle and draws the first pattern round.
func (a *Actor) Initialize(bossID int) error {
	if a.current != nil {
		return fmt.Errorf("actor %s already initialized", a.id)
	}
	if a.tbl == nil || a.world == nil || a.sched == nil || a.rng == nil {
		return fmt.Errorf("actor %s: table, world, scheduler and rng are required", a.id)
	}
	if _, ok := a.tbl.Value(bossID, "health"); !ok {
		return fmt.Errorf("boss %d: no health in data table", bossID)
	}

	a.bossID = bossID
	a.logger = a.logger.With("boss", bossID)

	hp := table.Int(a.tbl, bossID, "health", 0)
	health, err := d20.NewActor(a.id).
		WithHP(hp).
		WithAC(table.Int(a.tbl, bossID, "ac", DefaultAC)).
		Build()
	if err != nil {
		return fmt.Errorf("boss %d: building health: %w", bossID, err)
	}
	a.health = health

	a.patternCount = table.Int(a.tbl, bossID, "pattern_count", DefaultPatternCount)
	a.idleTime = seconds(table.Float(a.tbl, bossID, "idle_time", DefaultIdleTime.Seconds()))
	a.attackBase = table.Int(a.tbl, bossID, "attack_base", bossID+100)

	a.bodyID = fmt.Sprintf("boss-%d", bossID)
	if err := a.world.Add(types.Body{ID: a.bodyID, Tag: world.TagBoss, Position: a.position}); err != nil {
		return fmt.Errorf("boss %d: spawning body: %w", bossID, err)
	}

	a.resolveTarget()

	if a.idle == nil {
		a.idle = idleState{}
	}
	if a.die == nil {
		a.die = dieState{}
	}

	n := table.Int(a.tbl, bossID, "slots", DefaultSlots)
	a.slots = make([]State, n)
	for slot := range a.slots {
		st, ok := a.registry.Build(slot, bossID, a)
		if !ok {
			a.logger.Warn("no attack registered for slot", "slot", slot)
			continue
		}
		a.slots[slot] = st
	}

	a.current = a.idle
	a.elapsed = 0
	a.ticked = false
	a.current.Enter(a)
	a.current.Update(a)

	a.ChoosePatternPool(a.patternCount)

	a.logger.Info("boss initialized", "hp", hp, "usable_slots", len(a.usableSlots()),
		"pattern_count", a.patternCount)
	return nil
}

// ChangeState leaves the current state and enters next. Die is terminal,
// and attacks may only be entered from Idle or another attack.
func (a *Actor) ChangeState(next State) error {
	if next == nil {
		return fmt.Errorf("change state: nil state")
	}
	if a.current != nil && a.current == a.die {
		a.logger.Warn("state change after death ignored", "next", next.Name())
		return ErrTerminal
	}
	if a.isAttack(next) && a.current != a.idle && !a.isAttack(a.current) {
		return fmt.Errorf("%s -> %s: %w", stateName(a.current), next.Name(), ErrIllegalTransition)
	}

	if a.current != nil {
		a.current.Exit(a)
	}
	a.logger.Debug("state change", "from", stateName(a.current), "to", next.Name())
	a.current = next
	a.elapsed = 0
	a.ticked = false
	next.Enter(a)
	next.Update(a)
	return nil
}

// ChoosePatternPool draws count distinct usable slots for the next round.
// count is clamped to the number of usable slots.
func (a *Actor) ChoosePatternPool(count int) []int {
	a.pool = a.rng.Sample(a.usableSlots(), count)
	a.logger.Debug("pattern pool", "pool", a.pool)
	return a.Pool()
}

// NextPattern pops the next slot from the pool, drawing a new round when
// the pool is empty. It returns -1 if no slot is usable.
func (a *Actor) NextPattern() int {
	if len(a.pool) == 0 {
		a.ChoosePatternPool(a.patternCount)
	}
	if len(a.pool) == 0 {
		return -1
	}
	slot := a.pool[0]
	a.pool = a.pool[1:]
	return slot
}

// Tick advances the actor by dt: re-resolve the target, face it, run the
// current state's Update and then the live hazards. Without a target the
// actor keeps its facing; Idle waits for a target before drawing the next
// attack.
func (a *Actor) Tick(dt time.Duration) {
	if a.current == nil || a.despawned {
		return
	}
	a.resolveTarget()
	if a.hasTarget {
		aim := types.Vec3{X: a.target.Position.X, Y: a.position.Y, Z: a.target.Position.Z}
		if yaw, ok := LookAt(a.position, aim); ok {
			a.yaw = yaw
		}
	}

	if dt > 0 {
		a.elapsed += dt
		a.ticked = true
	}
	a.current.Update(a)
	a.tickHazards()
}

// OnDamage applies amount to the boss's health. Reaching zero moves the
// actor to Die. It returns the remaining health.
func (a *Actor) OnDamage(amount int) int {
	if a.health == nil || a.dying || a.current == a.die {
		return 0
	}
	if amount < 0 {
		amount = 0
	}
	remaining := max(0, a.health.HP()-amount)
	if err := a.health.SetHP(remaining); err != nil {
		a.logger.Warn("setting hp", "hp", remaining, "error", err)
	}
	a.logger.Info("boss damaged", "amount", amount, "hp", remaining)
	if remaining == 0 {
		if err := a.ChangeState(a.die); err != nil {
			a.logger.Error("entering die", "error", err)
		}
	}
	return remaining
}

// Dead schedules the despawn. Calling it again has no effect.
func (a *Actor) Dead() {
	if a.dying {
		return
	}
	a.dying = true
	for _, h := range a.hazards {
		h.Expire()
	}
	a.scheduleDespawn(DespawnDelay)
}

func (a *Actor) scheduleDespawn(delay time.Duration) {
	a.despawn = a.sched.After(delay, "despawn "+a.bodyID, func() {
		a.world.Remove(a.bodyID)
		a.despawned = true
		a.logger.Info("boss despawned")
		if a.onDespawn != nil {
			a.onDespawn(a)
		}
	})
}

// ID returns the instance id.
func (a *Actor) ID() string { return a.id }

// BossID returns the data table id of the boss.
func (a *Actor) BossID() int { return a.bossID }

// BodyID returns the id of the boss body in the world.
func (a *Actor) BodyID() string { return a.bodyID }

// Current returns the current state.
func (a *Actor) Current() State { return a.current }

// IdleState returns the Idle state.
func (a *Actor) IdleState() State { return a.idle }

// DieState returns the Die state.
func (a *Actor) DieState() State { return a.die }

// Slot returns the attack state in slot, or nil.
func (a *Actor) Slot(slot int) State {
	if slot < 0 || slot >= len(a.slots) {
		return nil
	}
	return a.slots[slot]
}

// SlotCount returns the size of the slot table.
func (a *Actor) SlotCount() int { return len(a.slots) }

// Pool returns a copy of the slots left in the current round.
func (a *Actor) Pool() []int {
	out := make([]int, len(a.pool))
	copy(out, a.pool)
	return out
}

// HP returns current health.
func (a *Actor) HP() int {
	if a.health == nil {
		return 0
	}
	return a.health.HP()
}

// MaxHP returns maximum health.
func (a *Actor) MaxHP() int {
	if a.health == nil {
		return 0
	}
	return a.health.MaxHP()
}

// AC returns the armor class an attack roll must meet.
func (a *Actor) AC() int {
	if a.health == nil {
		return DefaultAC
	}
	return a.health.AC()
}

// Position returns the boss position.
func (a *Actor) Position() types.Vec3 { return a.position }

// Yaw returns the facing in radians.
func (a *Actor) Yaw() float64 { return a.yaw }

// Target returns the current target body.
func (a *Actor) Target() (types.Body, bool) { return a.target, a.hasTarget }

// HasTarget reports whether a target is resolved.
func (a *Actor) HasTarget() bool { return a.hasTarget }

// Elapsed returns the time spent in the current state.
func (a *Actor) Elapsed() time.Duration { return a.elapsed }

// Dying reports whether the despawn has been scheduled.
func (a *Actor) Dying() bool { return a.dying }

// Despawned reports whether the boss body has left the world.
func (a *Actor) Despawned() bool { return a.despawned }

// Hazards returns the live hazards.
func (a *Actor) Hazards() []*Hazard {
	out := make([]*Hazard, len(a.hazards))
	copy(out, a.hazards)
	return out
}

// World returns the world the actor lives in.
func (a *Actor) World() World { return a.world }

// Table returns the data table.
func (a *Actor) Table() table.Source { return a.tbl }

// Logger returns the actor's logger.
func (a *Actor) Logger() *slog.Logger { return a.logger }

func (a *Actor) resolveTarget() {
	body, ok := a.world.FindWithTag(a.targetTag)
	if !ok {
		if a.hasTarget {
			a.logger.Debug("target lost", "tag", a.targetTag)
		}
		a.hasTarget = false
		return
	}
	if !a.hasTarget {
		a.logger.Debug("target acquired", "target", body.ID)
	}
	a.target = body
	a.hasTarget = true
	if !a.encountered {
		a.encountered = true
		a.publish(types.Event{Code: types.ConditionBossEncounter, Key: a.bossID})
	}
}

func (a *Actor) publish(e types.Event) {
	if a.bus != nil {
		a.bus.Publish(e)
	}
}

func (a *Actor) usableSlots() []int {
	var out []int
	for i, st := range a.slots {
		if st != nil {
			out = append(out, i)
		}
	}
	return out
}

func (a *Actor) isAttack(s State) bool {
	return s != nil && a.slotOf(s) >= 0
}

// waited reports whether the current state has run for at least d across
// at least one tick.
func (a *Actor) waited(d time.Duration) bool {
	return a.ticked && a.elapsed >= d
}

func (a *Actor) setPosition(p types.Vec3) {
	a.position = p
	if err := a.world.Move(a.bodyID, p); err != nil {
		a.logger.Debug("moving body", "error", err)
	}
}

func (a *Actor) tickHazards() {
	live := a.hazards[:0]
	for _, h := range a.hazards {
		if h.Expired() {
			continue
		}
		h.Tick()
		live = append(live, h)
	}
	for i := len(live); i < len(a.hazards); i++ {
		a.hazards[i] = nil
	}
	a.hazards = live
}

func stateName(s State) string {
	if s == nil {
		return "<none>"
	}
	return s.Name()
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
