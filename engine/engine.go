// Package engine provides the Step() orchestrator that wires together
// parsing, the event bus, the boss state machine, quest tracking, the
// inventory and the world into a single command.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/d20"

	"github.com/nathoo/raidcore/engine/actor"
	"github.com/nathoo/raidcore/engine/bus"
	"github.com/nathoo/raidcore/engine/dialogue"
	"github.com/nathoo/raidcore/engine/parser"
	"github.com/nathoo/raidcore/engine/quest"
	"github.com/nathoo/raidcore/engine/rng"
	"github.com/nathoo/raidcore/engine/save"
	"github.com/nathoo/raidcore/engine/sched"
	"github.com/nathoo/raidcore/engine/table"
	"github.com/nathoo/raidcore/inventory"
	"github.com/nathoo/raidcore/profile"
	"github.com/nathoo/raidcore/types"
	"github.com/nathoo/raidcore/world"
)

// Player defaults.
const (
	PlayerBodyID     = "player"
	DefaultPlayerHP  = 100
	DefaultPlayerAC  = 12
	DefaultTickSpan  = time.Second
	TickStep         = sched.DefaultPollInterval
	MaxTickSpan      = time.Minute
	DefaultItemStack = 99
)

// Options configures a new Engine. Table is required.
type Options struct {
	Table    *table.Table
	BossID   int
	Seed     int64
	Capacity int
	Policy   inventory.CountPolicy

	PlayerHP       int
	PlayerAC       int
	PlayerPosition types.Vec3
	BossPosition   types.Vec3

	// Profile receives a clear record for each boss kill and completed
	// objective. It may be nil.
	Profile *profile.Profile
	Logger  *slog.Logger
}

// Engine owns every runtime component of one encounter.
type Engine struct {
	Table     *table.Table
	Bus       *bus.Bus
	Sched     *sched.Scheduler
	RNG       *rng.RNG
	World     *world.World
	Inventory *inventory.Inventory
	Quests    *quest.Tracker
	NPCs      *dialogue.Registry
	Boss      *actor.Actor
	Player    *d20.Actor
	Profile   *profile.Profile

	CommandLog []string

	bossID   int
	gameOver bool
	logger   *slog.Logger

	// Per-step buffers filled by bus and world callbacks. What setup
	// raises stays buffered until the first step reports it.
	stepped bool
	events  []types.Event
	out     []string
	clears  []string
}

// New builds an engine, spawns the player, NPCs and boss, and loads every
// objective from the table.
func New(opts Options) (*Engine, error) {
	if opts.Table == nil {
		return nil, fmt.Errorf("engine: data table is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Capacity <= 0 {
		opts.Capacity = inventory.DefaultCapacity
	}
	if opts.PlayerHP <= 0 {
		opts.PlayerHP = DefaultPlayerHP
	}
	if opts.PlayerAC <= 0 {
		opts.PlayerAC = DefaultPlayerAC
	}
	if opts.PlayerPosition == (types.Vec3{}) {
		opts.PlayerPosition = types.Vec3{Z: 6}
	}

	e := &Engine{
		Table:   opts.Table,
		Bus:     bus.New(logger),
		Sched:   sched.New(logger),
		RNG:     rng.New(opts.Seed),
		World:   world.New(logger),
		Profile: opts.Profile,
		bossID:  opts.BossID,
		logger:  logger,
	}
	e.Inventory = inventory.New(opts.Capacity, opts.Policy, logger)

	player, err := d20.NewActor(PlayerBodyID).
		WithHP(opts.PlayerHP).
		WithAC(opts.PlayerAC).
		Build()
	if err != nil {
		return nil, fmt.Errorf("engine: building player: %w", err)
	}
	e.Player = player
	if err := e.World.Add(types.Body{ID: PlayerBodyID, Tag: world.TagPlayer, Position: opts.PlayerPosition}); err != nil {
		return nil, fmt.Errorf("engine: spawning player: %w", err)
	}
	e.World.OnDamage(e.onWorldDamage)

	// The recorder subscribes first so Result.Events keeps publish order.
	e.Bus.Subscribe(types.ConditionDataReady, e.record)
	for _, code := range types.GameplayConditions {
		e.Bus.Subscribe(code, e.record)
	}

	e.Quests = quest.NewTracker(e.Inventory, logger)
	e.Quests.Attach(e.Bus)
	e.Quests.OnComplete(e.onObjectiveComplete)
	if _, err := e.Quests.LoadFromTable(e.Table); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	e.NPCs = dialogue.NewRegistry(e.Bus, logger)
	e.NPCs.Load(e.Table)
	for _, npc := range e.NPCs.All() {
		body := types.Body{ID: fmt.Sprintf("npc-%d", npc.ID), Tag: world.TagNPC, Position: npc.Position}
		if err := e.World.Add(body); err != nil {
			return nil, fmt.Errorf("engine: spawning npc %d: %w", npc.ID, err)
		}
	}

	e.Bus.Subscribe(types.ConditionBossEncounter, e.onBossEncounter)
	e.Bus.Subscribe(types.ConditionBossKill, e.onBossKill)

	e.Boss = actor.New(actor.Options{
		Table:     e.Table,
		World:     e.World,
		Bus:       e.Bus,
		Scheduler: e.Sched,
		RNG:       e.RNG,
		Logger:    logger,
		Position:  opts.BossPosition,
		OnDespawn: func(*actor.Actor) { e.say("The boss fades away.") },
	})
	if err := e.Boss.Initialize(opts.BossID); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	// Initial DataReady unlocks objectives whose prerequisites are met.
	e.Bus.Publish(types.Event{Code: types.ConditionDataReady})
	return e, nil
}

// Step processes one command and returns the result.
func (e *Engine) Step(input string) types.Result {
	return e.StepContext(context.Background(), input)
}

// StepContext is Step with a context for profile writes.
func (e *Engine) StepContext(ctx context.Context, input string) types.Result {
	if e.stepped {
		e.resetStep()
	}
	e.stepped = true

	// 0. Game over: block all gameplay commands.
	if e.gameOver {
		e.say("Game over. Use /load to restore a save or /quit to exit.")
		e.flushClears(ctx)
		return e.result()
	}

	// 1. Parse input.
	intent := parser.Parse(input)

	// 2. Log the command.
	e.CommandLog = append(e.CommandLog, input)

	// 3. Empty input.
	if intent.Verb == "" {
		e.say("What do you want to do?")
		e.flushClears(ctx)
		return e.result()
	}

	// 4. Run the verb. Bus and world callbacks append events and output.
	e.dispatch(intent)

	// 5. Write clear records queued by the callbacks.
	e.flushClears(ctx)

	return e.result()
}

// GameOver reports whether the player has fallen.
func (e *Engine) GameOver() bool { return e.gameOver }

// BossID returns the encounter's boss id.
func (e *Engine) BossID() int { return e.bossID }

// Snapshot captures the state a save file needs.
func (e *Engine) Snapshot() *save.SaveData {
	sd := &save.SaveData{
		Boss:        e.bossID,
		Encounter:   e.Boss.Snapshot(),
		Clock:       e.Sched.Now(),
		PlayerHP:    e.Player.HP(),
		Minions:     e.World.WithTag(world.TagMonster),
		Capacity:    e.Inventory.Capacity(),
		Objectives:  save.CaptureObjectives(e.Quests.Objectives()),
		Inventory:   save.CaptureInventory(e.Inventory.Slots()),
		Spoken:      e.NPCs.Spoken(),
		RNGSeed:     e.RNG.Seed(),
		RNGPosition: e.RNG.Position(),
		CommandLog:  append([]string(nil), e.CommandLog...),
	}
	if b, ok := e.World.Get(PlayerBodyID); ok {
		sd.PlayerPosition = b.Position
	}
	return sd
}

// Restore applies sd onto a freshly built engine for the same boss. The
// encounter resumes at the saved clock with the boss mid-state; nothing
// the boss did before the save is raised again.
func (e *Engine) Restore(sd *save.SaveData) error {
	if sd.Boss != e.bossID {
		return fmt.Errorf("save is for boss %d, engine runs boss %d", sd.Boss, e.bossID)
	}
	slots, err := sd.Slots()
	if err != nil {
		return fmt.Errorf("restoring inventory: %w", err)
	}
	if err := e.Inventory.Restore(slots); err != nil {
		return fmt.Errorf("restoring inventory: %w", err)
	}

	e.Sched.SetNow(sd.Clock)
	if err := e.World.Move(PlayerBodyID, sd.PlayerPosition); err != nil {
		return fmt.Errorf("restoring player position: %w", err)
	}
	if sd.PlayerHP > 0 {
		if err := e.Player.SetHP(sd.PlayerHP); err != nil {
			return fmt.Errorf("restoring player hp: %w", err)
		}
	}
	if err := e.Boss.Restore(sd.Encounter); err != nil {
		return fmt.Errorf("restoring encounter: %w", err)
	}
	for _, b := range e.World.WithTag(world.TagMonster) {
		e.World.Remove(b.ID)
	}
	for _, b := range sd.Minions {
		if err := e.World.Add(b); err != nil {
			return fmt.Errorf("restoring minion: %w", err)
		}
	}

	if err := save.ApplyObjectives(e.Quests, sd.Objectives); err != nil {
		return err
	}
	e.NPCs.MarkSpoken(sd.Spoken)
	e.RNG.Reset(sd.RNGSeed, sd.RNGPosition)
	e.CommandLog = append([]string(nil), sd.CommandLog...)
	e.gameOver = false
	e.resetStep()
	e.logger.Info("save restored", "boss_hp", e.Boss.HP(), "boss_state", e.bossState(),
		"clock", sd.Clock, "objectives", len(sd.Objectives))
	return nil
}

func (e *Engine) dispatch(intent types.Intent) {
	switch intent.Verb {
	case parser.VerbTick:
		e.cmdTick(intent)
	case parser.VerbHit:
		e.cmdHit(intent)
	case parser.VerbKill:
		e.cmdKill(intent)
	case parser.VerbUse:
		e.cmdUse(intent)
	case parser.VerbGive:
		e.cmdGive(intent)
	case parser.VerbCraft:
		e.cmdRaise(intent, types.ConditionCrafting, "You craft item %d.")
	case parser.VerbTouch:
		e.cmdRaise(intent, types.ConditionObjectTouch, "You interact with object %d.")
	case parser.VerbTalk:
		e.cmdTalk(intent)
	case parser.VerbAccept:
		e.cmdAccept(intent)
	case parser.VerbAbandon:
		e.cmdAbandon(intent)
	case parser.VerbQuests:
		e.out = append(e.out, e.describeQuests()...)
	case parser.VerbBoss:
		e.out = append(e.out, e.describeBoss()...)
	case parser.VerbPool:
		e.out = append(e.out, e.describePool()...)
	case parser.VerbInventory:
		e.out = append(e.out, e.describeInventory()...)
	case parser.VerbLook:
		e.out = append(e.out, e.describeWorld()...)
	case parser.VerbMove:
		e.cmdMove(intent)
	default:
		e.say("I don't understand %q.", intent.Verb)
	}
}

func (e *Engine) cmdTick(intent types.Intent) {
	span := DefaultTickSpan
	if len(intent.Args) > 0 {
		secs, ok := parser.FloatArg(intent, 0)
		if !ok || secs <= 0 {
			e.say("Tick how long? (seconds)")
			return
		}
		span = time.Duration(secs * float64(time.Second))
	}
	if span > MaxTickSpan {
		span = MaxTickSpan
	}
	e.advance(span)
	e.say("Time passes. (%s)", e.Sched.Now())
}

// advance steps the scheduler and boss in TickStep slices and reports each
// boss state change.
func (e *Engine) advance(span time.Duration) {
	for span > 0 && !e.gameOver {
		step := min(TickStep, span)
		span -= step

		before := e.bossState()
		e.Sched.Advance(step)
		e.Boss.Tick(step)
		if after := e.bossState(); after != before {
			e.say("Boss: %s -> %s", before, after)
		}
	}
}

func (e *Engine) cmdUse(intent types.Intent) {
	id, ok := parser.IntArg(intent, 0)
	if !ok {
		e.say("Use what? (item id)")
		return
	}
	if e.Inventory.Remove(id, 1) == 0 {
		e.say("You don't have item %d.", id)
		return
	}
	e.say("You use item %d. (%d left)", id, e.Inventory.CountItem(id))
	e.Bus.Publish(types.Event{Code: types.ConditionItemConsume, Key: id})
}

// cmdGive puts items into the inventory and raises ItemGift with the held
// count as payload.
func (e *Engine) cmdGive(intent types.Intent) {
	id, ok := parser.IntArg(intent, 0)
	if !ok {
		e.say("Receive what? (item id [amount])")
		return
	}
	amount := 1
	if n, ok := parser.IntArg(intent, 1); ok {
		amount = n
	}
	if amount <= 0 {
		e.say("Amount must be positive.")
		return
	}
	stack := table.Int(e.Table, id, "max_amount", DefaultItemStack)
	overflow := e.Inventory.Add(id, amount, stack)
	if overflow == amount {
		e.say("Your inventory is full.")
		return
	}
	held := e.Inventory.CountItem(id)
	if overflow > 0 {
		e.say("You receive item %d x%d; %d did not fit. (holding %d)", id, amount-overflow, overflow, held)
	} else {
		e.say("You receive item %d x%d. (holding %d)", id, amount, held)
	}
	e.Bus.Publish(types.Event{Code: types.ConditionItemGift, Key: id, Payload: &held})
}

func (e *Engine) cmdRaise(intent types.Intent, code types.ConditionCode, format string) {
	id, ok := parser.IntArg(intent, 0)
	if !ok {
		e.say("Which one? (id)")
		return
	}
	e.say(format, id)
	e.Bus.Publish(types.Event{Code: code, Key: id})
}

func (e *Engine) cmdTalk(intent types.Intent) {
	id, ok := parser.IntArg(intent, 0)
	if !ok {
		e.say("Talk to whom? (npc id)")
		return
	}
	npc, found := e.NPCs.Get(id)
	if !found {
		e.say("There is no one called %d here.", id)
		return
	}
	lines, _, err := e.NPCs.Talk(id)
	if err != nil {
		e.say("%v", err)
		return
	}
	for _, l := range lines {
		e.say("%s: %s", npc.Name, l)
	}
}

func (e *Engine) cmdAccept(intent types.Intent) {
	id, ok := parser.IntArg(intent, 0)
	if !ok {
		e.say("Accept which objective? (id)")
		return
	}
	if err := e.Quests.Accept(id); err != nil {
		e.say("Cannot accept %d: %v", id, err)
		return
	}
	o, _ := e.Quests.Find(id)
	e.say("Accepted: %s", o.Def.Name)
}

// cmdAbandon removes the objective at a 1-based journal position.
func (e *Engine) cmdAbandon(intent types.Intent) {
	n, ok := parser.IntArg(intent, 0)
	if !ok {
		e.say("Abandon which entry? (journal number)")
		return
	}
	before := e.Quests.Len()
	e.Quests.Remove(n - 1)
	if e.Quests.Len() == before {
		e.say("No journal entry %d.", n)
		return
	}
	e.say("Journal entry %d removed.", n)
}

func (e *Engine) cmdMove(intent types.Intent) {
	x, okX := parser.FloatArg(intent, 0)
	z, okZ := parser.FloatArg(intent, 1)
	if !okX || !okZ {
		e.say("Move where? (x z)")
		return
	}
	if err := e.World.Move(PlayerBodyID, types.Vec3{X: x, Z: z}); err != nil {
		e.say("%v", err)
		return
	}
	e.say("You move to (%.1f, %.1f).", x, z)
}

// record captures every published event for the step result.
func (e *Engine) record(ev types.Event) {
	e.events = append(e.events, ev)
}

func (e *Engine) onBossEncounter(ev types.Event) {
	e.say("Boss %d has noticed you!", ev.Key)
}

func (e *Engine) onBossKill(ev types.Event) {
	e.say("Boss %d is defeated!", ev.Key)
	e.clears = append(e.clears, fmt.Sprintf("boss:%d", ev.Key))
}

func (e *Engine) onObjectiveComplete(o quest.Objective) {
	e.say("Objective complete: %s", o.Def.Name)
	e.clears = append(e.clears, fmt.Sprintf("quest:%d", o.Def.ID))
}

// onWorldDamage routes damage dealt through the world to the player.
func (e *Engine) onWorldDamage(bodyID string, amount int) {
	if bodyID != PlayerBodyID || amount <= 0 || e.gameOver {
		return
	}
	hp := max(0, e.Player.HP()-amount)
	if err := e.Player.SetHP(hp); err != nil {
		e.logger.Warn("setting player hp", "hp", hp, "error", err)
	}
	e.say("You take %d damage. (HP %d/%d)", amount, hp, e.Player.MaxHP())
	if hp == 0 {
		e.gameOver = true
		e.say("You have fallen.")
	}
}

func (e *Engine) flushClears(ctx context.Context) {
	if e.Profile == nil {
		return
	}
	for _, tag := range e.clears {
		if _, err := e.Profile.Append(ctx, tag); err != nil {
			e.logger.Error("recording clear", "tag", tag, "error", err)
			e.say("Could not record clear %s: %v", tag, err)
			continue
		}
		e.say("Clear recorded: %s (total %d)", tag, e.Profile.Count())
	}
}

func (e *Engine) say(format string, args ...any) {
	e.out = append(e.out, fmt.Sprintf(format, args...))
}

func (e *Engine) resetStep() {
	e.events = nil
	e.out = nil
	e.clears = nil
}

func (e *Engine) result() types.Result {
	return types.Result{Events: e.events, Output: e.out}
}

func (e *Engine) bossState() string {
	if e.Boss.Despawned() {
		return "Gone"
	}
	if cur := e.Boss.Current(); cur != nil {
		return cur.Name()
	}
	return "None"
}
