package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/raidcore/engine"
	"github.com/nathoo/raidcore/engine/table"
	"github.com/nathoo/raidcore/types"
)

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		line string
		want lineKind
	}{
		{"[Game saved to test.]", kindSystem},
		{"[trace] Events: 2", kindTrace},
		{"Boss 5001 has noticed you!", kindBoss},
		{"Boss: Idle -> Attack Shotgun", kindBoss},
		{"The boss fades away.", kindBoss},
		{"You take 5 damage. (HP 95/100)", kindDamage},
		{"You have fallen.", kindDamage},
		{"Objective complete: Cull", kindProgress},
		{"Accepted: Ore", kindProgress},
		{"Clear recorded: quest:10000001 (total 1)", kindProgress},
		{`I don't understand "dance".`, kindError},
		{"Cannot accept 3: objective not found", kindError},
		{"Quartermaster: Bring me ore.", kindDialogue},
		{"Slot 1: item 7 x3/20", kindNarrative},
		{"Time passes. (1s)", kindNarrative},
		{"", kindNarrative},
	}
	for _, tt := range tests {
		got := classifyLine(tt.line)
		if got != tt.want {
			t.Errorf("classifyLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestHistory_PrevWalksOlderAndStops(t *testing.T) {
	h := NewHistory(5)
	h.Push("boss")
	h.Push("hit")
	h.Push("tick 2")

	for _, want := range []string{"tick 2", "hit", "boss", "boss"} {
		prev, ok := h.Prev("")
		if !ok || prev != want {
			t.Errorf("Prev = %q (ok=%v), want %q", prev, ok, want)
		}
	}
}

func TestHistory_NextRestoresTypedText(t *testing.T) {
	h := NewHistory(5)
	h.Push("boss")
	h.Push("hit")

	if _, ok := h.Next(); ok {
		t.Error("Next before navigation should not replace the input")
	}
	h.Prev("") // "hit"
	h.Prev("") // "boss"

	if next, ok := h.Next(); !ok || next != "hit" {
		t.Errorf("Next = %q (ok=%v), want hit", next, ok)
	}
	if next, ok := h.Next(); !ok || next != "" {
		t.Errorf("Next past newest = %q (ok=%v), want empty input back", next, ok)
	}
	if h.Navigating() {
		t.Error("still navigating after stepping past the newest entry")
	}
}

func TestHistory_PrefixFiltersRecall(t *testing.T) {
	h := NewHistory(10)
	for _, cmd := range []string{"tick 1", "hit", "talk 9001", "tick 3", "inventory"} {
		h.Push(cmd)
	}

	for _, want := range []string{"tick 3", "tick 1", "tick 1"} {
		if prev, ok := h.Prev("ti"); !ok || prev != want {
			t.Errorf("Prev(ti) = %q (ok=%v), want %q", prev, ok, want)
		}
	}
	if next, _ := h.Next(); next != "tick 3" {
		t.Errorf("Next = %q, want tick 3", next)
	}
	if next, _ := h.Next(); next != "ti" {
		t.Errorf("Next past newest match = %q, want the typed prefix", next)
	}

	if _, ok := h.Prev("zz"); ok {
		t.Error("expected no match for an unknown prefix")
	}
	if h.Navigating() {
		t.Error("navigation started without a match")
	}
}

func TestHistory_EmptyAndLimit(t *testing.T) {
	h := NewHistory(2)
	if _, ok := h.Prev(""); ok {
		t.Error("expected false on empty history")
	}
	if _, ok := h.Next(); ok {
		t.Error("expected false on empty history")
	}

	h.Push("a")
	h.Push("b")
	h.Push("b")
	h.Push("")  // ignored
	h.Push("c") // "a" evicted
	if h.Len() != 2 {
		t.Fatalf("Len = %d, want 2", h.Len())
	}
	if prev, _ := h.Prev(""); prev != "c" {
		t.Errorf("expected c, got %q", prev)
	}
	if prev, _ := h.Prev(""); prev != "b" {
		t.Errorf("expected b, got %q", prev)
	}
	if prev, _ := h.Prev(""); prev != "b" {
		t.Errorf("expected b at the oldest entry, got %q", prev)
	}
}

func TestHistory_RepeatMovesToNewest(t *testing.T) {
	h := NewHistory(5)
	h.Push("hit")
	h.Push("tick 1")
	h.Push("hit")

	if h.Len() != 2 {
		t.Fatalf("Len = %d, want 2", h.Len())
	}
	if prev, _ := h.Prev(""); prev != "hit" {
		t.Errorf("newest = %q, want hit", prev)
	}
	if prev, _ := h.Prev(""); prev != "tick 1" {
		t.Errorf("older = %q, want tick 1", prev)
	}

	h.Reset()
	if prev, ok := h.Prev(""); !ok || prev != "hit" {
		t.Errorf("after Reset Prev = %q, want hit", prev)
	}
}

func testTable() *table.Table {
	tbl := table.New()
	tbl.Put(5001, table.Row{"kind": table.KindBoss, "health": 25, "ac": 10, "slots": 6})
	tbl.Put(10000001, table.Row{"kind": table.KindQuest, "name": "Cull", "condition": 4, "key": 10, "target": 1, "auto_start": true})
	return tbl
}

func newModel(t *testing.T) Model {
	t.Helper()
	factory := func() (*engine.Engine, error) {
		return engine.New(engine.Options{Table: testTable(), BossID: 5001, Seed: 9})
	}
	eng, err := factory()
	if err != nil {
		t.Fatal(err)
	}
	m := New(eng, factory)
	m.saveDir = t.TempDir()
	return m
}

func TestHandleMeta_Quit(t *testing.T) {
	m := newModel(t)

	if _, quit := m.handleMeta("/quit"); !quit {
		t.Error("expected quit=true for /quit")
	}
	if _, quit := m.handleMeta("/exit"); !quit {
		t.Error("expected quit=true for /exit")
	}
}

func TestHandleMeta_SaveAndLoad(t *testing.T) {
	m := newModel(t)
	m.engine.Step("kill 10")

	output, quit := m.handleMeta("/save test")
	if quit {
		t.Error("save should not quit")
	}
	if len(output) == 0 || !strings.Contains(output[0], "Game saved") {
		t.Fatalf("expected save confirmation, got %v", output)
	}

	old := m.engine
	output, _ = m.handleMeta("/load test")
	if len(output) == 0 || !strings.Contains(output[0], "Game loaded from test") {
		t.Fatalf("expected load confirmation, got %v", output)
	}
	if m.engine == old {
		t.Error("expected load to swap in a fresh engine")
	}
	if done, total := objectiveSummary(m.engine); done != 1 || total != 1 {
		t.Errorf("objectives = %d/%d after load, want 1/1", done, total)
	}
}

func TestHandleMeta_LoadNonexistent(t *testing.T) {
	m := newModel(t)

	output, quit := m.handleMeta("/load nonexistent")
	if quit {
		t.Error("load should not quit")
	}
	if len(output) == 0 || !strings.Contains(output[0], "Load failed") {
		t.Errorf("expected load failure, got %v", output)
	}
}

func TestHandleMeta_Help(t *testing.T) {
	m := newModel(t)

	output, _ := m.handleMeta("/help")
	joined := strings.Join(output, "\n")
	for _, expected := range []string{"/save", "/load", "/quit", "hit", "inventory", "PgUp"} {
		if !strings.Contains(joined, expected) {
			t.Errorf("expected %q in help output", expected)
		}
	}
}

func TestHandleMeta_Trace(t *testing.T) {
	m := newModel(t)

	output, _ := m.handleMeta("/trace")
	if !m.trace {
		t.Error("expected trace to be enabled")
	}
	if len(output) == 0 || !strings.Contains(output[0], "enabled") {
		t.Errorf("expected enabled message, got %v", output)
	}

	output, _ = m.handleMeta("/trace")
	if m.trace {
		t.Error("expected trace to be disabled")
	}
	if len(output) == 0 || !strings.Contains(output[0], "disabled") {
		t.Errorf("expected disabled message, got %v", output)
	}
}

func TestHandleMeta_Unknown(t *testing.T) {
	m := newModel(t)

	output, quit := m.handleMeta("/bogus")
	if quit {
		t.Error("unknown command should not quit")
	}
	if len(output) == 0 || !strings.Contains(output[0], "Unknown command") {
		t.Errorf("expected unknown command message, got %v", output)
	}
}

func TestHandleMeta_StateAndClears(t *testing.T) {
	m := newModel(t)

	joined := strings.Join(m.cmdState(), "\n")
	if !strings.Contains(joined, "RNG: seed 9") {
		t.Error("expected rng in state output")
	}
	if out := m.cmdClears(); len(out) != 1 || out[0] != "No profile configured." {
		t.Errorf("cmdClears = %v", out)
	}
}

func TestFormatTrace(t *testing.T) {
	lines := formatTrace(types.Result{Events: []types.Event{{Code: types.ConditionMonsterKill, Key: 10}}})
	if len(lines) != 2 || lines[1] != "[trace]   Monster Kill key=10" {
		t.Errorf("formatTrace = %v", lines)
	}
	if formatTrace(types.Result{}) != nil {
		t.Error("expected no trace lines without events")
	}
}

func TestUpdate_UpRecallsByTypedPrefix(t *testing.T) {
	m := newModel(t)
	for _, cmd := range []string{"tick 1", "hit", "i"} {
		m.input.SetValue(cmd)
		next, _ := m.handleEnter()
		m = next.(Model)
	}

	m.input.SetValue("ti")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(Model)
	if got := m.input.Value(); got != "tick 1" {
		t.Errorf("input after Up = %q, want tick 1", got)
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	if got := m.input.Value(); got != "ti" {
		t.Errorf("input after Down = %q, want ti", got)
	}
}

func TestUpdate_EnterRunsCommandAndEmptyWaits(t *testing.T) {
	m := newModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(Model)

	m.input.SetValue("kill 10")
	next, _ = m.handleEnter()
	m = next.(Model)
	if m.lastCmd != "kill 10" {
		t.Errorf("lastCmd = %q", m.lastCmd)
	}

	before := m.engine.Sched.Now()
	m.input.SetValue("")
	next, _ = m.handleEnter()
	m = next.(Model)
	if m.engine.Sched.Now() <= before {
		t.Error("expected an empty line to advance time")
	}

	bar := m.renderStatusBar()
	if !strings.Contains(bar, "Obj 1/1") {
		t.Errorf("status bar = %q", bar)
	}
	if !strings.Contains(m.View(), "> ") {
		t.Error("expected input prompt in view")
	}
}
