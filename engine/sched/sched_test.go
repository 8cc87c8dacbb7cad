package sched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAfter_RunsOnceDelayReached(t *testing.T) {
	s := New(nil)
	ran := 0
	s.After(3*time.Second, "despawn", func() { ran++ })

	assert.Equal(t, 0, s.Advance(time.Second))
	assert.Equal(t, 0, s.Advance(1900*time.Millisecond))
	assert.Equal(t, 0, ran)

	assert.Equal(t, 1, s.Advance(200*time.Millisecond))
	assert.Equal(t, 1, ran)

	s.Advance(10 * time.Second)
	assert.Equal(t, 1, ran, "task must run exactly once")
}

func TestAdvance_OrdersByResumeTimeThenInsertion(t *testing.T) {
	s := New(nil)
	var order []string

	s.After(2*time.Second, "b", func() { order = append(order, "b") })
	s.After(time.Second, "a", func() { order = append(order, "a") })
	s.After(2*time.Second, "c", func() { order = append(order, "c") })

	s.Advance(5 * time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestCancel_PreventsRun(t *testing.T) {
	s := New(nil)
	ran := false
	h := s.After(time.Second, "load", func() { ran = true })

	require.True(t, h.Pending())
	assert.True(t, h.Cancel())
	assert.False(t, h.Cancel(), "second cancel reports false")
	assert.False(t, h.Pending())

	s.Advance(2 * time.Second)
	assert.False(t, ran)
	assert.Equal(t, 0, s.Pending())
}

func TestCancel_AfterRunReportsFalse(t *testing.T) {
	s := New(nil)
	h := s.After(0, "now", func() {})
	s.Advance(0)
	assert.False(t, h.Cancel())
}

func TestAdvance_ChainedTaskSameTick(t *testing.T) {
	s := New(nil)
	var order []string
	s.After(time.Second, "first", func() {
		order = append(order, "first")
		s.After(0, "second", func() { order = append(order, "second") })
	})

	ran := s.Advance(time.Second)
	assert.Equal(t, 2, ran)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestPoll_RunsWhenReady(t *testing.T) {
	s := New(nil)
	loaded := false
	ran := 0
	s.Poll(100*time.Millisecond, "data", func() bool { return loaded }, func() { ran++ })

	for i := 0; i < 5; i++ {
		s.Advance(100 * time.Millisecond)
	}
	assert.Equal(t, 0, ran)

	loaded = true
	s.Advance(100 * time.Millisecond)
	assert.Equal(t, 1, ran)

	s.Advance(time.Second)
	assert.Equal(t, 1, ran, "poll continuation runs once")
}

func TestPoll_Cancel(t *testing.T) {
	s := New(nil)
	ran := false
	h := s.Poll(0, "data", func() bool { return true }, func() { ran = true })

	h.Cancel()
	s.Advance(time.Second)
	assert.False(t, ran)
}

func TestNow_Accumulates(t *testing.T) {
	s := New(nil)
	s.Advance(250 * time.Millisecond)
	s.Advance(-time.Second)
	s.Advance(750 * time.Millisecond)
	assert.Equal(t, time.Second, s.Now())
}

func TestSetNow_KeepsRemainingDelay(t *testing.T) {
	s := New(nil)
	ran := 0
	h := s.After(2*time.Second, "expire", func() { ran++ })
	require.Equal(t, 2*time.Second, h.ResumeAt())

	s.SetNow(2500 * time.Millisecond)
	assert.Equal(t, 2500*time.Millisecond, s.Now())
	assert.Equal(t, 4500*time.Millisecond, h.ResumeAt())
	assert.Equal(t, 0, s.Advance(1900*time.Millisecond))
	assert.Equal(t, 1, s.Advance(100*time.Millisecond))
	assert.Equal(t, 1, ran)
}
