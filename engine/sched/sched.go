// Package sched drives deferred continuations from the simulation tick.
// A task carries a resume time and a continuation; it runs on the first
// Advance whose accumulated time reaches the resume time. There is no exact
// tick alignment and no wall clock involved.
package sched

import (
	"container/heap"
	"log/slog"
	"time"
)

// DefaultPollInterval is used by Poll when the caller passes a non-positive interval.
const DefaultPollInterval = 100 * time.Millisecond

// Handle identifies a scheduled task.
type Handle struct {
	label     string
	at        time.Duration
	cancelled bool
	done      bool
}

// Cancel prevents the task from running. It returns false if the task
// already ran or was already cancelled.
func (h *Handle) Cancel() bool {
	if h == nil || h.done || h.cancelled {
		return false
	}
	h.cancelled = true
	return true
}

// Pending reports whether the task is still waiting to run.
func (h *Handle) Pending() bool {
	return h != nil && !h.done && !h.cancelled
}

// Label returns the label given at scheduling time.
func (h *Handle) Label() string {
	return h.label
}

// ResumeAt returns the simulation time the task is due. It is zero for
// the outer handle of a Poll.
func (h *Handle) ResumeAt() time.Duration {
	if h == nil {
		return 0
	}
	return h.at
}

type task struct {
	at     time.Duration
	seq    uint64
	run    func()
	handle *Handle
}

type queue []*task

func (q queue) Len() int { return len(q) }
func (q queue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seq < q[j].seq
}
func (q queue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *queue) Push(x any)   { *q = append(*q, x.(*task)) }
func (q *queue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}

// Scheduler orders tasks by (resume time, scheduling order).
type Scheduler struct {
	now    time.Duration
	seq    uint64
	tasks  queue
	logger *slog.Logger
}

// New creates a scheduler at time zero. A nil logger discards log output.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{logger: logger}
}

// Now returns the accumulated simulation time.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// After schedules run to resume once delay has elapsed.
func (s *Scheduler) After(delay time.Duration, label string, run func()) *Handle {
	if delay < 0 {
		delay = 0
	}
	h := &Handle{label: label, at: s.now + delay}
	s.seq++
	heap.Push(&s.tasks, &task{at: s.now + delay, seq: s.seq, run: run, handle: h})
	s.logger.Debug("task scheduled", "label", label, "delay", delay, "resume_at", s.now+delay)
	return h
}

// Poll checks ready every interval and runs run once, on the first check
// that reports true. The returned handle cancels the whole poll.
func (s *Scheduler) Poll(interval time.Duration, label string, ready func() bool, run func()) *Handle {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	outer := &Handle{label: label}
	var check func()
	check = func() {
		if outer.cancelled {
			return
		}
		if ready() {
			outer.done = true
			run()
			return
		}
		s.After(interval, label, check)
	}
	s.After(interval, label, check)
	return outer
}

// Advance moves time forward by dt and runs every task now due, in order.
// Tasks scheduled by a running task are eligible in the same Advance if
// their resume time has already been reached. It returns the number of
// tasks that ran.
func (s *Scheduler) Advance(dt time.Duration) int {
	if dt > 0 {
		s.now += dt
	}
	ran := 0
	for s.tasks.Len() > 0 && s.tasks[0].at <= s.now {
		t := heap.Pop(&s.tasks).(*task)
		if t.handle.cancelled {
			continue
		}
		t.handle.done = true
		t.run()
		ran++
	}
	return ran
}

// SetNow moves the clock to now without running anything. Queued tasks
// keep their remaining delay. It is used when a saved clock is restored.
func (s *Scheduler) SetNow(now time.Duration) {
	if now < 0 {
		now = 0
	}
	shift := now - s.now
	for _, t := range s.tasks {
		t.at += shift
		t.handle.at = t.at
	}
	s.now = now
	s.logger.Debug("clock set", "now", now, "pending", s.Pending())
}

// Pending returns the number of queued tasks that are not cancelled.
func (s *Scheduler) Pending() int {
	n := 0
	for _, t := range s.tasks {
		if !t.handle.cancelled {
			n++
		}
	}
	return n
}
