// Package bus implements the synchronous publish/subscribe channel that
// carries condition-coded gameplay events from emitters to the progression
// engine. Delivery happens inside Publish, in subscription order.
package bus

import (
	"log/slog"

	"github.com/nathoo/raidcore/types"
)

// Handler receives one published event.
type Handler func(types.Event)

type subscriber struct {
	id      uint64
	handler Handler
	active  bool
}

// Bus routes events by condition code. It is not safe for concurrent use;
// the engines share a single logical thread.
type Bus struct {
	subs   map[types.ConditionCode][]*subscriber
	nextID uint64
	depth  int
	logger *slog.Logger
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	bus  *Bus
	code types.ConditionCode
	sub  *subscriber
}

// New creates an empty bus. A nil logger discards log output.
func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Bus{
		subs:   map[types.ConditionCode][]*subscriber{},
		logger: logger,
	}
}

// Subscribe registers handler for events carrying code. Handlers for the same
// code run in the order they subscribed.
func (b *Bus) Subscribe(code types.ConditionCode, handler Handler) *Subscription {
	b.nextID++
	s := &subscriber{id: b.nextID, handler: handler, active: true}
	b.subs[code] = append(b.subs[code], s)
	return &Subscription{bus: b, code: code, sub: s}
}

// Cancel removes the subscription. It is safe to call from inside a handler,
// including the handler being cancelled, and safe to call more than once.
// A cancelled handler that a running dispatch has not reached yet is skipped.
func (s *Subscription) Cancel() {
	if s == nil || !s.sub.active {
		return
	}
	s.sub.active = false
	if s.bus.depth == 0 {
		s.bus.compact(s.code)
	}
}

// Publish delivers e to every active handler subscribed to e.Code before
// returning. Events published from inside a handler are delivered
// immediately (depth-first) and the outer dispatch then continues.
func (b *Bus) Publish(e types.Event) {
	subs := b.subs[e.Code]
	if len(subs) == 0 {
		b.logger.Debug("event has no subscribers", "code", e.Code, "key", e.Key)
		return
	}

	// Snapshot: handlers added during dispatch wait for the next publish.
	snapshot := make([]*subscriber, len(subs))
	copy(snapshot, subs)

	b.depth++
	for _, s := range snapshot {
		if !s.active {
			continue
		}
		s.handler(e)
	}
	b.depth--

	if b.depth == 0 {
		b.compactAll()
	}
}

// Count returns the number of active subscriptions for code.
func (b *Bus) Count(code types.ConditionCode) int {
	n := 0
	for _, s := range b.subs[code] {
		if s.active {
			n++
		}
	}
	return n
}

func (b *Bus) compact(code types.ConditionCode) {
	subs := b.subs[code]
	kept := subs[:0]
	for _, s := range subs {
		if s.active {
			kept = append(kept, s)
		}
	}
	for i := len(kept); i < len(subs); i++ {
		subs[i] = nil
	}
	if len(kept) == 0 {
		delete(b.subs, code)
		return
	}
	b.subs[code] = kept
}

func (b *Bus) compactAll() {
	for code := range b.subs {
		b.compact(code)
	}
}
