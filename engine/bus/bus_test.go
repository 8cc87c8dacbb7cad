package bus

import (
	"testing"

	"github.com/nathoo/raidcore/types"
)

func TestPublish_SubscriptionOrder(t *testing.T) {
	b := New(nil)
	var got []string

	b.Subscribe(types.ConditionMonsterKill, func(types.Event) { got = append(got, "first") })
	b.Subscribe(types.ConditionMonsterKill, func(types.Event) { got = append(got, "second") })
	b.Subscribe(types.ConditionMonsterKill, func(types.Event) { got = append(got, "third") })

	b.Publish(types.Event{Code: types.ConditionMonsterKill, Key: 10})

	want := []string{"first", "second", "third"}
	if len(got) != len(want) {
		t.Fatalf("expected %d deliveries, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("delivery %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPublish_RoutesByCode(t *testing.T) {
	b := New(nil)
	kills, crafts := 0, 0

	b.Subscribe(types.ConditionMonsterKill, func(types.Event) { kills++ })
	b.Subscribe(types.ConditionCrafting, func(types.Event) { crafts++ })

	b.Publish(types.Event{Code: types.ConditionCrafting, Key: 3})
	b.Publish(types.Event{Code: types.ConditionCrafting, Key: 4})

	if kills != 0 {
		t.Errorf("kill handler ran %d times, want 0", kills)
	}
	if crafts != 2 {
		t.Errorf("craft handler ran %d times, want 2", crafts)
	}
}

func TestPublish_NoSubscribers(t *testing.T) {
	b := New(nil)
	// Must not panic.
	b.Publish(types.Event{Code: types.ConditionDialogue, Key: 1})
}

func TestPublish_CarriesPayload(t *testing.T) {
	b := New(nil)
	var seen types.Event

	b.Subscribe(types.ConditionItemGift, func(e types.Event) { seen = e })

	count := 12
	b.Publish(types.Event{Code: types.ConditionItemGift, Key: 5, Payload: &count})

	if seen.Key != 5 {
		t.Errorf("key = %d, want 5", seen.Key)
	}
	if seen.Payload == nil || *seen.Payload != 12 {
		t.Errorf("payload = %v, want 12", seen.Payload)
	}
}

func TestCancel_SelfDuringDispatch(t *testing.T) {
	b := New(nil)
	calls := map[string]int{}

	var self *Subscription
	b.Subscribe(types.ConditionBossKill, func(types.Event) { calls["a"]++ })
	self = b.Subscribe(types.ConditionBossKill, func(types.Event) {
		calls["self"]++
		self.Cancel()
	})
	b.Subscribe(types.ConditionBossKill, func(types.Event) { calls["c"]++ })

	b.Publish(types.Event{Code: types.ConditionBossKill})
	b.Publish(types.Event{Code: types.ConditionBossKill})

	if calls["a"] != 2 || calls["c"] != 2 {
		t.Errorf("neighbours should run on both publishes, got %v", calls)
	}
	if calls["self"] != 1 {
		t.Errorf("self-cancelling handler ran %d times, want 1", calls["self"])
	}
	if n := b.Count(types.ConditionBossKill); n != 2 {
		t.Errorf("active count = %d, want 2", n)
	}
}

func TestCancel_LaterHandlerSkipped(t *testing.T) {
	b := New(nil)
	ran := false

	var later *Subscription
	b.Subscribe(types.ConditionObjectTouch, func(types.Event) { later.Cancel() })
	later = b.Subscribe(types.ConditionObjectTouch, func(types.Event) { ran = true })

	b.Publish(types.Event{Code: types.ConditionObjectTouch})

	if ran {
		t.Error("handler cancelled before it was reached should be skipped")
	}
}

func TestCancel_Idempotent(t *testing.T) {
	b := New(nil)
	s := b.Subscribe(types.ConditionCrafting, func(types.Event) {})

	s.Cancel()
	s.Cancel()

	if n := b.Count(types.ConditionCrafting); n != 0 {
		t.Errorf("active count = %d, want 0", n)
	}
}

func TestSubscribe_DuringDispatchWaitsForNextPublish(t *testing.T) {
	b := New(nil)
	late := 0

	b.Subscribe(types.ConditionDialogue, func(types.Event) {
		b.Subscribe(types.ConditionDialogue, func(types.Event) { late++ })
	})

	b.Publish(types.Event{Code: types.ConditionDialogue})
	if late != 0 {
		t.Fatalf("handler added mid-dispatch ran on the same publish")
	}

	b.Publish(types.Event{Code: types.ConditionDialogue})
	if late != 1 {
		t.Errorf("late handler ran %d times, want 1", late)
	}
}

func TestPublish_NestedDeliveredDepthFirst(t *testing.T) {
	b := New(nil)
	var order []string

	b.Subscribe(types.ConditionMonsterKill, func(types.Event) {
		order = append(order, "kill:start")
		b.Publish(types.Event{Code: types.ConditionDataReady})
		order = append(order, "kill:end")
	})
	b.Subscribe(types.ConditionDataReady, func(types.Event) {
		order = append(order, "ready")
	})

	b.Publish(types.Event{Code: types.ConditionMonsterKill})

	want := []string{"kill:start", "ready", "kill:end"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}
