// Package inventory holds the player's fixed-capacity item slots and answers
// held-count queries for the progression engine.
package inventory

import (
	"fmt"
	"log/slog"

	"github.com/nathoo/raidcore/types"
)

// DefaultCapacity is the slot count used when New is given a non-positive capacity.
const DefaultCapacity = 24

// CountPolicy selects how CountItem accumulates matching stacks.
type CountPolicy int

const (
	// SumAll adds every matching countable stack.
	SumAll CountPolicy = iota
	// StopAtPartial adds matching stacks in slot order and returns as soon
	// as it has added a stack below its maximum amount.
	StopAtPartial
)

func (p CountPolicy) String() string {
	switch p {
	case SumAll:
		return "sum_all"
	case StopAtPartial:
		return "stop_at_partial"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy maps a config value to a policy.
func ParsePolicy(s string) (CountPolicy, error) {
	switch s {
	case "", "sum_all":
		return SumAll, nil
	case "stop_at_partial":
		return StopAtPartial, nil
	default:
		return SumAll, fmt.Errorf("unknown count policy %q", s)
	}
}

// View is the read-only query the progression engine consumes.
type View interface {
	CountItem(id int) int
}

// Inventory is an ordered sequence of nullable slots.
type Inventory struct {
	slots  []*types.Item
	policy CountPolicy
	logger *slog.Logger
}

// New creates an empty inventory with capacity slots.
func New(capacity int, policy CountPolicy, logger *slog.Logger) *Inventory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Inventory{slots: make([]*types.Item, capacity), policy: policy, logger: logger}
}

// Policy returns the counting policy.
func (inv *Inventory) Policy() CountPolicy {
	return inv.policy
}

// SetPolicy changes the counting policy.
func (inv *Inventory) SetPolicy(p CountPolicy) {
	inv.policy = p
}

// Capacity returns the number of slots.
func (inv *Inventory) Capacity() int {
	return len(inv.slots)
}

// CountItem returns the held count of countable items with id.
func (inv *Inventory) CountItem(id int) int {
	count := 0
	for _, it := range inv.slots {
		if it == nil || it.ID != id || !it.Countable {
			continue
		}
		count += it.Amount
		if inv.policy == StopAtPartial && it.Amount < it.MaxAmount {
			return count
		}
	}
	return count
}

// Add stores amount units of a countable item, topping up partial stacks
// first and then filling empty slots with stacks of at most max. It returns
// the amount that did not fit.
func (inv *Inventory) Add(id, amount, max int) int {
	if amount <= 0 {
		return 0
	}
	if max <= 0 {
		max = 1
	}
	for _, it := range inv.slots {
		if amount == 0 {
			break
		}
		if it == nil || it.ID != id || !it.Countable || it.Amount >= it.MaxAmount {
			continue
		}
		n := min(amount, it.MaxAmount-it.Amount)
		it.Amount += n
		amount -= n
	}
	for i := range inv.slots {
		if amount == 0 {
			break
		}
		if inv.slots[i] != nil {
			continue
		}
		n := min(amount, max)
		inv.slots[i] = &types.Item{ID: id, Countable: true, Amount: n, MaxAmount: max}
		amount -= n
	}
	if amount > 0 {
		inv.logger.Warn("inventory full", "item", id, "overflow", amount)
	}
	return amount
}

// Put places item in slot i, replacing whatever was there.
func (inv *Inventory) Put(i int, item types.Item) error {
	if i < 0 || i >= len(inv.slots) {
		return fmt.Errorf("slot %d out of range [0,%d)", i, len(inv.slots))
	}
	it := item
	inv.slots[i] = &it
	return nil
}

// Remove takes up to amount units of id, draining later slots first so
// earlier stacks stay full. It returns the amount removed.
func (inv *Inventory) Remove(id, amount int) int {
	removed := 0
	for i := len(inv.slots) - 1; i >= 0 && removed < amount; i-- {
		it := inv.slots[i]
		if it == nil || it.ID != id {
			continue
		}
		if !it.Countable {
			inv.slots[i] = nil
			removed++
			continue
		}
		n := min(amount-removed, it.Amount)
		it.Amount -= n
		removed += n
		if it.Amount == 0 {
			inv.slots[i] = nil
		}
	}
	return removed
}

// Slots returns a copy of the slots; empty slots are nil.
func (inv *Inventory) Slots() []*types.Item {
	out := make([]*types.Item, len(inv.slots))
	for i, it := range inv.slots {
		if it != nil {
			c := *it
			out[i] = &c
		}
	}
	return out
}

// Restore replaces every slot. Extra items beyond capacity are an error.
func (inv *Inventory) Restore(items []*types.Item) error {
	if len(items) > len(inv.slots) {
		return fmt.Errorf("restoring %d slots into capacity %d", len(items), len(inv.slots))
	}
	for i := range inv.slots {
		inv.slots[i] = nil
		if i < len(items) && items[i] != nil {
			c := *items[i]
			inv.slots[i] = &c
		}
	}
	return nil
}
