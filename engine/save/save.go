// Package save implements JSON serialization and deserialization of
// progression state.
package save

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nathoo/raidcore/engine/actor"
	"github.com/nathoo/raidcore/engine/quest"
	"github.com/nathoo/raidcore/types"
)

// FormatVersion is written into every save and checked on load.
const FormatVersion = 2

// ObjectiveData is the saved progress of one objective.
type ObjectiveData struct {
	ID       int                  `json:"id"`
	Progress int                  `json:"progress"`
	State    types.ObjectiveState `json:"state"`
}

// ItemData is one occupied inventory slot.
type ItemData struct {
	Slot      int  `json:"slot"`
	ID        int  `json:"id"`
	Countable bool `json:"countable"`
	Amount    int  `json:"amount"`
	MaxAmount int  `json:"max_amount"`
}

// SaveData is the JSON-serializable save format. Besides progression it
// carries the running encounter: the boss state machine, the scheduler
// clock and the bodies the boss put into the world.
type SaveData struct {
	Version        int             `json:"version"`
	Boss           int             `json:"boss"`
	Encounter      actor.Snapshot  `json:"encounter"`
	Clock          time.Duration   `json:"clock"`
	PlayerHP       int             `json:"player_hp"`
	PlayerPosition types.Vec3      `json:"player_position"`
	Minions        []types.Body    `json:"minions"`
	Capacity       int             `json:"capacity"`
	Objectives     []ObjectiveData `json:"objectives"`
	Inventory      []ItemData      `json:"inventory"`
	Spoken         []int           `json:"spoken"`
	RNGSeed        int64           `json:"rng_seed"`
	RNGPosition    int64           `json:"rng_position"`
	CommandLog     []string        `json:"command_log"`
}

// Save serializes sd to indented JSON bytes.
func Save(sd *SaveData) ([]byte, error) {
	sd.Version = FormatVersion
	return json.MarshalIndent(sd, "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	if sd.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported save version %d", sd.Version)
	}
	// Ensure slices are never nil after load.
	if sd.Objectives == nil {
		sd.Objectives = []ObjectiveData{}
	}
	if sd.Inventory == nil {
		sd.Inventory = []ItemData{}
	}
	if sd.Spoken == nil {
		sd.Spoken = []int{}
	}
	if sd.Minions == nil {
		sd.Minions = []types.Body{}
	}
	if sd.CommandLog == nil {
		sd.CommandLog = []string{}
	}
	return &sd, nil
}

// CaptureObjectives converts tracker objectives to their saved form.
func CaptureObjectives(objs []quest.Objective) []ObjectiveData {
	out := make([]ObjectiveData, 0, len(objs))
	for _, o := range objs {
		out = append(out, ObjectiveData{ID: o.Def.ID, Progress: o.Progress, State: o.State})
	}
	return out
}

// CaptureInventory converts inventory slots to their saved form. Empty
// slots are omitted.
func CaptureInventory(slots []*types.Item) []ItemData {
	out := []ItemData{}
	for i, it := range slots {
		if it == nil {
			continue
		}
		out = append(out, ItemData{
			Slot:      i,
			ID:        it.ID,
			Countable: it.Countable,
			Amount:    it.Amount,
			MaxAmount: it.MaxAmount,
		})
	}
	return out
}

// Slots rebuilds a slot sequence of the saved capacity.
func (sd *SaveData) Slots() ([]*types.Item, error) {
	slots := make([]*types.Item, sd.Capacity)
	for _, it := range sd.Inventory {
		if it.Slot < 0 || it.Slot >= sd.Capacity {
			return nil, fmt.Errorf("item %d in slot %d outside capacity %d", it.ID, it.Slot, sd.Capacity)
		}
		if slots[it.Slot] != nil {
			return nil, fmt.Errorf("slot %d saved twice", it.Slot)
		}
		slots[it.Slot] = &types.Item{
			ID:        it.ID,
			Countable: it.Countable,
			Amount:    it.Amount,
			MaxAmount: it.MaxAmount,
		}
	}
	return slots, nil
}

// ApplyObjectives restores saved progress onto t. Objectives missing from
// the save keep their current state.
func ApplyObjectives(t *quest.Tracker, objs []ObjectiveData) error {
	for _, o := range objs {
		if err := t.Restore(o.ID, o.Progress, o.State); err != nil {
			return fmt.Errorf("applying save: %w", err)
		}
	}
	return nil
}
