// Package dialogue implements NPC conversations. Every conversation with an
// NPC raises a Dialogue event; the registry also remembers who has been
// spoken to for display and saves.
package dialogue

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/nathoo/raidcore/engine/table"
	"github.com/nathoo/raidcore/types"
)

// Rows lists rows by kind and reads their fields.
type Rows interface {
	table.Source
	IDsOfKind(kind string) []int
}

// Publisher receives Dialogue events.
type Publisher interface {
	Publish(e types.Event)
}

// NPC is one conversational character.
type NPC struct {
	ID       int
	Name     string
	Lines    []string
	Position types.Vec3
	Spoken   bool
}

// Registry holds every NPC by id.
type Registry struct {
	npcs   map[int]*NPC
	pub    Publisher
	logger *slog.Logger
}

// NewRegistry creates an empty registry publishing to pub.
func NewRegistry(pub Publisher, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{npcs: map[int]*NPC{}, pub: pub, logger: logger}
}

// Load adds every npc row in src.
func (r *Registry) Load(src Rows) int {
	ids := src.IDsOfKind(table.KindNPC)
	for _, id := range ids {
		npc := &NPC{
			ID:   id,
			Name: table.String(src, id, "name", fmt.Sprintf("npc %d", id)),
		}
		if v, ok := src.Value(id, "lines"); ok {
			if list, ok := v.([]any); ok {
				for _, l := range list {
					if s, ok := l.(string); ok {
						npc.Lines = append(npc.Lines, s)
					}
				}
			}
		}
		if pos := table.IntList(src, id, "position"); len(pos) == 3 {
			npc.Position = types.Vec3{X: float64(pos[0]), Y: float64(pos[1]), Z: float64(pos[2])}
		}
		r.npcs[id] = npc
	}
	return len(ids)
}

// Add registers npc, replacing any NPC with the same id.
func (r *Registry) Add(npc NPC) {
	n := npc
	r.npcs[n.ID] = &n
}

// Talk opens a conversation with id, raises Dialogue(id) and returns the
// NPC's lines. first reports whether this was the first conversation with
// that NPC.
func (r *Registry) Talk(id int) (lines []string, first bool, err error) {
	npc, ok := r.npcs[id]
	if !ok {
		return nil, false, fmt.Errorf("npc %d not found", id)
	}
	if len(npc.Lines) == 0 {
		lines = []string{fmt.Sprintf("%s nods at you.", npc.Name)}
	} else {
		lines = append(lines, npc.Lines...)
	}
	first = !npc.Spoken
	npc.Spoken = true
	r.logger.Info("conversation", "npc", id, "name", npc.Name, "first", first)
	if r.pub != nil {
		r.pub.Publish(types.Event{Code: types.ConditionDialogue, Key: id})
	}
	return lines, first, nil
}

// Get returns a copy of NPC id.
func (r *Registry) Get(id int) (NPC, bool) {
	npc, ok := r.npcs[id]
	if !ok {
		return NPC{}, false
	}
	return *npc, true
}

// All returns every NPC ordered by id.
func (r *Registry) All() []NPC {
	out := make([]NPC, 0, len(r.npcs))
	for _, n := range r.npcs {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Spoken returns the ids of NPCs already spoken to, ascending.
func (r *Registry) Spoken() []int {
	var out []int
	for id, n := range r.npcs {
		if n.Spoken {
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}

// MarkSpoken restores the spoken flag for ids without raising events.
// Unknown ids are ignored.
func (r *Registry) MarkSpoken(ids []int) {
	for _, id := range ids {
		if n, ok := r.npcs[id]; ok {
			n.Spoken = true
		}
	}
}
