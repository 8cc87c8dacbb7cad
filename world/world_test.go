package world

import (
	"testing"

	"github.com/nathoo/raidcore/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddGetRemove(t *testing.T) {
	w := New(nil)
	require.NoError(t, w.Add(types.Body{ID: "p1", Tag: TagPlayer}))
	assert.Error(t, w.Add(types.Body{ID: "p1", Tag: TagPlayer}), "duplicate id")
	assert.Error(t, w.Add(types.Body{Tag: TagPlayer}), "empty id")

	b, ok := w.Get("p1")
	require.True(t, ok)
	assert.Equal(t, TagPlayer, b.Tag)

	assert.True(t, w.Remove("p1"))
	assert.False(t, w.Remove("p1"))
	_, ok = w.Get("p1")
	assert.False(t, ok)
}

func TestFindWithTag_OrderedByID(t *testing.T) {
	w := New(nil)
	require.NoError(t, w.Add(types.Body{ID: "npc-b", Tag: TagNPC}))
	require.NoError(t, w.Add(types.Body{ID: "npc-a", Tag: TagNPC}))
	require.NoError(t, w.Add(types.Body{ID: "boss", Tag: TagBoss}))

	b, ok := w.FindWithTag(TagNPC)
	require.True(t, ok)
	assert.Equal(t, "npc-a", b.ID)
	assert.Len(t, w.WithTag(TagNPC), 2)

	_, ok = w.FindWithTag(TagPlayer)
	assert.False(t, ok)
}

func TestOverlap_RadiusInclusive(t *testing.T) {
	w := New(nil)
	require.NoError(t, w.Add(types.Body{ID: "edge", Position: types.Vec3{X: 2}}))
	require.NoError(t, w.Add(types.Body{ID: "in", Position: types.Vec3{X: 1, Z: 1}}))
	require.NoError(t, w.Add(types.Body{ID: "out", Position: types.Vec3{X: 2, Z: 0.1}}))

	got := w.Overlap(types.Vec3{}, 2)
	ids := make([]string, len(got))
	for i, b := range got {
		ids[i] = b.ID
	}
	assert.Equal(t, []string{"edge", "in"}, ids)
}

func TestMove(t *testing.T) {
	w := New(nil)
	require.NoError(t, w.Add(types.Body{ID: "p1", Tag: TagPlayer}))
	require.NoError(t, w.Move("p1", types.Vec3{X: 5, Y: 1, Z: -2}))
	assert.Error(t, w.Move("ghost", types.Vec3{}))

	b, _ := w.Get("p1")
	assert.Equal(t, types.Vec3{X: 5, Y: 1, Z: -2}, b.Position)
}

func TestDamage_ForwardsToExistingBodies(t *testing.T) {
	w := New(nil)
	require.NoError(t, w.Add(types.Body{ID: "p1", Tag: TagPlayer}))

	var got []int
	w.OnDamage(func(id string, amount int) {
		assert.Equal(t, "p1", id)
		got = append(got, amount)
	})
	w.Damage("p1", 7)
	w.Damage("ghost", 9)
	assert.Equal(t, []int{7}, got)
}

func TestDistance(t *testing.T) {
	assert.InDelta(t, 5.0, Distance(types.Vec3{}, types.Vec3{X: 3, Z: 4}), 1e-9)
}
