package actor

import (
	"testing"
	"time"

	"github.com/nathoo/raidcore/engine/sched"
	"github.com/nathoo/raidcore/types"
	"github.com/nathoo/raidcore/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hazardWorld(t *testing.T) (*world.World, *[]int) {
	t.Helper()
	w := world.New(nil)
	require.NoError(t, w.Add(types.Body{ID: "player", Tag: world.TagPlayer}))
	var hits []int
	w.OnDamage(func(_ string, n int) { hits = append(hits, n) })
	return w, &hits
}

func TestHazard_OneHitPerOverlapWindow(t *testing.T) {
	w, hits := hazardWorld(t)
	s := sched.New(nil)
	h, err := NewHazard(HazardConfig{ID: "h1", BulletID: DefaultBulletID, Position: types.Vec3{X: 1}},
		bossTable(), w, s, nil)
	require.NoError(t, err)

	assert.True(t, h.Tick())
	assert.False(t, h.Tick())
	assert.False(t, h.Tick())
	assert.Equal(t, []int{4}, *hits, "player standing inside is hit once")

	require.NoError(t, w.Move("player", types.Vec3{X: 5}))
	assert.False(t, h.Tick())

	require.NoError(t, w.Move("player", types.Vec3{X: 2.5}))
	assert.True(t, h.Tick(), "re-entering re-arms the hazard")
	assert.Equal(t, []int{4, 4}, *hits)
	assert.Equal(t, 2, h.Hits())
}

func TestHazard_RadiusFromRow(t *testing.T) {
	w, hits := hazardWorld(t)
	s := sched.New(nil)
	h, err := NewHazard(HazardConfig{ID: "h1", BulletID: DefaultBulletID, Position: types.Vec3{X: 2}},
		bossTable(), w, s, nil)
	require.NoError(t, err)

	assert.InDelta(t, 1.9, h.Radius(), 1e-9)
	assert.False(t, h.Tick(), "player at distance 2 is outside radius 1.9")
	assert.Empty(t, *hits)
}

func TestHazard_ExpiresAfterLifetime(t *testing.T) {
	w, hits := hazardWorld(t)
	s := sched.New(nil)
	h, err := NewHazard(HazardConfig{ID: "h1", BulletID: DefaultBulletID, Position: types.Vec3{X: 10}},
		bossTable(), w, s, nil)
	require.NoError(t, err)

	_, ok := w.Get("h1")
	require.True(t, ok)

	s.Advance(1900 * time.Millisecond)
	assert.False(t, h.Expired())
	s.Advance(200 * time.Millisecond)
	assert.True(t, h.Expired())
	_, ok = w.Get("h1")
	assert.False(t, ok)

	require.NoError(t, w.Move("player", types.Vec3{X: 10}))
	assert.False(t, h.Tick(), "expired hazard deals no damage")
	assert.Empty(t, *hits)

	h.Expire()
}

func TestHazard_DuplicateIDFails(t *testing.T) {
	w, _ := hazardWorld(t)
	s := sched.New(nil)
	_, err := NewHazard(HazardConfig{ID: "player"}, bossTable(), w, s, nil)
	assert.Error(t, err)
}
