package profile

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/raidcore/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	store, err := NewRedisStore(context.Background(), "redis://"+mr.Addr(), testLogger())
	if err != nil {
		mr.Close()
		t.Fatalf("Failed to create redis store: %v", err)
	}
	return store, mr
}

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2024, 3, 9, 17, 5, 1, 0, time.Local) }
}

func TestEncodeDecodeLog(t *testing.T) {
	log := ClearLog{List: []types.ClearRecord{
		{Tag: "INTJ", Timestamp: "2024/03/09 17:05:01"},
		{Tag: "boss 5001", Timestamp: "2024/03/10 08:00:00"},
	}}

	encoded, err := EncodeLog(log)
	require.NoError(t, err)
	assert.NotContains(t, encoded, "{", "encoded log must be URL-escaped")

	raw, err := url.QueryUnescape(encoded)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw, `{"list":[{"tag":"INTJ","timestamp":"2024/03/09 17:05:01"}`), raw)

	decoded, err := DecodeLog(encoded)
	require.NoError(t, err)
	assert.Equal(t, log, decoded)
}

func TestDecodeLog_EmptyAndNull(t *testing.T) {
	for _, in := range []string{"", url.QueryEscape(`{}`), url.QueryEscape(`{"list":null}`)} {
		log, err := DecodeLog(in)
		require.NoError(t, err, in)
		assert.NotNil(t, log.List, in)
		assert.Empty(t, log.List, in)
	}

	_, err := DecodeLog("%zz")
	assert.Error(t, err)
	_, err = DecodeLog(url.QueryEscape(`[1,2`))
	assert.Error(t, err)
}

func TestNewRecord_Layout(t *testing.T) {
	rec := NewRecord("ENFP", fixedClock()())
	assert.Equal(t, "2024/03/09 17:05:01", rec.Timestamp)
	assert.Equal(t, "ENFP", rec.Tag)
}

func TestKey(t *testing.T) {
	id := uuid.MustParse("6f1c5a52-8f7e-4b53-a1a4-0d7b8f2b9a10")
	assert.Equal(t, "profile:6f1c5a52-8f7e-4b53-a1a4-0d7b8f2b9a10:clear_count", Key(id, KeyClearCount))
}

// exerciseProfile appends two records through store and reopens the
// profile to check both keys survived.
func exerciseProfile(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	id := uuid.New()

	p, err := Open(ctx, store, id, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 0, p.Count())

	p.SetClock(fixedClock())
	_, err = p.Append(ctx, "ISTP")
	require.NoError(t, err)
	rec, err := p.Append(ctx, "boss 5001")
	require.NoError(t, err)
	assert.Equal(t, "2024/03/09 17:05:01", rec.Timestamp)

	count, ok, err := store.Get(ctx, Key(id, KeyClearCount))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2", count)

	reopened, err := Open(ctx, store, id, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, reopened.Count())
	assert.Equal(t, p.Records(), reopened.Records())
	assert.Equal(t, "ISTP", reopened.Records()[0].Tag)
}

func TestProfile_MemoryStore(t *testing.T) {
	exerciseProfile(t, NewMemoryStore())
}

func TestProfile_RedisStore(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer store.Close()

	exerciseProfile(t, store)
}

func TestProfile_SQLiteStore(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "profile.db"))
	require.NoError(t, err)
	defer store.Close()

	exerciseProfile(t, store)
}

func TestRedisStore_MissingKeyAndDown(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer store.Close()

	v, ok, err := store.Get(context.Background(), "profile:nobody:clear_count")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)

	mr.Close()
	_, _, err = store.Get(context.Background(), "anything")
	assert.Error(t, err)
}

func TestSQLiteStore_Overwrite(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "1"))
	require.NoError(t, store.Set(ctx, "k", "2"))
	v, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	_, err = OpenSQLite("  ")
	assert.Error(t, err)
}

// countFailStore fails every write to the clear count key.
type countFailStore struct {
	*MemoryStore
}

func (s countFailStore) Set(ctx context.Context, key, value string) error {
	if strings.HasSuffix(key, ":"+KeyClearCount) {
		return errors.New("count backend unavailable")
	}
	return s.MemoryStore.Set(ctx, key, value)
}

func TestAppend_CountFailureKeepsLog(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	id := uuid.New()

	p, err := Open(ctx, mem, id, testLogger())
	require.NoError(t, err)
	_, err = p.Append(ctx, "boss:5001")
	require.NoError(t, err)
	before, _, err := mem.Get(ctx, Key(id, KeyClearLog))
	require.NoError(t, err)

	p.store = countFailStore{mem}
	_, err = p.Append(ctx, "quest:10000001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "saving clear count")

	assert.Equal(t, 1, p.Count())
	after, _, err := mem.Get(ctx, Key(id, KeyClearLog))
	require.NoError(t, err)
	assert.Equal(t, before, after)
	count, _, err := mem.Get(ctx, Key(id, KeyClearCount))
	require.NoError(t, err)
	assert.Equal(t, "1", count)

	reopened, err := Open(ctx, mem, id, testLogger())
	require.NoError(t, err)
	assert.Equal(t, p.Records(), reopened.Records())
}

func TestOpen_CorruptLog(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	id := uuid.New()
	require.NoError(t, store.Set(ctx, Key(id, KeyClearLog), url.QueryEscape("not json")))

	_, err := Open(ctx, store, id, nil)
	assert.Error(t, err)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	s, err := OpenStore(ctx, "memory", "", "", nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = OpenStore(ctx, "sqlite", "", filepath.Join(t.TempDir(), "x.db"), nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = OpenStore(ctx, "etcd", "", "", nil)
	assert.Error(t, err)
	_, err = OpenStore(ctx, "redis", "::bad::", "", nil)
	assert.Error(t, err)
}
