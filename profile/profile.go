package profile

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/nathoo/raidcore/types"
)

// Profile is one player's completion log bound to a Store.
type Profile struct {
	id     uuid.UUID
	store  Store
	log    ClearLog
	now    func() time.Time
	logger *slog.Logger
}

// Open loads the profile id from store. A player with no saved data starts
// with an empty log.
func Open(ctx context.Context, store Store, id uuid.UUID, logger *slog.Logger) (*Profile, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p := &Profile{id: id, store: store, now: time.Now, logger: logger.With("player", id.String())}

	raw, _, err := store.Get(ctx, Key(id, KeyClearLog))
	if err != nil {
		return nil, fmt.Errorf("loading profile %s: %w", id, err)
	}
	if p.log, err = DecodeLog(raw); err != nil {
		return nil, fmt.Errorf("loading profile %s: %w", id, err)
	}

	// The count only mirrors the list; a stale mirror is repaired on the
	// next append.
	if countRaw, ok, err := store.Get(ctx, Key(id, KeyClearCount)); err != nil {
		return nil, fmt.Errorf("loading profile %s: %w", id, err)
	} else if ok {
		if n, err := strconv.Atoi(countRaw); err != nil || n != len(p.log.List) {
			p.logger.Warn("clear count does not match log", "count", countRaw, "records", len(p.log.List))
		}
	}

	p.logger.Debug("profile loaded", "records", len(p.log.List))
	return p, nil
}

// SetClock replaces the time source used to stamp records.
func (p *Profile) SetClock(now func() time.Time) {
	p.now = now
}

// ID returns the player id.
func (p *Profile) ID() uuid.UUID { return p.id }

// Count returns the number of records.
func (p *Profile) Count() int { return len(p.log.List) }

// Records returns a copy of the log in append order.
func (p *Profile) Records() []types.ClearRecord {
	return append([]types.ClearRecord(nil), p.log.List...)
}

// Append stamps tag with the current time, appends it and writes both keys.
// If the count cannot be written the log key is put back, so a failed
// append leaves the store and the in-memory log as they were.
func (p *Profile) Append(ctx context.Context, tag string) (types.ClearRecord, error) {
	rec := NewRecord(tag, p.now())
	next := ClearLog{List: append(p.Records(), rec)}

	prev, err := EncodeLog(p.log)
	if err != nil {
		return rec, err
	}
	encoded, err := EncodeLog(next)
	if err != nil {
		return rec, err
	}
	logKey := Key(p.id, KeyClearLog)
	if err := p.store.Set(ctx, logKey, encoded); err != nil {
		return rec, fmt.Errorf("saving clear log: %w", err)
	}
	if err := p.store.Set(ctx, Key(p.id, KeyClearCount), strconv.Itoa(len(next.List))); err != nil {
		if rbErr := p.store.Set(ctx, logKey, prev); rbErr != nil {
			p.logger.Error("restoring clear log after failed count write", "error", rbErr)
			return rec, fmt.Errorf("saving clear count: %w (restoring log: %v)", err, rbErr)
		}
		return rec, fmt.Errorf("saving clear count: %w", err)
	}
	p.log = next
	p.logger.Info("clear recorded", "tag", tag, "count", len(next.List))
	return rec, nil
}
