// Package profile persists a player's completion log. The log is stored as
// URL-encoded JSON under one key with its length mirrored under another,
// both namespaced by the player's UUID.
package profile

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/nathoo/raidcore/types"
)

// TimestampLayout formats ClearRecord timestamps.
const TimestampLayout = "2006/01/02 15:04:05"

// Durable key names.
const (
	KeyClearLog   = "clear_mbti_value"
	KeyClearCount = "clear_count"
)

// ClearLog is the serialized completion log.
type ClearLog struct {
	List []types.ClearRecord `json:"list"`
}

// Key returns the namespaced storage key for name.
func Key(id uuid.UUID, name string) string {
	return "profile:" + id.String() + ":" + name
}

// NewRecord stamps tag with t in TimestampLayout.
func NewRecord(tag string, t time.Time) types.ClearRecord {
	return types.ClearRecord{Tag: tag, Timestamp: t.Format(TimestampLayout)}
}

// EncodeLog marshals log to JSON and URL-encodes it.
func EncodeLog(log ClearLog) (string, error) {
	if log.List == nil {
		log.List = []types.ClearRecord{}
	}
	data, err := json.Marshal(log)
	if err != nil {
		return "", fmt.Errorf("encoding clear log: %w", err)
	}
	return url.QueryEscape(string(data)), nil
}

// DecodeLog URL-decodes s and unmarshals it. An empty string or a missing
// list decodes to an empty log.
func DecodeLog(s string) (ClearLog, error) {
	log := ClearLog{List: []types.ClearRecord{}}
	if s == "" {
		return log, nil
	}
	raw, err := url.QueryUnescape(s)
	if err != nil {
		return log, fmt.Errorf("decoding clear log: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &log); err != nil {
		return log, fmt.Errorf("decoding clear log: %w", err)
	}
	if log.List == nil {
		log.List = []types.ClearRecord{}
	}
	return log, nil
}
