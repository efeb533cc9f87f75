package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/fakeyudi/storydrill/internal/kv"
)

// UsageKey is the key-value key holding the usage table.
const UsageKey = "usage"

// UsageStore persists the usage table in a key-value store.
type UsageStore struct {
	store  kv.Store
	logger *slog.Logger
}

// NewUsageStore returns a UsageStore backed by store.
func NewUsageStore(store kv.Store, logger *slog.Logger) *UsageStore {
	return &UsageStore{store: store, logger: logger}
}

// Load returns the persisted usage table. Missing, unreadable or malformed
// data yields an empty table so the caller can rebuild from discovery.
func (u *UsageStore) Load() []ImageRecord {
	raw, ok, err := u.store.Get(UsageKey)
	if err != nil {
		u.logger.Warn("usage table unreadable, starting empty", "err", err)
		return []ImageRecord{}
	}
	if !ok || raw == "" {
		return []ImageRecord{}
	}
	var records []ImageRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		u.logger.Warn("usage table corrupt, starting empty", "err", err)
		return []ImageRecord{}
	}

	out := make([]ImageRecord, 0, len(records))
	for _, r := range records {
		if r.ID == "" {
			continue
		}
		if r.ShowCount < 0 {
			r.ShowCount = 0
		}
		out = append(out, r)
	}
	return out
}

// Save replaces the persisted usage table with records.
func (u *UsageStore) Save(records []ImageRecord) error {
	if records == nil {
		records = []ImageRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode usage table: %w", err)
	}
	if err := u.store.Set(UsageKey, string(data)); err != nil {
		return fmt.Errorf("save usage table: %w", err)
	}
	return nil
}
