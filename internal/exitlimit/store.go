package exitlimit

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/fakeyudi/storydrill/internal/clock"
	"github.com/fakeyudi/storydrill/internal/kv"
)

// ExitKey is the key-value key holding the exit record.
const ExitKey = "exits"

// Store persists the exit record.
type Store struct {
	store  kv.Store
	logger *slog.Logger
}

// NewStore returns a Store backed by store.
func NewStore(store kv.Store, logger *slog.Logger) *Store {
	return &Store{store: store, logger: logger}
}

// Load returns the persisted record; missing or corrupt data loads as empty.
func (s *Store) Load() Record {
	raw, ok, err := s.store.Get(ExitKey)
	if err != nil {
		s.logger.Warn("exit record unreadable, starting empty", "err", err)
		return Record{}
	}
	if !ok || raw == "" {
		return Record{}
	}
	var r Record
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		s.logger.Warn("exit record corrupt, starting empty", "err", err)
		return Record{}
	}
	return r
}

// Save replaces the persisted record.
func (s *Store) Save(r Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode exit record: %w", err)
	}
	if err := s.store.Set(ExitKey, string(data)); err != nil {
		return fmt.Errorf("save exit record: %w", err)
	}
	return nil
}

// Guard applies a Limiter to the persisted record.
type Guard struct {
	limiter Limiter
	store   *Store
	clock   clock.Clock
	logger  *slog.Logger
}

// NewGuard returns a Guard.
func NewGuard(limiter Limiter, store *Store, c clock.Clock, logger *slog.Logger) *Guard {
	return &Guard{limiter: limiter, store: store, clock: c, logger: logger}
}

// Limit returns the configured number of exits per window.
func (g *Guard) Limit() int { return g.limiter.Limit }

// Remaining returns the exits available now. It never writes.
func (g *Guard) Remaining() int {
	return g.limiter.Remaining(g.store.Load(), g.clock.Now())
}

// NextAvailable returns when the oldest counted exit leaves the window.
func (g *Guard) NextAvailable() (time.Time, bool) {
	return g.limiter.NextAvailable(g.store.Load(), g.clock.Now())
}

// TryExit records an exit if one is available. A denied exit returns
// (false, nil) and leaves the stored record untouched.
func (g *Guard) TryExit() (bool, error) {
	updated, ok := g.limiter.RecordExit(g.store.Load(), g.clock.Now())
	if !ok {
		g.logger.Info("emergency exit denied", "limit", g.limiter.Limit, "window", g.limiter.Window)
		return false, nil
	}
	if err := g.store.Save(updated); err != nil {
		return false, err
	}
	g.logger.Info("emergency exit recorded", "remaining", g.limiter.Limit-len(updated.Timestamps))
	return true, nil
}
