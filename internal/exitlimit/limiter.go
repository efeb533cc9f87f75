// Package exitlimit bounds how often a practice session may be abandoned
// through the emergency exit within a rolling time window.
package exitlimit

import (
	"encoding/json"
	"time"

	"github.com/fakeyudi/storydrill/internal/clock"
)

// Record is the history of emergency exits. It may contain timestamps older
// than the window; they are only compacted when a new exit is recorded.
type Record struct {
	Timestamps []time.Time
}

type recordJSON struct {
	Timestamps []int64 `json:"timestamps"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	out := recordJSON{Timestamps: make([]int64, len(r.Timestamps))}
	for i, ts := range r.Timestamps {
		out.Timestamps[i] = clock.Millis(ts)
	}
	return json.Marshal(out)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var in recordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.Timestamps = make([]time.Time, len(in.Timestamps))
	for i, ms := range in.Timestamps {
		r.Timestamps[i] = clock.FromMillis(ms)
	}
	return nil
}

// Limiter allows at most Limit exits within any Window.
type Limiter struct {
	Limit  int
	Window time.Duration
}

// New returns a Limiter with a window of windowDays days.
func New(limit, windowDays int) Limiter {
	return Limiter{Limit: limit, Window: time.Duration(windowDays) * 24 * time.Hour}
}

func (l Limiter) cutoff(now time.Time) time.Time { return now.Add(-l.Window) }

// recent returns the timestamps strictly newer than the window cutoff.
func (l Limiter) recent(r Record, now time.Time) []time.Time {
	cutoff := l.cutoff(now)
	out := make([]time.Time, 0, len(r.Timestamps))
	for _, ts := range r.Timestamps {
		if ts.After(cutoff) {
			out = append(out, ts)
		}
	}
	return out
}

// Remaining returns how many exits are still available at now.
func (l Limiter) Remaining(r Record, now time.Time) int {
	return max(0, l.Limit-len(l.recent(r, now)))
}

// CanExit reports whether an exit is available at now.
func (l Limiter) CanExit(r Record, now time.Time) bool {
	return l.Remaining(r, now) > 0
}

// RecordExit records an exit at now. On success the returned record holds
// only in-window timestamps plus now. When the limit is reached r is
// returned unchanged and ok is false.
func (l Limiter) RecordExit(r Record, now time.Time) (updated Record, ok bool) {
	if !l.CanExit(r, now) {
		return r, false
	}
	return Record{Timestamps: append(l.recent(r, now), now)}, true
}

// NextAvailable returns when the oldest in-window exit leaves the window.
// ok is false when no exit is currently counted.
func (l Limiter) NextAvailable(r Record, now time.Time) (at time.Time, ok bool) {
	recent := l.recent(r, now)
	if len(recent) == 0 {
		return time.Time{}, false
	}
	oldest := recent[0]
	for _, ts := range recent[1:] {
		if ts.Before(oldest) {
			oldest = ts
		}
	}
	return oldest.Add(l.Window), true
}
