package exitlimit

import (
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/fakeyudi/storydrill/internal/clock"
	"github.com/fakeyudi/storydrill/internal/kv"
)

var (
	discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	week          = 7 * 24 * time.Hour
	t0            = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)

func genRecord(now time.Time) *rapid.Generator[Record] {
	return rapid.Custom(func(t *rapid.T) Record {
		n := rapid.IntRange(0, 10).Draw(t, "n")
		r := Record{}
		for i := 0; i < n; i++ {
			ago := rapid.Int64Range(0, int64(3*week/time.Minute)).Draw(t, "ago_minutes")
			r.Timestamps = append(r.Timestamps, now.Add(-time.Duration(ago)*time.Minute))
		}
		return r
	})
}

// Feature: storydrill, Property: remaining stays within [0, limit]
func TestRemainingBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		limit := rapid.IntRange(0, 5).Draw(t, "limit")
		l := New(limit, 7)
		r := genRecord(t0).Draw(t, "record")

		got := l.Remaining(r, t0)
		if got < 0 || got > limit {
			t.Fatalf("Remaining = %d, want within [0, %d]", got, limit)
		}
		if l.CanExit(r, t0) != (got > 0) {
			t.Fatalf("CanExit disagrees with Remaining %d", got)
		}
	})
}

// Feature: storydrill, Property: limit exits succeed, the next one fails
func TestRecordExitExhaustsLimit(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		limit := rapid.IntRange(1, 6).Draw(t, "limit")
		l := New(limit, 7)

		r := Record{}
		now := t0
		for i := 0; i < limit; i++ {
			var ok bool
			r, ok = l.RecordExit(r, now)
			if !ok {
				t.Fatalf("exit %d of %d denied", i+1, limit)
			}
			now = now.Add(time.Duration(rapid.IntRange(1, 3600).Draw(t, "gap_seconds")) * time.Second)
		}

		before := len(r.Timestamps)
		after, ok := l.RecordExit(r, now)
		if ok {
			t.Fatalf("exit %d should have been denied", limit+1)
		}
		if len(after.Timestamps) != before {
			t.Fatalf("denied exit changed the record: %d -> %d", before, len(after.Timestamps))
		}
	})
}

func TestRollingWindowScenario(t *testing.T) {
	l := New(3, 7)
	r := Record{}

	for i := 0; i < 3; i++ {
		var ok bool
		r, ok = l.RecordExit(r, t0.Add(time.Duration(i)*24*time.Hour))
		if !ok {
			t.Fatalf("exit %d denied", i+1)
		}
	}

	fourth := t0.Add(3 * 24 * time.Hour)
	if _, ok := l.RecordExit(r, fourth); ok {
		t.Fatal("fourth exit in the same week should be denied")
	}
	if got := l.Remaining(r, fourth); got != 0 {
		t.Fatalf("Remaining = %d, want 0", got)
	}

	// Exactly one window after the oldest exit it no longer counts.
	later := t0.Add(week)
	if got := l.Remaining(r, later); got != 1 {
		t.Fatalf("Remaining after oldest expired = %d, want 1", got)
	}
	r, ok := l.RecordExit(r, later)
	if !ok {
		t.Fatal("exit after the oldest left the window should succeed")
	}
	if len(r.Timestamps) != 3 {
		t.Fatalf("stale entry not compacted: %v", r.Timestamps)
	}
}

func TestNextAvailable(t *testing.T) {
	l := New(2, 7)
	if _, ok := l.NextAvailable(Record{}, t0); ok {
		t.Fatal("expected ok=false for an empty record")
	}
	r := Record{Timestamps: []time.Time{t0.Add(-2 * week), t0.Add(-time.Hour), t0.Add(-2 * time.Hour)}}
	at, ok := l.NextAvailable(r, t0)
	if !ok || !at.Equal(t0.Add(-2*time.Hour).Add(week)) {
		t.Fatalf("got (%v, %v)", at, ok)
	}
}

func TestStoreFailsSoft(t *testing.T) {
	store := kv.NewMemory()
	_ = store.Set(ExitKey, `{"timestamps":"oops"}`)
	if r := NewStore(store, discardLogger).Load(); len(r.Timestamps) != 0 {
		t.Fatalf("expected empty record, got %v", r.Timestamps)
	}
}

func TestGuardOnlyCompactsOnWrite(t *testing.T) {
	store := kv.NewMemory()
	stale := `{"timestamps":[1000]}`
	_ = store.Set(ExitKey, stale)

	c := clock.NewManual(t0)
	g := NewGuard(New(1, 7), NewStore(store, discardLogger), c, discardLogger)

	if got := g.Remaining(); got != 1 {
		t.Fatalf("Remaining = %d, want 1", got)
	}
	if raw, _, _ := store.Get(ExitKey); raw != stale {
		t.Fatalf("availability check rewrote storage: %s", raw)
	}

	ok, err := g.TryExit()
	if err != nil || !ok {
		t.Fatalf("TryExit = (%v, %v)", ok, err)
	}
	want := `{"timestamps":[` + strconv.FormatInt(t0.UnixMilli(), 10) + `]}`
	if raw, _, _ := store.Get(ExitKey); raw != want {
		t.Fatalf("stored %s, want %s", raw, want)
	}

	ok, err = g.TryExit()
	if err != nil || ok {
		t.Fatalf("second TryExit = (%v, %v), want denied", ok, err)
	}
	if raw, _, _ := store.Get(ExitKey); raw != want {
		t.Fatalf("denied exit rewrote storage: %s", raw)
	}
}
