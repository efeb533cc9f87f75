package kv_test

import (
	"path/filepath"
	"testing"

	"pgregory.net/rapid"

	"github.com/fakeyudi/storydrill/internal/kv"
)

func openAll(t *testing.T) map[string]kv.Store {
	t.Helper()
	stores := map[string]kv.Store{}
	for _, backend := range []string{kv.BackendFile, kv.BackendBolt, kv.BackendSQLite, kv.BackendMemory} {
		s, err := kv.Open(backend, t.TempDir())
		if err != nil {
			t.Fatalf("Open(%s): %v", backend, err)
		}
		t.Cleanup(func() { s.Close() })
		stores[backend] = s
	}
	return stores
}

// Feature: storydrill, Property: key-value round-trip on every backend
func TestStoreRoundTrip(t *testing.T) {
	stores := openAll(t)
	key := rapid.StringMatching(`[a-zA-Z][a-zA-Z0-9_-]{0,20}`)

	rapid.Check(t, func(rt *rapid.T) {
		k := key.Draw(rt, "key")
		v := rapid.StringMatching(`[ -~]{0,64}`).Draw(rt, "value")
		for name, s := range stores {
			if err := s.Set(k, v); err != nil {
				rt.Fatalf("%s Set: %v", name, err)
			}
			got, ok, err := s.Get(k)
			if err != nil {
				rt.Fatalf("%s Get: %v", name, err)
			}
			if !ok || got != v {
				rt.Fatalf("%s: got (%q, %v), want (%q, true)", name, got, ok, v)
			}
		}
	})
}

func TestStoreMissingKey(t *testing.T) {
	for name, s := range openAll(t) {
		_, ok, err := s.Get("absent")
		if err != nil {
			t.Fatalf("%s Get: %v", name, err)
		}
		if ok {
			t.Errorf("%s: expected ok=false for a key that was never set", name)
		}
	}
}

func TestStoreSetReplacesValue(t *testing.T) {
	for name, s := range openAll(t) {
		if err := s.Set("usage", `[{"id":"a"}]`); err != nil {
			t.Fatalf("%s Set: %v", name, err)
		}
		if err := s.Set("usage", `[]`); err != nil {
			t.Fatalf("%s Set: %v", name, err)
		}
		got, _, err := s.Get("usage")
		if err != nil {
			t.Fatalf("%s Get: %v", name, err)
		}
		if got != "[]" {
			t.Errorf("%s: got %q, want %q", name, got, "[]")
		}
	}
}

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	s, err := kv.OpenBolt(path)
	if err != nil {
		t.Fatalf("OpenBolt: %v", err)
	}
	if err := s.Set("exits", `{"timestamps":[1]}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = kv.OpenBolt(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, ok, err := s.Get("exits")
	if err != nil || !ok || got != `{"timestamps":[1]}` {
		t.Fatalf("after reopen got (%q, %v, %v)", got, ok, err)
	}
}

func TestFileStoreRejectsPathKeys(t *testing.T) {
	s, err := kv.OpenFile(t.TempDir())
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	for _, key := range []string{"", "..", "a/b", `a\b`} {
		if err := s.Set(key, "x"); err == nil {
			t.Errorf("Set(%q): expected error", key)
		}
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := kv.Open("redis", t.TempDir()); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
