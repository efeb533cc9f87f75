// Package kv provides the string key-value stores storydrill persists its
// usage table and exit record in. Every backend replaces a key's value as a
// whole: a reader never observes a partially written value.
package kv

import (
	"fmt"
	"path/filepath"
)

// Store is a minimal string key-value store.
type Store interface {
	// Get returns the value stored under key. ok is false when the key has
	// never been set.
	Get(key string) (value string, ok bool, err error)
	// Set replaces the value stored under key.
	Set(key, value string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open returns the store for backend rooted in dir.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case "", BackendFile:
		return OpenFile(filepath.Join(dir, "state"))
	case BackendBolt:
		return OpenBolt(filepath.Join(dir, "storydrill.db"))
	case BackendSQLite:
		return OpenSQLite(filepath.Join(dir, "storydrill.sqlite"))
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q (supported: file, bolt, sqlite, memory)", backend)
	}
}
