package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/fakeyudi/storydrill/internal/catalog"
	"github.com/fakeyudi/storydrill/internal/clock"
	"github.com/fakeyudi/storydrill/internal/exitlimit"
	"github.com/fakeyudi/storydrill/internal/kv"
	"github.com/fakeyudi/storydrill/internal/session"
)

// appClock is the time source for every command; tests replace it.
var appClock clock.Clock = clock.System{}

// app bundles the persistent components a command works with.
type app struct {
	store kv.Store
	clock clock.Clock
	lib   *catalog.Library
	guard *exitlimit.Guard
}

// openApp opens the configured store and builds the catalog and exit guard.
func openApp() (*app, error) {
	dir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolving data directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	store, err := kv.Open(cfg.Store, dir)
	if err != nil {
		return nil, err
	}

	c := appClock
	lib := catalog.NewLibrary(
		catalog.DirDiscoverer{Dir: cfg.ImagesDir},
		catalog.NewUsageStore(store, logger),
		c, logger,
	)
	guard := exitlimit.NewGuard(
		exitlimit.New(cfg.Exits.Limit, cfg.Exits.WindowDays),
		exitlimit.NewStore(store, logger),
		c, logger,
	)
	return &app{store: store, clock: c, lib: lib, guard: guard}, nil
}

func (a *app) Close() error { return a.store.Close() }

// reload refreshes the catalog. An empty catalog is not an error here; the
// caller decides what to tell the user.
func (a *app) reload() error {
	if err := a.lib.Reload(); err != nil && !errors.Is(err, catalog.ErrNoImages) {
		return err
	}
	return nil
}

// settings converts the configured timings for the session machine.
func settings() session.Settings {
	d := cfg.Durations
	return session.Settings{
		Durations: session.Durations{
			Countdown: d.Countdown,
			Observe:   d.Observe,
			Write:     d.Write,
			Revise:    d.Revise,
			Narrate:   d.Narrate,
			EndPause:  d.EndPause,
		},
		TATImages: cfg.TATImages,
	}
}
