package catalog

import (
	"fmt"
	"log/slog"

	"github.com/fakeyudi/storydrill/internal/clock"
)

// Library is the in-memory image catalog kept in sync with discovery and
// persisted after every change.
type Library struct {
	discoverer Discoverer
	usage      *UsageStore
	clock      clock.Clock
	logger     *slog.Logger
	records    []ImageRecord
}

// NewLibrary returns an empty Library; call Reload to populate it.
func NewLibrary(d Discoverer, usage *UsageStore, c clock.Clock, logger *slog.Logger) *Library {
	return &Library{discoverer: d, usage: usage, clock: c, logger: logger}
}

// Reload discovers images, reconciles them with the persisted table and saves
// the result. It returns ErrNoImages when nothing was discovered; in that
// case the persisted table is left alone.
func (l *Library) Reload() error {
	files, err := l.discoverer.Discover()
	if err != nil {
		return fmt.Errorf("discover images: %w", err)
	}
	if len(files) == 0 {
		l.records = nil
		return ErrNoImages
	}
	records := Reconcile(files, l.usage.Load())
	if err := l.usage.Save(records); err != nil {
		return err
	}
	l.records = records
	l.logger.Debug("catalog reloaded", "images", len(records))
	return nil
}

// Len returns the number of images in the catalog.
func (l *Library) Len() int { return len(l.records) }

// Images returns a copy of the catalog.
func (l *Library) Images() []ImageRecord {
	out := make([]ImageRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Next returns the image that should be shown next.
func (l *Library) Next() (ImageRecord, bool) {
	return SelectNext(l.records)
}

// MarkShown records a show of id now and persists the table.
func (l *Library) MarkShown(id string) error {
	l.records = MarkShown(id, l.records, l.clock.Now())
	return l.usage.Save(l.records)
}

// Adjust moves the show count of id by delta (+1 or -1) and persists the table.
func (l *Library) Adjust(id string, delta int) error {
	records, err := AdjustCount(id, delta, l.records)
	if err != nil {
		return err
	}
	l.records = records
	return l.usage.Save(l.records)
}

// Replace persists records as the usage table and reloads, so imported
// statistics are reconciled against the images that actually exist.
func (l *Library) Replace(records []ImageRecord) error {
	if err := l.usage.Save(records); err != nil {
		return err
	}
	return l.Reload()
}
