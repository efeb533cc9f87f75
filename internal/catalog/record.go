// Package catalog tracks which practice images exist and how often each has
// been shown, and picks the image a session should show next.
package catalog

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/fakeyudi/storydrill/internal/clock"
)

// ErrNoImages is returned when the catalog holds no images to show.
var ErrNoImages = errors.New("no images available")

// ErrInvalidDelta is returned by AdjustCount for deltas other than +1 and -1.
var ErrInvalidDelta = errors.New("count adjustment must be +1 or -1")

// ImageFile is one image found by a Discoverer.
type ImageFile struct {
	ID   string // file name, unique within the catalog
	Path string // slash-separated path relative to the images directory
}

// ImageRecord holds the usage statistics for one image.
// A zero LastShownAt means the image has never been shown.
type ImageRecord struct {
	ID          string
	Path        string
	ShowCount   int
	LastShownAt time.Time
}

// Shown reports whether the image has ever been displayed.
func (r ImageRecord) Shown() bool { return !r.LastShownAt.IsZero() }

// recordJSON is the persisted layout: lastShownAt is milliseconds since the
// Unix epoch, or null when the image has never been shown.
type recordJSON struct {
	ID          string `json:"id"`
	Path        string `json:"path"`
	ShowCount   int    `json:"showCount"`
	LastShownAt *int64 `json:"lastShownAt"`
}

func (r ImageRecord) MarshalJSON() ([]byte, error) {
	out := recordJSON{ID: r.ID, Path: r.Path, ShowCount: r.ShowCount}
	if r.Shown() {
		ms := clock.Millis(r.LastShownAt)
		out.LastShownAt = &ms
	}
	return json.Marshal(out)
}

func (r *ImageRecord) UnmarshalJSON(data []byte) error {
	var in recordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = ImageRecord{ID: in.ID, Path: in.Path, ShowCount: in.ShowCount}
	if in.LastShownAt != nil {
		r.LastShownAt = clock.FromMillis(*in.LastShownAt)
	}
	return nil
}
