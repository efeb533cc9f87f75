package catalog

import "time"

// Less orders records by selection priority: fewer shows first, then the
// least recently shown (never-shown before everything), then by id.
func Less(a, b ImageRecord) bool {
	if a.ShowCount != b.ShowCount {
		return a.ShowCount < b.ShowCount
	}
	if a.Shown() != b.Shown() {
		return !a.Shown()
	}
	if !a.LastShownAt.Equal(b.LastShownAt) {
		return a.LastShownAt.Before(b.LastShownAt)
	}
	return a.ID < b.ID
}

// SelectNext returns the record that should be shown next. ok is false only
// when records is empty. The input is not modified.
func SelectNext(records []ImageRecord) (next ImageRecord, ok bool) {
	if len(records) == 0 {
		return ImageRecord{}, false
	}
	best := records[0]
	for _, r := range records[1:] {
		if Less(r, best) {
			best = r
		}
	}
	return best, true
}

// MarkShown returns a copy of records in which the record for id has one more
// show, last shown at now. An unknown id returns records unchanged.
func MarkShown(id string, records []ImageRecord, now time.Time) []ImageRecord {
	i := indexOf(id, records)
	if i < 0 {
		return records
	}
	out := make([]ImageRecord, len(records))
	copy(out, records)
	out[i].ShowCount++
	out[i].LastShownAt = now
	return out
}

// AdjustCount returns a copy of records with the show count for id moved by
// delta, never below zero. LastShownAt is left untouched. An unknown id
// returns records unchanged.
func AdjustCount(id string, delta int, records []ImageRecord) ([]ImageRecord, error) {
	if delta != 1 && delta != -1 {
		return records, ErrInvalidDelta
	}
	i := indexOf(id, records)
	if i < 0 {
		return records, nil
	}
	out := make([]ImageRecord, len(records))
	copy(out, records)
	out[i].ShowCount = max(0, out[i].ShowCount+delta)
	return out, nil
}

func indexOf(id string, records []ImageRecord) int {
	for i, r := range records {
		if r.ID == id {
			return i
		}
	}
	return -1
}
