package catalog

import (
	"fmt"
	"sort"
)

// SortCriteria selects the ordering of the stats listing.
type SortCriteria string

const (
	SortDefault SortCriteria = "default" // selection priority
	SortNewest  SortCriteria = "newest"  // most recently shown first
	SortOldest  SortCriteria = "oldest"  // least recently shown first
	SortHighest SortCriteria = "highest" // most shows first
	SortLowest  SortCriteria = "lowest"  // fewest shows first
	SortName    SortCriteria = "name"
)

// SortOrders lists every criteria in the order the stats screen cycles them.
var SortOrders = []SortCriteria{SortDefault, SortNewest, SortOldest, SortHighest, SortLowest, SortName}

// ParseSort validates a criteria name; the empty string means SortDefault.
func ParseSort(s string) (SortCriteria, error) {
	if s == "" {
		return SortDefault, nil
	}
	for _, c := range SortOrders {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown sort %q (supported: default, newest, oldest, highest, lowest, name)", s)
}

// Next returns the criteria after c in SortOrders, wrapping around.
func (c SortCriteria) Next() SortCriteria {
	for i, o := range SortOrders {
		if o == c {
			return SortOrders[(i+1)%len(SortOrders)]
		}
	}
	return SortDefault
}

// Sort returns a sorted copy of records.
func Sort(records []ImageRecord, by SortCriteria) []ImageRecord {
	out := make([]ImageRecord, len(records))
	copy(out, records)

	var less func(a, b ImageRecord) bool
	switch by {
	case SortNewest:
		less = func(a, b ImageRecord) bool { return a.LastShownAt.After(b.LastShownAt) }
	case SortOldest:
		less = func(a, b ImageRecord) bool { return a.LastShownAt.Before(b.LastShownAt) }
	case SortHighest:
		less = func(a, b ImageRecord) bool { return a.ShowCount > b.ShowCount }
	case SortLowest:
		less = func(a, b ImageRecord) bool { return a.ShowCount < b.ShowCount }
	case SortName:
		less = func(a, b ImageRecord) bool { return a.ID < b.ID }
	default:
		less = Less
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
