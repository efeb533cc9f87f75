package catalog

import (
	"testing"
	"time"

	"pgregory.net/rapid"
)

var base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// genRecord produces a record with a small id alphabet so ties are common.
func genRecord() *rapid.Generator[ImageRecord] {
	return rapid.Custom(func(t *rapid.T) ImageRecord {
		r := ImageRecord{
			ID:        rapid.StringMatching(`[a-e]{1,3}\.jpg`).Draw(t, "id"),
			ShowCount: rapid.IntRange(0, 4).Draw(t, "count"),
		}
		if rapid.Bool().Draw(t, "shown") {
			r.LastShownAt = base.Add(time.Duration(rapid.IntRange(0, 5).Draw(t, "minutes")) * time.Minute)
		}
		r.Path = "images/" + r.ID
		return r
	})
}

func genRecords(minLen int) *rapid.Generator[[]ImageRecord] {
	return rapid.SliceOfNDistinct(genRecord(), minLen, 12, func(r ImageRecord) string { return r.ID })
}

// Feature: storydrill, Property: selection never prefers a more-shown image
func TestSelectNextMinimisesShowCount(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		records := genRecords(1).Draw(t, "records")

		got, ok := SelectNext(records)
		if !ok {
			t.Fatal("SelectNext returned none for a non-empty table")
		}
		minCount := records[0].ShowCount
		for _, r := range records {
			minCount = min(minCount, r.ShowCount)
		}
		if got.ShowCount > minCount {
			t.Fatalf("selected %s with count %d, minimum is %d", got.ID, got.ShowCount, minCount)
		}
		for _, r := range records {
			if Less(r, got) {
				t.Fatalf("%s ranks before selected %s", r.ID, got.ID)
			}
		}
	})
}

// Feature: storydrill, Property: never-shown ties break by id
func TestSelectNextNeverShownTieBreak(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ids := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-z]{1,6}`), 2, 10, rapid.ID[string]).Draw(t, "ids")
		count := rapid.IntRange(0, 3).Draw(t, "count")

		records := make([]ImageRecord, len(ids))
		smallest := ids[0]
		for i, id := range ids {
			records[i] = ImageRecord{ID: id, ShowCount: count}
			if id < smallest {
				smallest = id
			}
		}

		got, _ := SelectNext(records)
		if got.ID != smallest {
			t.Fatalf("got %q, want lexicographically smallest %q", got.ID, smallest)
		}
	})
}

// Feature: storydrill, Property: selection does not modify its input
func TestSelectNextIsPure(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		records := genRecords(0).Draw(t, "records")
		before := make([]ImageRecord, len(records))
		copy(before, records)

		SelectNext(records)

		for i := range records {
			if !sameRecord(records[i], before[i]) {
				t.Fatalf("record %d changed: %+v -> %+v", i, before[i], records[i])
			}
		}
	})
}

func TestSelectNextEmpty(t *testing.T) {
	if _, ok := SelectNext(nil); ok {
		t.Fatal("expected none for an empty table")
	}
}

func TestSelectNextScenarios(t *testing.T) {
	shownAt := time.UnixMilli(1000)
	tests := []struct {
		name    string
		records []ImageRecord
		want    string
	}{
		{
			name:    "lexicographic tie-break",
			records: []ImageRecord{{ID: "b"}, {ID: "a"}},
			want:    "a",
		},
		{
			name:    "lower count wins",
			records: []ImageRecord{{ID: "a", ShowCount: 1, LastShownAt: shownAt}, {ID: "b"}},
			want:    "b",
		},
		{
			name: "never shown beats shown at equal count",
			records: []ImageRecord{
				{ID: "a", ShowCount: 2, LastShownAt: time.UnixMilli(0)},
				{ID: "z", ShowCount: 2},
			},
			want: "z",
		},
		{
			name: "oldest show wins at equal count",
			records: []ImageRecord{
				{ID: "a", ShowCount: 1, LastShownAt: shownAt.Add(time.Hour)},
				{ID: "b", ShowCount: 1, LastShownAt: shownAt},
			},
			want: "b",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SelectNext(tt.records)
			if !ok || got.ID != tt.want {
				t.Fatalf("got (%q, %v), want %q", got.ID, ok, tt.want)
			}
		})
	}
}

func TestMarkShownThenSelect(t *testing.T) {
	records := []ImageRecord{{ID: "a"}, {ID: "b"}}
	now := time.UnixMilli(1000)

	updated := MarkShown("a", records, now)

	if records[0].ShowCount != 0 {
		t.Fatal("MarkShown mutated its input")
	}
	if updated[0].ShowCount != 1 || !updated[0].LastShownAt.Equal(now) {
		t.Fatalf("unexpected record after MarkShown: %+v", updated[0])
	}
	if got, _ := SelectNext(updated); got.ID != "b" {
		t.Fatalf("expected b after showing a, got %q", got.ID)
	}
}

func TestMarkShownUnknownIDIsNoop(t *testing.T) {
	records := []ImageRecord{{ID: "a", ShowCount: 3}}
	got := MarkShown("missing", records, base)
	if len(got) != 1 || got[0].ShowCount != 3 || got[0].Shown() {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestAdjustCount(t *testing.T) {
	shown := base.Add(time.Hour)
	records := []ImageRecord{{ID: "a", ShowCount: 1, LastShownAt: shown}, {ID: "b"}}

	up, err := AdjustCount("a", 1, records)
	if err != nil {
		t.Fatalf("AdjustCount: %v", err)
	}
	if up[0].ShowCount != 2 || !up[0].LastShownAt.Equal(shown) {
		t.Fatalf("increment: got %+v", up[0])
	}

	down, err := AdjustCount("b", -1, records)
	if err != nil {
		t.Fatalf("AdjustCount: %v", err)
	}
	if down[1].ShowCount != 0 {
		t.Fatalf("count went below zero: %d", down[1].ShowCount)
	}

	same, err := AdjustCount("nope", 1, records)
	if err != nil || len(same) != 2 || same[0].ShowCount != 1 {
		t.Fatalf("unknown id: got %+v, %v", same, err)
	}

	if _, err := AdjustCount("a", 2, records); err != ErrInvalidDelta {
		t.Fatalf("expected ErrInvalidDelta, got %v", err)
	}
}

func TestSortCriteria(t *testing.T) {
	records := []ImageRecord{
		{ID: "c", ShowCount: 2, LastShownAt: base.Add(2 * time.Hour)},
		{ID: "a", ShowCount: 0},
		{ID: "b", ShowCount: 5, LastShownAt: base},
	}
	tests := []struct {
		by   SortCriteria
		want string
	}{
		{SortDefault, "a,c,b"},
		{SortNewest, "c,b,a"},
		{SortOldest, "a,b,c"},
		{SortHighest, "b,c,a"},
		{SortLowest, "a,c,b"},
		{SortName, "a,b,c"},
	}
	for _, tt := range tests {
		t.Run(string(tt.by), func(t *testing.T) {
			if got := ids(Sort(records, tt.by)); got != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
	if records[0].ID != "c" {
		t.Fatal("Sort mutated its input")
	}
}

func TestParseSort(t *testing.T) {
	if c, err := ParseSort(""); err != nil || c != SortDefault {
		t.Fatalf("empty: got %q, %v", c, err)
	}
	if c, err := ParseSort("name"); err != nil || c != SortName {
		t.Fatalf("name: got %q, %v", c, err)
	}
	if _, err := ParseSort("random"); err == nil {
		t.Fatal("expected error for unknown sort")
	}
	if SortName.Next() != SortDefault {
		t.Fatal("Next should wrap around")
	}
}

func ids(records []ImageRecord) string {
	s := ""
	for i, r := range records {
		if i > 0 {
			s += ","
		}
		s += r.ID
	}
	return s
}

func sameRecord(a, b ImageRecord) bool {
	return a.ID == b.ID && a.Path == b.Path && a.ShowCount == b.ShowCount && a.LastShownAt.Equal(b.LastShownAt)
}
