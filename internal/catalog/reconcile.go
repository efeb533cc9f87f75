package catalog

// Reconcile synchronises the usage table with the images that currently
// exist. Known images keep their statistics (with a refreshed path), new
// images start at zero shows and never shown, and images that were not
// discovered are dropped. The result follows discovery order.
func Reconcile(discovered []ImageFile, existing []ImageRecord) []ImageRecord {
	byID := make(map[string]ImageRecord, len(existing))
	for _, r := range existing {
		if _, dup := byID[r.ID]; !dup {
			byID[r.ID] = r
		}
	}

	out := make([]ImageRecord, 0, len(discovered))
	seen := make(map[string]bool, len(discovered))
	for _, f := range discovered {
		if seen[f.ID] {
			continue
		}
		seen[f.ID] = true
		if r, ok := byID[f.ID]; ok {
			r.Path = f.Path
			out = append(out, r)
			continue
		}
		out = append(out, ImageRecord{ID: f.ID, Path: f.Path})
	}
	return out
}
