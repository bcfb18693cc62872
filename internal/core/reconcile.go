package core

// Reconcile builds the working project collection for a session from a
// remote snapshot and the bundled fallback catalog.
//
// The remote snapshot is authoritative for presence and for Spent; the
// fallback supplies recovery values for fields a half-filled spreadsheet
// left blank or zero. An empty snapshot yields the fallback catalog
// unchanged, so a brand-new remote store still renders a full dashboard.
func Reconcile(remote, fallback []Project) []Project {
	if len(remote) == 0 {
		out := make([]Project, len(fallback))
		copy(out, fallback)
		return out
	}

	byID := make(map[int64]Project, len(fallback))
	for _, p := range fallback {
		if _, ok := byID[p.ID]; !ok {
			byID[p.ID] = p
		}
	}

	out := make([]Project, 0, len(remote))
	for _, rp := range remote {
		fb, ok := byID[rp.ID]
		if !ok {
			// Exists only remotely; passes through untouched.
			out = append(out, rp)
			continue
		}
		merged := rp
		if merged.Name == "" {
			merged.Name = fb.Name
		}
		if merged.Budget.Satang <= 0 {
			merged.Budget = fb.Budget
		}
		if merged.Group == "" {
			merged.Group = fb.Group
		}
		if merged.Category == "" {
			merged.Category = fb.Category
		}
		// Spent is never recovered from the fallback: the remote store is
		// the only writer of that field, and a remote zero is a real reset.
		out = append(out, merged)
	}
	return out
}

// DuplicateIDs reports ids that appear more than once, in first-seen order.
// Reconcile processes duplicate rows independently; callers that care log
// the result instead of silently double-merging.
func DuplicateIDs(projects []Project) []int64 {
	counts := make(map[int64]int, len(projects))
	for _, p := range projects {
		counts[p.ID]++
	}
	var dups []int64
	seen := make(map[int64]bool)
	for _, p := range projects {
		if counts[p.ID] > 1 && !seen[p.ID] {
			dups = append(dups, p.ID)
			seen[p.ID] = true
		}
	}
	return dups
}
