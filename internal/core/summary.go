package core

// GroupAll is the sentinel group filter that bypasses filtering.
const GroupAll = "all"

// Summary holds the rolled-up financials for a project collection.
type Summary struct {
	Budget    Money   `json:"budget"`
	Spent     Money   `json:"spent"`
	Remaining Money   `json:"remaining"`
	Percent   float64 `json:"percent"`
}

// Summarize totals budget and spent over the input. Percent is spent over
// budget; a zero total budget yields zero percent rather than an error.
func Summarize(projects []Project) Summary {
	var s Summary
	for _, p := range projects {
		s.Budget.Satang += p.Budget.Satang
		s.Spent.Satang += p.Spent.Satang
	}
	s.Remaining.Satang = s.Budget.Satang - s.Spent.Satang
	if s.Budget.Satang > 0 {
		s.Percent = float64(s.Spent.Satang) / float64(s.Budget.Satang) * 100
	}
	return s
}

// Series is the coarse project category the legacy id ranges encode. It is
// kept as an explicit derived value so the range convention lives in exactly
// one place.
type Series int

const (
	Series1 Series = 1 // ids below 200, operations budget
	Series2 Series = 2 // ids 200-299, academic development
	Series3 Series = 3 // ids 300 and up, special programs
)

func (s Series) String() string {
	switch s {
	case Series2:
		return "PJ2"
	case Series3:
		return "PJ3"
	default:
		return "PJ1"
	}
}

// SeriesOf classifies a project id. Ids below 100 land in the first series;
// the partition is exhaustive by construction.
func SeriesOf(id int64) Series {
	switch {
	case id >= 300:
		return Series3
	case id >= 200:
		return Series2
	default:
		return Series1
	}
}

// SeriesGroups partitions a collection by series, preserving input order
// within each partition.
type SeriesGroups struct {
	First  []Project
	Second []Project
	Third  []Project
}

func GroupBySeries(projects []Project) SeriesGroups {
	var g SeriesGroups
	for _, p := range projects {
		switch SeriesOf(p.ID) {
		case Series3:
			g.Third = append(g.Third, p)
		case Series2:
			g.Second = append(g.Second, p)
		default:
			g.First = append(g.First, p)
		}
	}
	return g
}

// FilterByGroup returns projects whose Group matches exactly. The GroupAll
// sentinel (or an empty filter) returns the input unchanged.
func FilterByGroup(projects []Project, group string) []Project {
	if group == "" || group == GroupAll {
		return projects
	}
	var out []Project
	for _, p := range projects {
		if p.Group == group {
			out = append(out, p)
		}
	}
	return out
}

// WithSpending keeps only projects with recorded spending, used to drop
// zero-activity rows from report views.
func WithSpending(projects []Project) []Project {
	var out []Project
	for _, p := range projects {
		if p.Spent.Satang > 0 {
			out = append(out, p)
		}
	}
	return out
}

// Groups lists the distinct group labels in first-seen order, for filter
// dropdowns.
func Groups(projects []Project) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range projects {
		if p.Group == "" || seen[p.Group] {
			continue
		}
		seen[p.Group] = true
		out = append(out, p.Group)
	}
	return out
}
