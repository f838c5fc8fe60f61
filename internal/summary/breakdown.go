package summary

import "github.com/alexanderramin/codeclock/internal/domain"

// Bucket is one keyed sum.
type Bucket struct {
	Key     string  `json:"key"`
	Minutes float64 `json:"minutes"`
}

// Report is the full breakdown shown by `codeclock summary`.
type Report struct {
	ByDay     []Bucket `json:"by_day"`
	ByProject []Bucket `json:"by_project"`
	ByBranch  []Bucket `json:"by_branch"`
	Total     float64  `json:"total"`
}

// accumulator keeps keyed sums in order of first appearance.
type accumulator struct {
	order []string
	sums  map[string]float64
}

func newAccumulator() *accumulator {
	return &accumulator{sums: make(map[string]float64)}
}

func (a *accumulator) add(key string, m float64) {
	if _, ok := a.sums[key]; !ok {
		a.order = append(a.order, key)
	}
	a.sums[key] += m
}

func (a *accumulator) buckets() []Bucket {
	out := make([]Bucket, 0, len(a.order))
	for _, k := range a.order {
		out = append(out, Bucket{Key: k, Minutes: a.sums[k]})
	}
	return out
}

// Build computes every breakdown in one pass. The live session adds its key
// even when its minutes do not count yet, so a fresh session shows up at 0.
func Build(in Input) Report {
	days, projects, branches := newAccumulator(), newAccumulator(), newAccumulator()
	var total float64
	for _, e := range in.Entries {
		days.add(e.Date, e.Minutes)
		projects.add(e.Project, e.Minutes)
		branches.add(e.Branch, e.Minutes)
		total += e.Minutes
	}
	if in.Live != nil {
		m, _ := in.LiveMinutes()
		days.add(domain.LocalDate(in.Now), m)
		projects.add(in.Live.Project, m)
		branches.add(in.Live.Branch, m)
		total += m
	}
	return Report{
		ByDay:     days.buckets(),
		ByProject: projects.buckets(),
		ByBranch:  branches.buckets(),
		Total:     total,
	}
}

func ByProject(in Input) []Bucket { return Build(in).ByProject }

func ByBranch(in Input) []Bucket { return Build(in).ByBranch }

func ByDay(in Input) []Bucket { return Build(in).ByDay }

// Minutes looks up key in buckets, returning false when absent.
func Minutes(buckets []Bucket, key string) (float64, bool) {
	for _, b := range buckets {
		if b.Key == key {
			return b.Minutes, true
		}
	}
	return 0, false
}
