package domain

import (
	"math"
	"time"
)

// DateLayout is the calendar-date format used for entry keys.
const DateLayout = "2006-01-02"

// UnknownBranch is recorded when no branch can be resolved for a workspace.
const UnknownBranch = "unknown"

// TimeEntry is the aggregated coding time for one (date, project, branch) key.
type TimeEntry struct {
	Date    string
	Project string
	Branch  string
	Minutes float64
}

// EntryKey identifies a TimeEntry row.
type EntryKey struct {
	Date    string
	Project string
	Branch  string
}

func (e TimeEntry) Key() EntryKey {
	return EntryKey{Date: e.Date, Project: e.Project, Branch: e.Branch}
}

// LocalDate formats t as a local calendar date.
func LocalDate(t time.Time) string {
	return t.Local().Format(DateLayout)
}

// RoundMinutes rounds to two decimal places.
func RoundMinutes(m float64) float64 {
	return math.Round(m*100) / 100
}
