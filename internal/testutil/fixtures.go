package testutil

import (
	"time"

	"github.com/alexanderramin/codeclock/internal/domain"
)

// Epoch is a fixed local start time for clock-driven tests: a Wednesday
// morning well away from any day, week or month boundary.
var Epoch = time.Date(2024, time.March, 13, 9, 0, 0, 0, time.Local)

// Entry options
type EntryOption func(*domain.TimeEntry)

func WithDate(d time.Time) EntryOption {
	return func(e *domain.TimeEntry) {
		e.Date = domain.LocalDate(d)
	}
}

func WithBranch(b string) EntryOption {
	return func(e *domain.TimeEntry) {
		e.Branch = b
	}
}

// NewTestEntry builds an entry for today on branch "main".
func NewTestEntry(project string, minutes float64, opts ...EntryOption) domain.TimeEntry {
	e := domain.TimeEntry{
		Date:    domain.LocalDate(time.Now()),
		Project: project,
		Branch:  "main",
		Minutes: minutes,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}
