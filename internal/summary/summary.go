// Package summary computes totals and breakdowns over ledger entries. Every
// function is pure: the caller passes the entries, the live session (if any)
// and the current time.
package summary

import (
	"time"

	"github.com/alexanderramin/codeclock/internal/domain"
)

// Live describes the in-flight session as published by the tracker.
type Live struct {
	Project        string
	Branch         string
	StartedAt      time.Time
	LastActivityAt time.Time
}

// Input is everything an aggregation needs.
type Input struct {
	Entries []domain.TimeEntry
	// Live is nil unless the tracker is tracking with focus.
	Live              *Live
	Now               time.Time
	InactivityTimeout time.Duration
}

// LiveMinutes returns the live session's elapsed minutes and whether they
// count. They count only while the last activity is inside the inactivity
// window.
func (in Input) LiveMinutes() (float64, bool) {
	if in.Live == nil {
		return 0, false
	}
	if in.Now.Sub(in.Live.LastActivityAt) >= in.InactivityTimeout {
		return 0, false
	}
	elapsed := in.Now.Sub(in.Live.StartedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	return elapsed.Minutes(), true
}

// TotalSince sums entries dated in [startDate, today] plus the live session.
// An empty startDate has no lower bound.
func TotalSince(in Input, startDate string) float64 {
	today := domain.LocalDate(in.Now)
	var total float64
	for _, e := range in.Entries {
		if (startDate == "" || e.Date >= startDate) && e.Date <= today {
			total += e.Minutes
		}
	}
	if m, ok := in.LiveMinutes(); ok {
		total += m
	}
	return total
}

func Today(in Input) float64 {
	return TotalSince(in, domain.LocalDate(in.Now))
}

// ThisWeek counts from the most recent Sunday.
func ThisWeek(in Input) float64 {
	return TotalSince(in, domain.LocalDate(WeekStart(in.Now)))
}

func ThisMonth(in Input) float64 {
	n := in.Now.Local()
	return TotalSince(in, domain.LocalDate(time.Date(n.Year(), n.Month(), 1, 0, 0, 0, 0, time.Local)))
}

func ThisYear(in Input) float64 {
	n := in.Now.Local()
	return TotalSince(in, domain.LocalDate(time.Date(n.Year(), time.January, 1, 0, 0, 0, 0, time.Local)))
}

// AllTime has no date bounds at all, so future-dated rows count too.
func AllTime(in Input) float64 {
	var total float64
	for _, e := range in.Entries {
		total += e.Minutes
	}
	if m, ok := in.LiveMinutes(); ok {
		total += m
	}
	return total
}

// WeekStart returns local midnight of the Sunday on or before t.
func WeekStart(t time.Time) time.Time {
	l := t.Local()
	return time.Date(l.Year(), l.Month(), l.Day()-int(l.Weekday()), 0, 0, 0, 0, time.Local)
}

// Totals is the status-bar set of totals.
type Totals struct {
	Today     float64 `json:"today"`
	ThisWeek  float64 `json:"this_week"`
	ThisMonth float64 `json:"this_month"`
	ThisYear  float64 `json:"this_year"`
	AllTime   float64 `json:"all_time"`
}

func ComputeTotals(in Input) Totals {
	return Totals{
		Today:     Today(in),
		ThisWeek:  ThisWeek(in),
		ThisMonth: ThisMonth(in),
		ThisYear:  ThisYear(in),
		AllTime:   AllTime(in),
	}
}

// CurrentProjectToday returns today's minutes for project, including the
// live session when it belongs to project.
func CurrentProjectToday(in Input, project string) float64 {
	today := domain.LocalDate(in.Now)
	var total float64
	for _, e := range in.Entries {
		if e.Date == today && e.Project == project {
			total += e.Minutes
		}
	}
	if in.Live != nil && in.Live.Project == project {
		if m, ok := in.LiveMinutes(); ok {
			total += m
		}
	}
	return total
}
