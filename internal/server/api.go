package server

import (
	"time"

	"github.com/alexanderramin/codeclock/internal/domain"
	"github.com/alexanderramin/codeclock/internal/summary"
)

// StatusResponse is returned by GET /status and by every tracking command.
type StatusResponse struct {
	State          domain.TrackerState `json:"state"`
	Active         bool                `json:"active"`
	AwaitingFocus  bool                `json:"awaiting_focus"`
	Project        string              `json:"project,omitempty"`
	Branch         string              `json:"branch,omitempty"`
	StartedAt      *time.Time          `json:"started_at,omitempty"`
	LastActivityAt *time.Time          `json:"last_activity_at,omitempty"`
	PendingWrites  int                 `json:"pending_writes"`
	ProjectToday   float64             `json:"project_today"`
	Totals         summary.Totals      `json:"totals"`
}

type Entry struct {
	Date    string  `json:"date"`
	Project string  `json:"project"`
	Branch  string  `json:"branch"`
	Minutes float64 `json:"minutes"`
}

type BranchesResponse struct {
	Project  string   `json:"project"`
	Branches []string `json:"branches"`
}

// ResetAllRequest must carry the confirmation phrase verbatim.
type ResetAllRequest struct {
	Confirm string `json:"confirm"`
}

type ResetResponse struct {
	Removed int `json:"removed"`
}

type ImportResponse struct {
	Imported int `json:"imported"`
}

type ReminderTestResponse struct {
	Response domain.ReminderResponse `json:"response"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func toEntries(rows []domain.TimeEntry) []Entry {
	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, Entry{Date: r.Date, Project: r.Project, Branch: r.Branch, Minutes: r.Minutes})
	}
	return out
}
