package tracker

import (
	"github.com/alexanderramin/codeclock/internal/domain"
	"github.com/alexanderramin/codeclock/internal/summary"
)

// Status is a copy of the tracker state taken after the last event.
type Status struct {
	State         domain.TrackerState
	Session       *domain.TrackingSession
	AwaitingFocus bool
	Config        Config
	// PendingWrites counts flushes waiting for storage to recover.
	PendingWrites int
	// Saved counts successful ledger writes. It equals the ledger's Add
	// count once the session re-anchored by the last write is published.
	Saved uint64
}

// IsActive reports whether time is currently being tracked.
func (s Status) IsActive() bool {
	return s.State == domain.StateTracking
}

func (s Status) CurrentProject() string {
	if s.Session == nil {
		return ""
	}
	return s.Session.Project
}

func (s Status) CurrentBranch() string {
	if s.Session == nil {
		return ""
	}
	return s.Session.Branch
}

// Live returns the session for aggregation, or nil while nothing counts.
func (s Status) Live() *summary.Live {
	if !s.IsActive() || s.AwaitingFocus || s.Session == nil {
		return nil
	}
	return &summary.Live{
		Project:        s.Session.Project,
		Branch:         s.Session.Branch,
		StartedAt:      s.Session.StartedAt,
		LastActivityAt: s.Session.LastActivityAt,
	}
}

// Status returns the latest published snapshot.
func (t *Tracker) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshot
}

func (t *Tracker) publish() {
	s := Status{
		State:         t.state,
		AwaitingFocus: t.awaitingFocus,
		Config:        t.cfg,
		PendingWrites: len(t.backlog),
		Saved:         t.saved,
	}
	if t.session != nil {
		sess := *t.session
		s.Session = &sess
	}
	t.mu.Lock()
	t.snapshot = s
	t.mu.Unlock()
}
