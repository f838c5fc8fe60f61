package tracker

import (
	"errors"
	"time"

	"github.com/alexanderramin/codeclock/internal/domain"
	"github.com/alexanderramin/codeclock/internal/eventlog"
	"github.com/alexanderramin/codeclock/internal/ledger"
)

// pendingWrite is a terminal flush the ledger refused; it is retried before
// the next write.
type pendingWrite struct {
	at      time.Time
	project string
	branch  string
	minutes float64
	reason  domain.StopReason
}

// grace returns how much of the elapsed time a reason discards.
func (t *Tracker) grace(reason domain.StopReason) time.Duration {
	switch reason {
	case domain.ReasonInactivity:
		return t.cfg.InactivityTimeout
	case domain.ReasonFocusTimeout:
		return t.cfg.FocusTimeout
	default:
		return 0
	}
}

// keepsSession reports whether the session continues under the same key
// after a flush for reason. A failed write for such a reason leaves the
// anchor in place so the next flush picks the time up.
func keepsSession(reason domain.StopReason) bool {
	return reason == domain.ReasonPeriodicSave || reason == domain.ReasonManualSave
}

// flush writes the live session's time since its anchor and re-anchors it
// at now. It never fails: rejected durations are dropped, storage errors
// keep the time either in the session or in the backlog.
func (t *Tracker) flush(now time.Time, reason domain.StopReason) {
	t.drainBacklog()

	s := t.session
	d := s.Elapsed(now) - t.grace(reason)
	if d <= 0 {
		s.StartedAt = now
		return
	}
	minutes := d.Minutes()

	err := t.ledger.Add(t.ctx, now, s.Project, s.Branch, minutes)
	switch {
	case err == nil:
		t.saved++
		t.observer.SessionFlushed(reason, minutes)
		t.events.Log(eventlog.Event{
			Kind:     eventlog.SessionSaved,
			Project:  s.Project,
			Branch:   s.Branch,
			Reason:   string(reason),
			Duration: d,
		})
	case errors.Is(err, ledger.ErrImplausibleDuration):
		t.logger.Warn("session duration rejected", "reason", reason, "minutes", minutes, "error", err)
	default:
		t.observer.FlushFailed(reason, err)
		if keepsSession(reason) {
			t.logger.Error("session save failed, will retry", "reason", reason, "error", err)
			return
		}
		t.logger.Error("session save failed, queued for retry", "reason", reason, "error", err)
		t.backlog = append(t.backlog, pendingWrite{
			at: now, project: s.Project, branch: s.Branch, minutes: minutes, reason: reason,
		})
	}
	s.StartedAt = now
}

// flushUnlessAway skips the write while focus is away: that stretch was
// already flushed when focus was lost and is not counted.
func (t *Tracker) flushUnlessAway(now time.Time, reason domain.StopReason) {
	if t.awaitingFocus {
		t.session.StartedAt = now
		return
	}
	t.flush(now, reason)
}

// drainBacklog retries queued writes in order, stopping at the first
// storage failure.
func (t *Tracker) drainBacklog() {
	for len(t.backlog) > 0 {
		p := t.backlog[0]
		err := t.ledger.Add(t.ctx, p.at, p.project, p.branch, p.minutes)
		if err != nil && !errors.Is(err, ledger.ErrImplausibleDuration) {
			t.logger.Warn("retrying queued session failed", "pending", len(t.backlog), "error", err)
			return
		}
		if err == nil {
			t.saved++
			t.observer.SessionFlushed(p.reason, p.minutes)
		}
		t.backlog = t.backlog[1:]
	}
}
