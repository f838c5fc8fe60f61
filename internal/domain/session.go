package domain

import "time"

// TrackingSession is one contiguous stretch of presumed-active time.
// It only exists in memory while the tracker is tracking.
type TrackingSession struct {
	Project        string
	Branch         string
	Path           string
	StartedAt      time.Time
	LastActivityAt time.Time
}

// Elapsed returns the raw time since the session anchor.
func (s TrackingSession) Elapsed(now time.Time) time.Duration {
	d := now.Sub(s.StartedAt)
	if d < 0 {
		return 0
	}
	return d
}

// IdleFor returns how long ago the last activity signal arrived.
func (s TrackingSession) IdleFor(now time.Time) time.Duration {
	return now.Sub(s.LastActivityAt)
}
