// Package clock provides the time source and one-shot timers used by the
// tracker and the health scheduler.
//
// Periodic behaviour is built by re-arming a one-shot timer from its own
// callback, so every timer has exactly one pending fire and can always be
// canceled before it is replaced.
package clock

import "time"

// Clock supplies the current time and schedules callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending callback created by Clock.AfterFunc.
type Timer interface {
	// Stop cancels the callback. It reports whether the call stopped the
	// timer before it fired.
	Stop() bool
}

// Real is the wall clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
