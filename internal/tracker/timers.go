package tracker

import "time"

type timerRole int

const (
	roleInactivity timerRole = iota
	roleFocus
	roleSave
	rolePoll
)

var allRoles = []timerRole{roleInactivity, roleFocus, roleSave, rolePoll}

func (r timerRole) String() string {
	switch r {
	case roleInactivity:
		return "inactivity"
	case roleFocus:
		return "focus"
	case roleSave:
		return "save"
	case rolePoll:
		return "branch poll"
	default:
		return "unknown"
	}
}

// arm replaces any pending timer for role. Each arm bumps the role's
// generation so a fire that was already queued is recognised as stale.
func (t *Tracker) arm(role timerRole, d time.Duration) {
	t.cancel(role)
	gen := t.gens[role]
	t.timers[role] = t.clock.AfterFunc(d, func() {
		t.post(timerEvent{role: role, gen: gen})
	})
}

func (t *Tracker) cancel(role timerRole) {
	if timer, ok := t.timers[role]; ok {
		timer.Stop()
		delete(t.timers, role)
	}
	t.gens[role]++
}
