package health

import (
	"time"

	"github.com/alexanderramin/codeclock/internal/domain"
)

// Reminder is what the host is asked to show.
type Reminder struct {
	Kind        domain.ReminderKind `json:"kind"`
	Message     string              `json:"message"`
	Severity    string              `json:"severity"`
	Modal       bool                `json:"modal"`
	DoneLabel   string              `json:"done_label"`
	SnoozeLabel string              `json:"snooze_label"`
	// Snooze is how long a snoozed reminder waits before returning.
	Snooze time.Duration `json:"-"`
}

var catalog = map[domain.ReminderKind]Reminder{
	domain.ReminderEyeRest: {
		Kind:        domain.ReminderEyeRest,
		Message:     "EYE HEALTH REMINDER: Look at something 20 feet away for 20 seconds (20-20-20 rule)",
		Severity:    "warning",
		DoneLabel:   "I just did it!",
		SnoozeLabel: "Remind me in 5 min",
		Snooze:      5 * time.Minute,
	},
	domain.ReminderStretch: {
		Kind:        domain.ReminderStretch,
		Message:     "STRETCH REMINDER: Stand up and stretch your back and neck",
		Severity:    "warning",
		DoneLabel:   "I just stretched!",
		SnoozeLabel: "Remind me in 10 min",
		Snooze:      10 * time.Minute,
	},
	domain.ReminderBreak: {
		Kind:        domain.ReminderBreak,
		Message:     "HEALTH BREAK REQUIRED: You've been coding for 2+ hours. Take a break now.",
		Severity:    "error",
		DoneLabel:   "I took a break!",
		SnoozeLabel: "Remind me in 15 min",
		Snooze:      15 * time.Minute,
	},
}

// ReminderFor returns the canned reminder for kind.
func ReminderFor(kind domain.ReminderKind, modal bool) Reminder {
	r := catalog[kind]
	r.Modal = modal
	return r
}

var kinds = []domain.ReminderKind{domain.ReminderEyeRest, domain.ReminderStretch, domain.ReminderBreak}
