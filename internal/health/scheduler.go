// Package health runs the eye-rest, stretch and break reminders and holds
// the tracker in a health-break pause while a modal reminder is open.
package health

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alexanderramin/codeclock/internal/clock"
	"github.com/alexanderramin/codeclock/internal/domain"
)

// Settings configures the scheduler.
type Settings struct {
	Enabled bool
	Modal   bool
	EyeRest time.Duration
	Stretch time.Duration
	Break   time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		Enabled: true,
		Modal:   true,
		EyeRest: 20 * time.Minute,
		Stretch: 45 * time.Minute,
		Break:   120 * time.Minute,
	}
}

func (s Settings) interval(kind domain.ReminderKind) time.Duration {
	d := DefaultSettings()
	switch kind {
	case domain.ReminderEyeRest:
		if s.EyeRest > 0 {
			return s.EyeRest
		}
		return d.EyeRest
	case domain.ReminderStretch:
		if s.Stretch > 0 {
			return s.Stretch
		}
		return d.Stretch
	default:
		if s.Break > 0 {
			return s.Break
		}
		return d.Break
	}
}

// Notifier shows a reminder and blocks until the user answers it.
type Notifier interface {
	Remind(ctx context.Context, r Reminder) (domain.ReminderResponse, error)
}

// Pauser is the tracker side of a modal reminder.
type Pauser interface {
	HealthPause()
	HealthResume()
}

// Observer receives reminder telemetry.
type Observer interface {
	ReminderShown(kind domain.ReminderKind)
	ReminderAnswered(kind domain.ReminderKind, resp domain.ReminderResponse)
}

type NoopObserver struct{}

func (NoopObserver) ReminderShown(domain.ReminderKind) {}
func (NoopObserver) ReminderAnswered(domain.ReminderKind, domain.ReminderResponse) {}

// Scheduler owns one re-arming timer per reminder kind.
type Scheduler struct {
	clock    clock.Clock
	notifier Notifier
	pauser   Pauser
	logger   *slog.Logger
	observer Observer

	mu       sync.Mutex
	ctx      context.Context
	settings Settings
	started  bool
	active   bool
	timers   map[domain.ReminderKind]clock.Timer
	gens     map[domain.ReminderKind]uint64
	// modals counts open modal reminders; tracking pauses while it is > 0.
	modals int
}

type Option func(*Scheduler)

func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

func WithObserver(o Observer) Option {
	return func(s *Scheduler) { s.observer = o }
}

func NewScheduler(settings Settings, notifier Notifier, pauser Pauser, opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:    clock.Real{},
		notifier: notifier,
		pauser:   pauser,
		logger:   slog.Default(),
		observer: NoopObserver{},
		ctx:      context.Background(),
		settings: settings,
		timers:   make(map[domain.ReminderKind]clock.Timer),
		gens:     make(map[domain.ReminderKind]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start arms every reminder. It does nothing while reminders are disabled;
// enabling them later through UpdateSettings starts them then.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx = ctx
	s.started = true
	s.startLocked()
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = false
	s.stopLocked()
}

// Active reports whether reminder timers are armed.
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// UpdateSettings restarts the timers with the new intervals.
func (s *Scheduler) UpdateSettings(settings Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.settings = settings
	if s.started {
		s.startLocked()
	}
	s.logger.Info("health settings updated",
		"enabled", settings.Enabled, "modal", settings.Modal,
		"eye_rest", settings.EyeRest, "stretch", settings.Stretch, "break", settings.Break)
}

// TriggerTest shows an eye-rest reminder right away.
func (s *Scheduler) TriggerTest(ctx context.Context) domain.ReminderResponse {
	s.mu.Lock()
	gen := s.gens[domain.ReminderEyeRest]
	s.mu.Unlock()
	return s.show(ctx, domain.ReminderEyeRest, gen)
}

func (s *Scheduler) startLocked() {
	if !s.settings.Enabled || s.active {
		return
	}
	s.active = true
	for _, kind := range kinds {
		s.armLocked(kind, s.settings.interval(kind))
	}
}

func (s *Scheduler) stopLocked() {
	if !s.active {
		return
	}
	s.active = false
	for _, kind := range kinds {
		s.cancelLocked(kind)
	}
}

func (s *Scheduler) armLocked(kind domain.ReminderKind, d time.Duration) uint64 {
	s.cancelLocked(kind)
	gen := s.gens[kind]
	s.timers[kind] = s.clock.AfterFunc(d, func() { s.fire(kind, gen) })
	return gen
}

func (s *Scheduler) cancelLocked(kind domain.ReminderKind) {
	if t, ok := s.timers[kind]; ok {
		t.Stop()
		delete(s.timers, kind)
	}
	s.gens[kind]++
}

// fire re-arms the regular interval and then shows the reminder.
func (s *Scheduler) fire(kind domain.ReminderKind, gen uint64) {
	s.mu.Lock()
	if !s.active || s.gens[kind] != gen {
		s.mu.Unlock()
		return
	}
	delete(s.timers, kind)
	next := s.armLocked(kind, s.settings.interval(kind))
	ctx := s.ctx
	s.mu.Unlock()

	s.show(ctx, kind, next)
}

// show displays one reminder. A snooze replaces the kind's timer with the
// snooze delay unless the timer changed while the reminder was open.
func (s *Scheduler) show(ctx context.Context, kind domain.ReminderKind, gen uint64) domain.ReminderResponse {
	s.mu.Lock()
	r := ReminderFor(kind, s.settings.Modal)
	s.mu.Unlock()

	s.observer.ReminderShown(kind)
	if r.Modal {
		s.openModal()
	}
	resp, err := s.notifier.Remind(ctx, r)
	if r.Modal {
		s.closeModal()
	}
	if err != nil {
		s.logger.Warn("reminder not delivered", "kind", kind, "error", err)
		resp = domain.ResponseDismiss
	}
	s.observer.ReminderAnswered(kind, resp)
	s.logger.Info("reminder answered", "kind", kind, "response", resp)

	if resp == domain.ResponseSnooze {
		s.mu.Lock()
		if s.active && s.gens[kind] == gen {
			s.armLocked(kind, r.Snooze)
		}
		s.mu.Unlock()
	}
	return resp
}

// openModal and closeModal pause on the first open modal reminder and
// resume once the last one is answered.
func (s *Scheduler) openModal() {
	s.mu.Lock()
	s.modals++
	first := s.modals == 1
	s.mu.Unlock()
	if first && s.pauser != nil {
		s.pauser.HealthPause()
	}
}

func (s *Scheduler) closeModal() {
	s.mu.Lock()
	s.modals--
	last := s.modals == 0
	s.mu.Unlock()
	if last && s.pauser != nil {
		s.pauser.HealthResume()
	}
}
