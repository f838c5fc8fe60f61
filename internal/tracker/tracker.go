// Package tracker turns editor activity signals into recorded coding time.
//
// All state lives on one goroutine. Signals, timer fires, commands, health
// requests, settings changes and branch lookups are posted as events to a
// single channel and handled to completion one at a time, so the handlers
// need no locking. Readers get a copy of the state through Status, which the
// loop republishes after every event.
package tracker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/alexanderramin/codeclock/internal/clock"
	"github.com/alexanderramin/codeclock/internal/domain"
	"github.com/alexanderramin/codeclock/internal/eventlog"
	"github.com/alexanderramin/codeclock/internal/vcs"
	"github.com/alexanderramin/codeclock/internal/workspace"
)

var (
	// ErrPausedManually is returned by Start while a manual pause holds.
	ErrPausedManually = errors.New("tracking is paused manually")
	// ErrStopped is returned for commands sent after Run has returned.
	ErrStopped = errors.New("tracker stopped")
)

// Ledger is where flushed sessions go.
type Ledger interface {
	Add(ctx context.Context, at time.Time, project, branch string, minutes float64) error
}

// Tracker is the activity state machine.
type Tracker struct {
	ledger   Ledger
	resolver vcs.Resolver
	clock    clock.Clock
	logger   *slog.Logger
	observer Observer
	events   eventlog.Sink

	queue   chan event
	stopped chan struct{}

	// post delivers an event to the loop; spawn runs branch lookups off it.
	post  func(event)
	spawn func(func())

	// Loop-owned state below.
	ctx           context.Context
	cfg           Config
	state         domain.TrackerState
	session       *domain.TrackingSession
	awaitingFocus bool
	focusLostAt   time.Time
	lastProject   string
	lastPath      string
	branchByPath  map[string]string
	branchPending bool
	pollInFlight  bool
	timers        map[timerRole]clock.Timer
	gens          map[timerRole]uint64
	backlog       []pendingWrite
	saved         uint64

	mu       sync.RWMutex
	snapshot Status
}

type Option func(*Tracker)

func WithClock(c clock.Clock) Option {
	return func(t *Tracker) { t.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

func WithObserver(o Observer) Option {
	return func(t *Tracker) { t.observer = o }
}

// WithEventLog sends diagnostic events to sink.
func WithEventLog(sink eventlog.Sink) Option {
	return func(t *Tracker) { t.events = sink }
}

// New builds an idle tracker. Call Run to start processing events.
func New(ledger Ledger, resolver vcs.Resolver, cfg Config, opts ...Option) *Tracker {
	t := &Tracker{
		ledger:       ledger,
		resolver:     resolver,
		clock:        clock.Real{},
		logger:       slog.Default(),
		observer:     NoopObserver{},
		events:       eventlog.Nop{},
		queue:        make(chan event, 256),
		stopped:      make(chan struct{}),
		ctx:          context.Background(),
		cfg:          cfg.normalized(),
		state:        domain.StateIdle,
		branchByPath: make(map[string]string),
		timers:       make(map[timerRole]clock.Timer),
		gens:         make(map[timerRole]uint64),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.post = t.enqueue
	t.spawn = func(f func()) { go f() }
	t.publish()
	return t
}

// Run processes events until ctx is canceled, then flushes the live session
// with reason shutdown.
func (t *Tracker) Run(ctx context.Context) error {
	t.ctx = ctx
	defer close(t.stopped)
	for {
		select {
		case <-ctx.Done():
			t.shutdown()
			return nil
		case ev := <-t.queue:
			t.handle(ev)
		}
	}
}

func (t *Tracker) enqueue(ev event) {
	select {
	case t.queue <- ev:
	case <-t.stopped:
	}
}

// Signal reports editor activity.
func (t *Tracker) Signal(sig domain.Signal) {
	t.post(signalEvent{sig: sig})
}

// Start begins tracking unless a manual pause holds.
func (t *Tracker) Start(ctx context.Context) error { return t.do(ctx, cmdStart) }

// Stop flushes any live session and returns to idle.
func (t *Tracker) Stop(ctx context.Context) error { return t.do(ctx, cmdStop) }

// Pause enters the manual pause, which only Resume or Stop lifts.
func (t *Tracker) Pause(ctx context.Context) error { return t.do(ctx, cmdPause) }

func (t *Tracker) Resume(ctx context.Context) error { return t.do(ctx, cmdResume) }

// Save writes the live session now without ending it.
func (t *Tracker) Save(ctx context.Context) error { return t.do(ctx, cmdSave) }

// HealthPause asks for a health-break pause.
func (t *Tracker) HealthPause() { t.post(healthEvent{pause: true}) }

// HealthResume releases a health-break pause.
func (t *Tracker) HealthResume() { t.post(healthEvent{pause: false}) }

// UpdateSettings applies new intervals without dropping the live session.
func (t *Tracker) UpdateSettings(cfg Config) {
	t.post(settingsEvent{cfg: cfg})
}

func (t *Tracker) do(ctx context.Context, kind commandKind) error {
	c := commandEvent{kind: kind, done: make(chan error, 1)}
	t.post(c)
	select {
	case err := <-c.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-t.stopped:
		return ErrStopped
	}
}

func (t *Tracker) handle(ev event) {
	switch ev := ev.(type) {
	case signalEvent:
		t.onSignal(ev.sig)
	case timerEvent:
		if ev.gen != t.gens[ev.role] {
			return
		}
		delete(t.timers, ev.role)
		t.onTimer(ev.role)
	case commandEvent:
		ev.done <- t.onCommand(ev.kind)
	case healthEvent:
		if ev.pause {
			t.onHealthPause()
		} else {
			t.onHealthResume()
		}
	case settingsEvent:
		t.onSettings(ev.cfg)
	case branchEvent:
		t.onBranch(ev.path, ev.branch)
	}
	t.publish()
}

func (t *Tracker) onSignal(sig domain.Signal) {
	if sig.Kind == domain.SignalWindowFocusChanged {
		if sig.Focused {
			t.onFocusGained(sig)
		} else {
			t.onFocusLost()
		}
		return
	}
	t.onActivity(sig)
}

func (t *Tracker) onActivity(sig domain.Signal) {
	now := t.clock.Now()
	project, path := t.workspaceOf(sig)

	switch {
	case t.state.Resumable():
		t.begin(now, project, path, "activity")
	case t.state == domain.StateTracking:
		if t.awaitingFocus {
			t.refocus(now)
		}
		if project != t.session.Project {
			t.flush(now, domain.ReasonProjectSwitch)
			t.logStopped(domain.ReasonProjectSwitch)
			t.rebind(now, project, path)
			t.logStarted(string(domain.ReasonProjectSwitch))
			return
		}
		if path != "" && path != t.session.Path {
			t.session.Path = path
		}
		t.session.LastActivityAt = now
		t.arm(roleInactivity, t.cfg.InactivityTimeout)
	default:
		t.logger.Debug("activity ignored while paused", "state", t.state, "kind", sig.Kind)
	}
}

func (t *Tracker) onFocusLost() {
	if t.state != domain.StateTracking || t.awaitingFocus {
		return
	}
	now := t.clock.Now()
	t.flush(now, domain.ReasonFocusLost)
	t.awaitingFocus = true
	t.focusLostAt = now
	t.cancel(roleInactivity)
	t.cancel(roleSave)
	t.arm(roleFocus, t.cfg.FocusTimeout)
}

func (t *Tracker) onFocusGained(sig domain.Signal) {
	switch {
	case t.state == domain.StateTracking && t.awaitingFocus:
		t.refocus(t.clock.Now())
	case t.state.Resumable():
		t.onActivity(sig)
	}
}

// refocus ends a focus-away stretch and re-anchors the session at now.
func (t *Tracker) refocus(now time.Time) {
	t.cancel(roleFocus)
	t.awaitingFocus = false
	t.session.StartedAt = now
	t.session.LastActivityAt = now
	t.arm(roleInactivity, t.cfg.InactivityTimeout)
	t.arm(roleSave, t.cfg.SaveInterval)
}

func (t *Tracker) onTimer(role timerRole) {
	if t.state != domain.StateTracking {
		return
	}
	now := t.clock.Now()

	switch role {
	case roleInactivity:
		idle := t.session.IdleFor(now)
		if idle < t.cfg.InactivityTimeout {
			t.arm(roleInactivity, t.cfg.InactivityTimeout-idle)
			return
		}
		t.events.Log(eventlog.Event{
			Kind:        eventlog.InactivityDetected,
			Project:     t.session.Project,
			Branch:      t.session.Branch,
			InactiveFor: idle,
		})
		t.flush(now, domain.ReasonInactivity)
		t.end(domain.StatePausedByInactivity, domain.ReasonInactivity)

	case roleFocus:
		if !t.awaitingFocus {
			return
		}
		t.flush(now, domain.ReasonFocusTimeout)
		t.end(domain.StatePausedByFocusLoss, domain.ReasonFocusTimeout)

	case roleSave:
		if t.awaitingFocus {
			return
		}
		t.flush(now, domain.ReasonPeriodicSave)
		t.arm(roleSave, t.cfg.SaveInterval)

	case rolePoll:
		t.poll()
		t.arm(rolePoll, t.cfg.BranchPollInterval)
	}
}

func (t *Tracker) onCommand(kind commandKind) error {
	now := t.clock.Now()

	switch kind {
	case cmdStart:
		if t.state == domain.StatePausedManually {
			t.logger.Info("start ignored, tracking is paused manually")
			return ErrPausedManually
		}
		if t.state != domain.StateTracking {
			t.begin(now, t.lastProject, t.lastPath, "manual start")
		}

	case cmdStop:
		if t.state == domain.StateTracking {
			t.flushUnlessAway(now, domain.ReasonManualStop)
			t.end(domain.StateIdle, domain.ReasonManualStop)
		} else {
			t.setState(domain.StateIdle)
		}

	case cmdPause:
		if t.state == domain.StateTracking {
			t.flushUnlessAway(now, domain.ReasonManualPause)
			t.end(domain.StatePausedManually, domain.ReasonManualPause)
		} else {
			t.setState(domain.StatePausedManually)
		}

	case cmdResume:
		if t.state == domain.StatePausedManually {
			t.begin(now, t.lastProject, t.lastPath, "manual resume")
		}

	case cmdSave:
		t.drainBacklog()
		if t.state == domain.StateTracking && !t.awaitingFocus {
			t.flush(now, domain.ReasonManualSave)
		}
	}
	return nil
}

func (t *Tracker) onHealthPause() {
	if t.state != domain.StateTracking {
		return
	}
	t.flushUnlessAway(t.clock.Now(), domain.ReasonHealthPause)
	t.end(domain.StatePausedByHealthBreak, domain.ReasonHealthPause)
}

func (t *Tracker) onHealthResume() {
	switch t.state {
	case domain.StatePausedByHealthBreak:
		t.begin(t.clock.Now(), t.lastProject, t.lastPath, "health break over")
	case domain.StatePausedManually:
		t.logger.Info("health resume ignored, tracking is paused manually")
	}
}

func (t *Tracker) onSettings(cfg Config) {
	t.cfg = cfg.normalized()
	t.logger.Info("tracker settings updated",
		"inactivity_timeout", t.cfg.InactivityTimeout,
		"focus_timeout", t.cfg.FocusTimeout,
		"save_interval", t.cfg.SaveInterval,
		"branch_poll_interval", t.cfg.BranchPollInterval)

	if t.state != domain.StateTracking {
		return
	}
	now := t.clock.Now()
	t.arm(rolePoll, t.cfg.BranchPollInterval)
	if t.awaitingFocus {
		t.arm(roleFocus, t.cfg.FocusTimeout-now.Sub(t.focusLostAt))
		return
	}
	t.arm(roleInactivity, t.cfg.InactivityTimeout-t.session.IdleFor(now))
	t.arm(roleSave, t.cfg.SaveInterval)
}

func (t *Tracker) onBranch(path, branch string) {
	t.pollInFlight = false
	t.branchByPath[path] = branch

	if t.state != domain.StateTracking {
		return
	}
	if t.session.Path != path {
		// The session moved while this lookup ran; ask about the new path.
		t.poll()
		return
	}
	if t.branchPending {
		// First answer for this path: the session was never on another branch.
		t.branchPending = false
		t.session.Branch = branch
		return
	}
	if t.session.Branch == branch {
		return
	}
	now := t.clock.Now()
	from := t.session.Branch
	t.flushUnlessAway(now, domain.ReasonBranchChange)
	t.session.Branch = branch
	t.logger.Info("branch changed", "project", t.session.Project, "from", from, "to", branch)
	t.events.Log(eventlog.Event{
		Kind:    eventlog.BranchChanged,
		Project: t.session.Project,
		Branch:  branch,
		From:    from,
		To:      branch,
	})
}

// begin opens a new session and arms its timers.
func (t *Tracker) begin(now time.Time, project, path, reason string) {
	if project == "" {
		project = workspace.UnknownProject
	}
	t.session = &domain.TrackingSession{}
	t.rebind(now, project, path)
	t.awaitingFocus = false
	t.setState(domain.StateTracking)
	t.arm(roleInactivity, t.cfg.InactivityTimeout)
	t.arm(roleSave, t.cfg.SaveInterval)
	t.arm(rolePoll, t.cfg.BranchPollInterval)
	t.logger.Info("tracking started", "project", project, "branch", t.session.Branch, "reason", reason)
	t.logStarted(reason)
}

// rebind points the live session at project/path, anchored at now, and
// kicks a branch lookup.
func (t *Tracker) rebind(now time.Time, project, path string) {
	branch, ok := t.branchByPath[path]
	if !ok {
		branch = domain.UnknownBranch
	}
	if path != t.lastPath {
		t.resolver.Invalidate(path)
	}
	t.branchPending = !ok
	*t.session = domain.TrackingSession{
		Project:        project,
		Branch:         branch,
		Path:           path,
		StartedAt:      now,
		LastActivityAt: now,
	}
	t.lastProject, t.lastPath = project, path
	t.poll()
}

// end clears the session and every timer, then enters state.
func (t *Tracker) end(state domain.TrackerState, reason domain.StopReason) {
	t.logStopped(reason)
	t.logger.Info("tracking stopped", "project", t.session.Project, "reason", reason)
	for _, role := range allRoles {
		t.cancel(role)
	}
	t.session = nil
	t.awaitingFocus = false
	t.setState(state)
}

func (t *Tracker) poll() {
	if t.pollInFlight {
		t.observer.PollSkipped()
		return
	}
	t.pollInFlight = true
	ctx, path := t.ctx, t.session.Path
	t.spawn(func() {
		branch := t.resolver.CurrentBranch(ctx, path)
		t.post(branchEvent{path: path, branch: branch})
	})
}

func (t *Tracker) shutdown() {
	t.ctx = context.WithoutCancel(t.ctx)
	if t.state == domain.StateTracking {
		t.flushUnlessAway(t.clock.Now(), domain.ReasonShutdown)
		t.end(domain.StateIdle, domain.ReasonShutdown)
	}
	t.drainBacklog()
	for _, role := range allRoles {
		t.cancel(role)
	}
	if n := len(t.backlog); n > 0 {
		t.logger.Error("unsaved sessions lost at shutdown", "count", n)
	}
	t.publish()
}

func (t *Tracker) setState(s domain.TrackerState) {
	if s == t.state {
		return
	}
	from := t.state
	t.state = s
	t.observer.StateChanged(from, s)
}

// workspaceOf resolves project and path for a signal, falling back to the last
// known workspace when the host sent none.
func (t *Tracker) workspaceOf(sig domain.Signal) (string, string) {
	project, path := sig.Project, sig.Path
	if project == "" {
		project = t.lastProject
		if path == "" {
			path = t.lastPath
		}
	}
	if project == "" {
		project = workspace.UnknownProject
	}
	return project, path
}

func (t *Tracker) logStarted(reason string) {
	t.events.Log(eventlog.Event{
		Kind:    eventlog.TrackingStarted,
		Project: t.session.Project,
		Branch:  t.session.Branch,
		Reason:  reason,
	})
}

func (t *Tracker) logStopped(reason domain.StopReason) {
	t.events.Log(eventlog.Event{
		Kind:    eventlog.TrackingStopped,
		Project: t.session.Project,
		Branch:  t.session.Branch,
		Reason:  string(reason),
	})
}
