package domain

type TrackerState string

const (
	StateIdle                TrackerState = "idle"
	StateTracking            TrackerState = "tracking"
	StatePausedByInactivity  TrackerState = "paused_inactivity"
	StatePausedByFocusLoss   TrackerState = "paused_focus_loss"
	StatePausedByHealthBreak TrackerState = "paused_health_break"
	StatePausedManually      TrackerState = "paused_manually"
)

// Resumable reports whether an activity signal starts a new session from s.
func (s TrackerState) Resumable() bool {
	switch s {
	case StateIdle, StatePausedByInactivity, StatePausedByFocusLoss:
		return true
	default:
		return false
	}
}

// StopReason explains why a session was flushed.
type StopReason string

const (
	ReasonPeriodicSave  StopReason = "periodic save"
	ReasonInactivity    StopReason = "inactivity"
	ReasonFocusLost     StopReason = "focus lost"
	ReasonFocusTimeout  StopReason = "focus timeout"
	ReasonProjectSwitch StopReason = "project switch"
	ReasonBranchChange  StopReason = "branch change"
	ReasonHealthPause   StopReason = "health modal pause"
	ReasonManualPause   StopReason = "manual pause"
	ReasonManualStop    StopReason = "manual stop"
	ReasonManualSave    StopReason = "manual save"
	ReasonShutdown      StopReason = "shutdown"
)

type SignalKind string

const (
	SignalCursorMoved        SignalKind = "cursor_moved"
	SignalTextChanged        SignalKind = "text_changed"
	SignalEditorFocusChanged SignalKind = "editor_focus_changed"
	SignalWindowFocusChanged SignalKind = "window_focus_changed"
	SignalDocumentOpened     SignalKind = "document_opened"
)

// ValidSignalKinds is the canonical set of accepted signal kind strings.
var ValidSignalKinds = map[SignalKind]bool{
	SignalCursorMoved:        true,
	SignalTextChanged:        true,
	SignalEditorFocusChanged: true,
	SignalWindowFocusChanged: true,
	SignalDocumentOpened:     true,
}

type ReminderKind string

const (
	ReminderEyeRest ReminderKind = "eye_rest"
	ReminderStretch ReminderKind = "stretch"
	ReminderBreak   ReminderKind = "break"
)

type ReminderResponse string

const (
	ResponseDone    ReminderResponse = "done"
	ResponseSnooze  ReminderResponse = "snooze"
	ResponseDismiss ReminderResponse = "dismiss"
)
