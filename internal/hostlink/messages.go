package hostlink

import (
	"encoding/json"

	"github.com/alexanderramin/codeclock/internal/domain"
	"github.com/alexanderramin/codeclock/internal/health"
	"github.com/alexanderramin/codeclock/internal/workspace"
)

// Message types on the wire.
const (
	TypeSignal           = "signal"
	TypeReminder         = "reminder"
	TypeReminderResponse = "reminder_response"
	TypeError            = "error"
)

// Envelope wraps every message in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// SignalPayload is one activity notification plus the host's workspace.
type SignalPayload struct {
	Kind      domain.SignalKind `json:"kind"`
	Focused   bool              `json:"focused,omitempty"`
	Workspace workspace.Context `json:"workspace"`
}

// ReminderPayload asks the host to show a reminder and answer with ID.
type ReminderPayload struct {
	ID string `json:"id"`
	health.Reminder
}

type ReminderResponsePayload struct {
	ID       string                  `json:"id"`
	Response domain.ReminderResponse `json:"response"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func encode(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}
