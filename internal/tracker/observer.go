package tracker

import "github.com/alexanderramin/codeclock/internal/domain"

// Observer receives tracker telemetry. Implementations must not block.
type Observer interface {
	StateChanged(from, to domain.TrackerState)
	SessionFlushed(reason domain.StopReason, minutes float64)
	FlushFailed(reason domain.StopReason, err error)
	PollSkipped()
}

// NoopObserver ignores all events.
type NoopObserver struct{}

func (NoopObserver) StateChanged(domain.TrackerState, domain.TrackerState) {}
func (NoopObserver) SessionFlushed(domain.StopReason, float64) {}
func (NoopObserver) FlushFailed(domain.StopReason, error) {}
func (NoopObserver) PollSkipped() {}
