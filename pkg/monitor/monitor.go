package monitor

import (
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/appstate/pkg/state"
)

// Monitor is the capability interface a dispatcher uses to drive a monitor.
type Monitor interface {
	// ID returns a stable identifier, unique within a registry.
	ID() string

	// SetEnabled turns the monitor on or off.
	SetEnabled(enabled bool)

	// IsEnabled reports whether the monitor is on.
	IsEnabled() bool

	// AddContextualInfoToEvent adds the monitor's fields to a report being
	// assembled. It may run from crash handling and must not block.
	AddContextualInfoToEvent(event *Event)
}

// Event is the crash report being assembled.
type Event struct {
	ID         string    `json:"id"`
	CapturedAt time.Time `json:"captured_at"`

	// AppState is filled by the application state monitor.
	AppState    state.Record `json:"app_state"`
	HasAppState bool         `json:"has_app_state"`
}

// NewEvent returns an event with a fresh ID and capture time.
func NewEvent() Event {
	return Event{
		ID:         uuid.NewString(),
		CapturedAt: time.Now().UTC(),
	}
}
