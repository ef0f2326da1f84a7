package monitor

import (
	"sync/atomic"

	"github.com/bft-labs/appstate/pkg/state"
)

// AppStateID identifies the application state monitor.
const AppStateID = "ApplicationState"

// StateSource is what the application state monitor reads from.
// *tracker.Tracker satisfies it.
type StateSource interface {
	StartLaunch() bool
	CurrentState() state.Record
}

// AppState adapts a lifecycle tracker to the Monitor interface.
type AppState struct {
	source  StateSource
	enabled atomic.Bool
}

// NewAppState creates a disabled monitor over source.
func NewAppState(source StateSource) *AppState {
	return &AppState{source: source}
}

// ID returns AppStateID.
func (m *AppState) ID() string { return AppStateID }

// SetEnabled turns the monitor on or off. Enabling starts the launch on the
// tracker; the tracker counts a launch only once however often this toggles.
func (m *AppState) SetEnabled(enabled bool) {
	if m.enabled.Swap(enabled) == enabled {
		return
	}
	if enabled {
		m.source.StartLaunch()
	}
}

// IsEnabled reports whether the monitor is on.
func (m *AppState) IsEnabled() bool { return m.enabled.Load() }

// AddContextualInfoToEvent copies the current lifecycle record into event.
func (m *AppState) AddContextualInfoToEvent(event *Event) {
	if event == nil || !m.enabled.Load() {
		return
	}
	event.AppState = m.source.CurrentState()
	event.HasAppState = true
}

var _ Monitor = (*AppState)(nil)
