// Package appstate tracks an application's lifecycle across launches and
// crashes.
//
// It counts launches, sessions and time spent active or in the background,
// both for the current launch and since the last crash, and keeps those
// counters in a small state file so the next launch can tell whether the
// previous one crashed.
//
// Example usage:
//
//	t := appstate.Open("/var/lib/myapp/appstate.json")
//	defer t.Close()
//
//	m := appstate.NewMonitor(t)
//	m.SetEnabled(true) // counts this launch
//
//	t.NotifyAppActive(true)
//	...
//	t.NotifyAppTerminate()
package appstate

import (
	"github.com/bft-labs/appstate/pkg/monitor"
	"github.com/bft-labs/appstate/pkg/state"
	"github.com/bft-labs/appstate/pkg/tracker"
)

// Tracker applies lifecycle notifications and persists the result.
type Tracker = tracker.Tracker

// Option configures a Tracker.
type Option = tracker.Option

// Record is a snapshot of the full lifecycle state.
type Record = state.Record

// Persisted is the subset of Record kept on disk.
type Persisted = state.Persisted

// Phase is the combined activity and placement of the application.
type Phase = tracker.Phase

// Monitor is the interface a crash reporter's dispatcher drives.
type Monitor = monitor.Monitor

// Event is a crash report being assembled.
type Event = monitor.Event

// New creates a Tracker without touching disk. Call Initialize on it before
// notifications should be persisted.
func New(opts ...Option) *Tracker {
	return tracker.New(opts...)
}

// Open creates a Tracker and initializes it from the state file at path.
// Problems with the file are logged and replaced by defaults.
func Open(path string, opts ...Option) *Tracker {
	t := tracker.New(opts...)
	t.Initialize(path)
	return t
}

// NewMonitor returns the application state monitor for t, disabled.
// Enabling it starts the launch.
func NewMonitor(t *Tracker) *monitor.AppState {
	return monitor.NewAppState(t)
}

// NewEvent returns an empty crash report with a fresh ID.
func NewEvent() Event {
	return monitor.NewEvent()
}
