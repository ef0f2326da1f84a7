// Package monitor connects the lifecycle tracker to a crash reporter's
// monitor dispatcher.
//
// A dispatcher drives any number of [Monitor] implementations through one
// small interface: enable or disable them, identify them, and ask each one to
// contribute fields to a crash report while it is being assembled. [Registry]
// is a minimal table of monitors with that fan-out; [AppState] is the monitor
// that contributes the application lifecycle record.
//
//	t := tracker.New()
//	t.Initialize(path)
//
//	reg := monitor.NewRegistry()
//	_ = reg.Register(monitor.NewAppState(t))
//	_ = reg.SetEnabled(monitor.AppStateID, true)
//
//	// later, while building a crash report
//	ev := monitor.NewEvent()
//	reg.AddContextualInfo(&ev)
package monitor
