// Package tracker maintains the lifecycle state of one application process.
//
// A [Tracker] is constructed with [New], bound to a state file with
// [Tracker.Initialize], and then driven by lifecycle notifications:
//
//	t := tracker.New(tracker.WithLogger(logger))
//	t.Initialize("/var/lib/myapp/appstate.json")
//	defer t.Close()
//
//	t.StartLaunch()
//	t.NotifyAppActive(true)
//	...
//	t.NotifyAppInForeground(false)
//	t.NotifyAppTerminate()
//
// # Accounting
//
// Every notification first attributes the time elapsed since the previous
// transition, then applies the change, then records the new transition time.
// Time spent active accrues to the active durations; time spent outside the
// foreground accrues to the background durations. Inactive foreground time is
// idle and accrues to neither. Each inactive to active change starts a session.
//
// # Crash path
//
// [Tracker.NotifyAppCrash] may run while another goroutine holds the tracker's
// mutex, so it never takes it. It latches a sticky atomic flag, encodes the
// lock-free published view into a buffer sized at construction, and writes it
// through a [durable.CrashWriter] opened by Initialize. It does not log.
//
// [Tracker.CurrentState] reads the same published view, so report assembly
// can run from crash handling too. Individual fields are never torn, but a
// snapshot taken while a notification is in flight may mix old and new fields.
package tracker
