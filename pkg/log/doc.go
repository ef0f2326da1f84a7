// Package log provides the logging abstraction used by appstate components.
//
// The tracker, the durable writer and the state watcher log through the
// [Logger] interface so hosts can plug in their own logging library. A zerolog
// adapter and a no-op logger are provided.
//
//	logger := log.NewZerologAdapterWithLogger(zerolog.New(os.Stderr))
//	t := tracker.New(tracker.WithLogger(logger))
//
// The crash path never logs: notifications raised from a crash handler only
// touch atomics and pre-opened file handles.
package log
