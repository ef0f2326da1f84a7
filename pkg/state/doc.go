// Package state defines the application lifecycle record and its on-disk form.
//
// [Record] is the full view handed to report generation: counters and
// durations accumulated since the last crash, the same accumulated since this
// launch, and live flags describing the current activity and placement of the
// application. [Persisted] is the subset that survives across launches.
//
// # Encoding
//
// The state file is a single-line JSON document with a fixed key order:
//
//	{"format_version":1,"crashed_last_launch":false,
//	 "active_duration_since_last_crash_ns":0,
//	 "background_duration_since_last_crash_ns":0,
//	 "launches_since_last_crash":0,"sessions_since_last_crash":0}
//
// Durations are integer nanoseconds so encoding is exact. [AppendEncode]
// writes into a caller-provided buffer and does not allocate when the buffer
// has [MaxEncodedSize] capacity, which is what the crash path relies on.
//
// [Decode] never panics. Missing version, unknown version, malformed JSON and
// negative values all yield a zero [Persisted] plus an error the caller may
// log before continuing with defaults.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package state
