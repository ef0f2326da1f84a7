package domain

import "errors"

// Domain errors represent error conditions in the appstate domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrCorruptState is returned when the state file cannot be parsed or holds invalid values.
	ErrCorruptState = errors.New("appstate: corrupt state file")

	// ErrVersionMismatch is returned when the state file was written with an unknown format version.
	ErrVersionMismatch = errors.New("appstate: state format version mismatch")

	// ErrNotInitialized is returned when persistence is requested before Initialize.
	ErrNotInitialized = errors.New("appstate: tracker not initialized")

	// ErrAlreadyInitialized is reported when Initialize is called twice on one tracker.
	ErrAlreadyInitialized = errors.New("appstate: tracker already initialized")

	// ErrCrashWriteBusy is returned when a crash write is already in flight.
	ErrCrashWriteBusy = errors.New("appstate: crash write in progress")

	// ErrStateLocked is reported when another process holds the state file lock.
	ErrStateLocked = errors.New("appstate: state file locked by another process")

	// ErrDuplicateMonitor is returned when a monitor ID is registered twice.
	ErrDuplicateMonitor = errors.New("appstate: monitor already registered")

	// ErrUnknownMonitor is returned when no monitor is registered under an ID.
	ErrUnknownMonitor = errors.New("appstate: unknown monitor")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("appstate: invalid configuration")
)
