package state

import "time"

// Persisted is the part of the lifecycle state that survives across launches.
type Persisted struct {
	// CrashedLastLaunch is true when the launch that wrote the file crashed.
	// The next launch reads it back as its own CrashedLastLaunch.
	CrashedLastLaunch bool

	// ActiveDurationSinceLastCrash is the total active time since the last crash.
	ActiveDurationSinceLastCrash time.Duration

	// BackgroundDurationSinceLastCrash is the total background time since the last crash.
	BackgroundDurationSinceLastCrash time.Duration

	// LaunchesSinceLastCrash counts launches since the last crash.
	LaunchesSinceLastCrash int64

	// SessionsSinceLastCrash counts sessions since the last crash.
	SessionsSinceLastCrash int64
}

// Valid reports whether every counter and duration is non-negative.
func (p Persisted) Valid() bool {
	return p.ActiveDurationSinceLastCrash >= 0 &&
		p.BackgroundDurationSinceLastCrash >= 0 &&
		p.LaunchesSinceLastCrash >= 0 &&
		p.SessionsSinceLastCrash >= 0
}

// Record is the complete lifecycle state of one process.
type Record struct {
	ActiveDurationSinceLastCrash     time.Duration `json:"active_duration_since_last_crash_ns"`
	BackgroundDurationSinceLastCrash time.Duration `json:"background_duration_since_last_crash_ns"`
	LaunchesSinceLastCrash           int64         `json:"launches_since_last_crash"`
	SessionsSinceLastCrash           int64         `json:"sessions_since_last_crash"`

	ActiveDurationSinceLaunch     time.Duration `json:"active_duration_since_launch_ns"`
	BackgroundDurationSinceLaunch time.Duration `json:"background_duration_since_launch_ns"`
	SessionsSinceLaunch           int64         `json:"sessions_since_launch"`

	// CrashedLastLaunch is set once at load and only cleared by a reset.
	CrashedLastLaunch bool `json:"crashed_last_launch"`

	// Live fields, valid for the current process only.

	// CrashedThisLaunch is sticky: once true it stays true.
	CrashedThisLaunch         bool      `json:"crashed_this_launch"`
	AppStateTransitionTime    time.Time `json:"app_state_transition_time"`
	ApplicationIsActive       bool      `json:"application_is_active"`
	ApplicationIsInForeground bool      `json:"application_is_in_foreground"`
	LaunchID                  string    `json:"launch_id,omitempty"`
}

// Persisted returns the on-disk view of r. The crashed flag written is the
// one for this launch.
func (r Record) Persisted() Persisted {
	return Persisted{
		CrashedLastLaunch:                r.CrashedThisLaunch,
		ActiveDurationSinceLastCrash:     r.ActiveDurationSinceLastCrash,
		BackgroundDurationSinceLastCrash: r.BackgroundDurationSinceLastCrash,
		LaunchesSinceLastCrash:           r.LaunchesSinceLastCrash,
		SessionsSinceLastCrash:           r.SessionsSinceLastCrash,
	}
}

// FromPersisted builds the record a new launch starts from.
func FromPersisted(p Persisted) Record {
	return Record{
		CrashedLastLaunch:                p.CrashedLastLaunch,
		ActiveDurationSinceLastCrash:     p.ActiveDurationSinceLastCrash,
		BackgroundDurationSinceLastCrash: p.BackgroundDurationSinceLastCrash,
		LaunchesSinceLastCrash:           p.LaunchesSinceLastCrash,
		SessionsSinceLastCrash:           p.SessionsSinceLastCrash,
	}
}

// ClearCrashCounters zeroes the since-last-crash counters and durations but
// keeps CrashedLastLaunch.
func (r *Record) ClearCrashCounters() {
	r.ActiveDurationSinceLastCrash = 0
	r.BackgroundDurationSinceLastCrash = 0
	r.LaunchesSinceLastCrash = 0
	r.SessionsSinceLastCrash = 0
}

// ResetSinceLastCrash zeroes the since-last-crash fields and CrashedLastLaunch.
func (r *Record) ResetSinceLastCrash() {
	r.ClearCrashCounters()
	r.CrashedLastLaunch = false
}

// ResetSinceLaunch zeroes the per-launch accumulators.
func (r *Record) ResetSinceLaunch() {
	r.ActiveDurationSinceLaunch = 0
	r.BackgroundDurationSinceLaunch = 0
	r.SessionsSinceLaunch = 0
}
