package tracker

import (
	"sync/atomic"
	"time"

	"github.com/bft-labs/appstate/pkg/state"
)

// published mirrors the record in atomics. It is written only while holding
// Tracker.mu and read without locks, including from the crash path.
type published struct {
	activeSinceLastCrash     atomic.Int64
	backgroundSinceLastCrash atomic.Int64
	launchesSinceLastCrash   atomic.Int64
	sessionsSinceLastCrash   atomic.Int64

	activeSinceLaunch     atomic.Int64
	backgroundSinceLaunch atomic.Int64
	sessionsSinceLaunch   atomic.Int64

	transitionUnixNano atomic.Int64

	crashedLastLaunch atomic.Bool
	active            atomic.Bool
	foreground        atomic.Bool

	// crashedThisLaunch is the sticky crash flag itself, not a copy.
	crashedThisLaunch atomic.Bool
}

func (p *published) store(r *state.Record) {
	p.activeSinceLastCrash.Store(int64(r.ActiveDurationSinceLastCrash))
	p.backgroundSinceLastCrash.Store(int64(r.BackgroundDurationSinceLastCrash))
	p.launchesSinceLastCrash.Store(r.LaunchesSinceLastCrash)
	p.sessionsSinceLastCrash.Store(r.SessionsSinceLastCrash)
	p.activeSinceLaunch.Store(int64(r.ActiveDurationSinceLaunch))
	p.backgroundSinceLaunch.Store(int64(r.BackgroundDurationSinceLaunch))
	p.sessionsSinceLaunch.Store(r.SessionsSinceLaunch)
	p.transitionUnixNano.Store(r.AppStateTransitionTime.UnixNano())
	p.crashedLastLaunch.Store(r.CrashedLastLaunch)
	p.active.Store(r.ApplicationIsActive)
	p.foreground.Store(r.ApplicationIsInForeground)
}

func (p *published) load() state.Record {
	return state.Record{
		ActiveDurationSinceLastCrash:     time.Duration(p.activeSinceLastCrash.Load()),
		BackgroundDurationSinceLastCrash: time.Duration(p.backgroundSinceLastCrash.Load()),
		LaunchesSinceLastCrash:           p.launchesSinceLastCrash.Load(),
		SessionsSinceLastCrash:           p.sessionsSinceLastCrash.Load(),
		ActiveDurationSinceLaunch:        time.Duration(p.activeSinceLaunch.Load()),
		BackgroundDurationSinceLaunch:    time.Duration(p.backgroundSinceLaunch.Load()),
		SessionsSinceLaunch:              p.sessionsSinceLaunch.Load(),
		CrashedLastLaunch:                p.crashedLastLaunch.Load(),
		CrashedThisLaunch:                p.crashedThisLaunch.Load(),
		AppStateTransitionTime:           time.Unix(0, p.transitionUnixNano.Load()),
		ApplicationIsActive:              p.active.Load(),
		ApplicationIsInForeground:        p.foreground.Load(),
	}
}

func (p *published) persisted() state.Persisted {
	return state.Persisted{
		CrashedLastLaunch:                p.crashedThisLaunch.Load(),
		ActiveDurationSinceLastCrash:     time.Duration(p.activeSinceLastCrash.Load()),
		BackgroundDurationSinceLastCrash: time.Duration(p.backgroundSinceLastCrash.Load()),
		LaunchesSinceLastCrash:           p.launchesSinceLastCrash.Load(),
		SessionsSinceLastCrash:           p.sessionsSinceLastCrash.Load(),
	}
}
