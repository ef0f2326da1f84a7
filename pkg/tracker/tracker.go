package tracker

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/bft-labs/appstate/internal/domain"
	"github.com/bft-labs/appstate/pkg/durable"
	"github.com/bft-labs/appstate/pkg/log"
	"github.com/bft-labs/appstate/pkg/state"
)

// LockSuffix is appended to the state file path for the advisory lock file.
const LockSuffix = ".lock"

// Stats counts persistence failures. Failures never surface as errors from
// notifications.
type Stats struct {
	PersistFailures    uint64
	CrashWriteFailures uint64
}

// Tracker applies lifecycle notifications to a state record and persists it.
type Tracker struct {
	mu  sync.Mutex
	rec state.Record

	opts     options
	repo     state.Repository
	fileLock *flock.Flock
	launchID string

	path          string
	initialized   bool
	pendingLaunch bool
	launched      bool
	terminated    bool
	closed        bool

	view published

	// Crash path state: no mutex, fixed-capacity buffer, pre-opened writer.
	crashWriter atomic.Pointer[durable.CrashWriter]
	crashBusy   atomic.Bool
	crashBuf    []byte

	persistFailures atomic.Uint64
	crashFailures   atomic.Uint64
}

// New creates a Tracker in the initial phase: inactive and in the foreground.
// Call Initialize to load and persist state.
func New(opts ...Option) *Tracker {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	t := &Tracker{
		opts:     o,
		repo:     o.repo,
		launchID: uuid.NewString(),
		crashBuf: make([]byte, 0, state.MaxEncodedSize),
	}
	t.rec.ApplicationIsInForeground = true
	t.rec.AppStateTransitionTime = o.clock.Now()
	t.view.store(&t.rec)
	return t
}

// Initialize loads state from path, falling back to defaults on any problem,
// and prepares the crash write path. It never fails; problems are logged.
func (t *Tracker) Initialize(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	logger := t.opts.logger
	if t.initialized {
		logger.Warn("initialize ignored", log.Path(path), log.Err(domain.ErrAlreadyInitialized))
		return
	}
	t.initialized = true
	t.path = path

	if t.opts.lockState {
		t.acquireFileLock(path)
	}

	if t.repo == nil {
		t.repo = state.NewFileRepository(path, t.opts.writer)
	}

	p, err := t.repo.Load(context.Background())
	if err != nil {
		logger.Warn("state load failed, using defaults", log.Path(path), log.Err(err))
		p = state.Persisted{}
	}

	rec := state.FromPersisted(p)
	rec.AppStateTransitionTime = t.rec.AppStateTransitionTime
	rec.ApplicationIsActive = t.rec.ApplicationIsActive
	rec.ApplicationIsInForeground = t.rec.ApplicationIsInForeground
	rec.ActiveDurationSinceLaunch = t.rec.ActiveDurationSinceLaunch
	rec.BackgroundDurationSinceLaunch = t.rec.BackgroundDurationSinceLaunch
	rec.SessionsSinceLaunch = t.rec.SessionsSinceLaunch
	t.rec = rec
	t.view.store(&t.rec)

	cw, err := durable.NewCrashWriter(path)
	if err != nil {
		logger.Error("crash writer unavailable", log.Path(path), log.Err(err))
	} else {
		t.crashWriter.Store(cw)
	}

	if t.pendingLaunch {
		t.pendingLaunch = false
		t.startLaunchLocked()
	}

	logger.Info("state loaded",
		log.Path(path),
		log.String("launch_id", t.launchID),
		log.Bool("crashed_last_launch", rec.CrashedLastLaunch),
		log.Int64("launches_since_last_crash", rec.LaunchesSinceLastCrash),
		log.Int64("sessions_since_last_crash", rec.SessionsSinceLastCrash),
	)
}

func (t *Tracker) acquireFileLock(path string) {
	lockPath := path + LockSuffix
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o700); err != nil {
		t.opts.logger.Warn("state lock unavailable", log.Path(lockPath), log.Err(err))
		return
	}
	fl := flock.New(lockPath)
	locked, err := fl.TryLock()
	if err != nil {
		t.opts.logger.Warn("state lock unavailable", log.Path(lockPath), log.Err(err))
		return
	}
	if !locked {
		t.opts.logger.Warn("state file shared with another process", log.Path(path), log.Err(domain.ErrStateLocked))
		return
	}
	t.fileLock = fl
}

// StartLaunch begins accounting for this launch: per-launch accumulators are
// zeroed, since-last-crash counters restart if the previous launch crashed,
// and the launch is counted. Only the first call per Tracker has an effect.
// Before Initialize the launch is deferred until the state has been loaded.
// It returns whether the result was persisted.
func (t *Tracker) StartLaunch() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.launched {
		return true
	}
	if !t.initialized {
		t.pendingLaunch = true
		return false
	}
	return t.startLaunchLocked()
}

func (t *Tracker) startLaunchLocked() bool {
	t.launched = true

	t.tickLocked(t.opts.clock.Now())
	t.rec.ResetSinceLaunch()
	if t.rec.CrashedLastLaunch {
		t.rec.ClearCrashCounters()
	}
	t.rec.LaunchesSinceLastCrash++
	t.view.store(&t.rec)

	return t.persistLocked()
}

// NotifyAppActive records that the application became active or inactive.
// Every change from inactive to active starts a new session.
func (t *Tracker) NotifyAppActive(isActive bool) {
	t.mu.Lock()
	from := t.phaseLocked()
	before := t.persistedLocked()

	t.tickLocked(t.opts.clock.Now())
	if isActive && !t.rec.ApplicationIsActive {
		t.rec.SessionsSinceLaunch++
		t.rec.SessionsSinceLastCrash++
	}
	t.rec.ApplicationIsActive = isActive
	t.view.store(&t.rec)

	if t.persistedLocked() != before {
		t.persistLocked()
	}
	to := t.phaseLocked()
	t.debugAfterTerminateLocked("active")
	t.mu.Unlock()

	t.emit(from, to, "active")
}

// NotifyAppInForeground records that the application moved to the foreground
// or the background.
func (t *Tracker) NotifyAppInForeground(isInForeground bool) {
	t.mu.Lock()
	from := t.phaseLocked()
	before := t.persistedLocked()

	t.tickLocked(t.opts.clock.Now())
	t.rec.ApplicationIsInForeground = isInForeground
	t.view.store(&t.rec)

	if t.persistedLocked() != before {
		t.persistLocked()
	}
	to := t.phaseLocked()
	t.debugAfterTerminateLocked("foreground")
	t.mu.Unlock()

	t.emit(from, to, "foreground")
}

// NotifyAppTerminate attributes the final elapsed time and persists durably.
func (t *Tracker) NotifyAppTerminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.tickLocked(t.opts.clock.Now())
	t.terminated = true
	t.view.store(&t.rec)
	t.persistLocked()

	t.opts.logger.Info("application terminating",
		log.Duration("active_since_launch", t.rec.ActiveDurationSinceLaunch),
		log.Duration("background_since_launch", t.rec.BackgroundDurationSinceLaunch),
		log.Int64("sessions_since_launch", t.rec.SessionsSinceLaunch),
	)
}

// NotifyAppCrash latches the crash flag and writes the published state with
// the crash writer. It takes no locks, does not allocate on Linux and does not
// log, so it may be called from crash handling while other goroutines hold the
// tracker's mutex. Failures are counted in Stats.
func (t *Tracker) NotifyAppCrash() {
	t.view.crashedThisLaunch.Store(true)

	w := t.crashWriter.Load()
	if w == nil {
		t.crashFailures.Add(1)
		return
	}
	if !t.crashBusy.CompareAndSwap(false, true) {
		return
	}
	buf := state.AppendEncode(t.crashBuf[:0], t.view.persisted())
	if err := w.Write(buf); err != nil {
		t.crashFailures.Add(1)
	}
	t.crashBusy.Store(false)
}

// Reset zeroes the since-last-crash fields and CrashedLastLaunch, keeping the
// since-launch fields. In-memory state is reset even when persisting fails;
// the return value reports whether the new state reached disk.
func (t *Tracker) Reset() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rec.ResetSinceLastCrash()
	t.view.store(&t.rec)
	return t.persistLocked()
}

// CurrentState returns a copy of the current record without locking.
func (t *Tracker) CurrentState() state.Record {
	r := t.view.load()
	r.LaunchID = t.launchID
	return r
}

// LaunchID identifies this launch.
func (t *Tracker) LaunchID() string {
	return t.launchID
}

// Path returns the state file path given to Initialize.
func (t *Tracker) Path() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.path
}

// Stats returns persistence failure counters.
func (t *Tracker) Stats() Stats {
	return Stats{
		PersistFailures:    t.persistFailures.Load(),
		CrashWriteFailures: t.crashFailures.Load(),
	}
}

// Close releases the crash writer and the state file lock.
// Notifications after Close still update memory but nothing is written to
// disk, since another process may own the file once the lock is released.
func (t *Tracker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	var errs []error
	if cw := t.crashWriter.Swap(nil); cw != nil {
		if err := cw.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if t.fileLock != nil {
		if err := t.fileLock.Unlock(); err != nil {
			errs = append(errs, err)
		}
		t.fileLock = nil
	}
	return errors.Join(errs...)
}

// tickLocked attributes the time since the last transition and moves the
// transition time forward. A clock that did not advance changes nothing.
func (t *Tracker) tickLocked(now time.Time) {
	last := t.rec.AppStateTransitionTime
	if !now.After(last) {
		return
	}
	dt := now.Sub(last)
	if t.rec.ApplicationIsActive {
		t.rec.ActiveDurationSinceLaunch = addDuration(t.rec.ActiveDurationSinceLaunch, dt)
		t.rec.ActiveDurationSinceLastCrash = addDuration(t.rec.ActiveDurationSinceLastCrash, dt)
	}
	if !t.rec.ApplicationIsInForeground {
		t.rec.BackgroundDurationSinceLaunch = addDuration(t.rec.BackgroundDurationSinceLaunch, dt)
		t.rec.BackgroundDurationSinceLastCrash = addDuration(t.rec.BackgroundDurationSinceLastCrash, dt)
	}
	t.rec.AppStateTransitionTime = now
}

// persistedLocked returns what would be written now.
func (t *Tracker) persistedLocked() state.Persisted {
	t.rec.CrashedThisLaunch = t.view.crashedThisLaunch.Load()
	return t.rec.Persisted()
}

func (t *Tracker) persistLocked() bool {
	if t.repo == nil {
		t.opts.logger.Debug("state not persisted", log.Err(domain.ErrNotInitialized))
		return false
	}
	if t.closed {
		t.opts.logger.Debug("state not persisted after close", log.Path(t.path))
		return false
	}

	p := t.persistedLocked()
	err := t.repo.Save(context.Background(), p)
	if err == nil && !p.CrashedLastLaunch && t.view.crashedThisLaunch.Load() {
		// A crash write landed while this save was in flight; do not leave
		// the older, uncrashed copy on disk.
		err = t.repo.Save(context.Background(), t.persistedLocked())
	}
	if err != nil {
		t.persistFailures.Add(1)
		t.opts.logger.Error("state persist failed", log.Path(t.path), log.Err(err))
		return false
	}
	return true
}

func (t *Tracker) phaseLocked() Phase {
	return phaseOf(t.rec.ApplicationIsActive, t.rec.ApplicationIsInForeground)
}

func (t *Tracker) debugAfterTerminateLocked(what string) {
	if t.terminated {
		t.opts.logger.Debug("notification after terminate", log.String("notification", what))
	}
}

func (t *Tracker) emit(from, to Phase, reason string) {
	if t.opts.emitter == nil || from == to {
		return
	}
	t.opts.emitter.OnTransition(from, to, reason)
}

// addDuration adds non-negative durations, saturating at the maximum.
func addDuration(a, b time.Duration) time.Duration {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}
