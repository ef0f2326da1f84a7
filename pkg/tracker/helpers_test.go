package tracker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bft-labs/appstate/pkg/log"
	"github.com/bft-labs/appstate/pkg/state"
)

// manualClock is a Clock advanced explicitly by tests.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memRepo is an in-memory state.Repository.
type memRepo struct {
	mu    sync.Mutex
	p     state.Persisted
	saves int
	err   error
}

func (r *memRepo) Load(ctx context.Context) (state.Persisted, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.p, nil
}

func (r *memRepo) Save(ctx context.Context, p state.Persisted) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.p = p
	r.saves++
	return nil
}

func (r *memRepo) Saved() (state.Persisted, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.p, r.saves
}

var errDiskFull = errors.New("disk full")

// recordingLogger keeps warn and error entries for assertions.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

type logEntry struct {
	level  string
	msg    string
	fields []log.Field
}

func (l *recordingLogger) record(level, msg string, fields []log.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, fields: fields})
}

func (l *recordingLogger) Debug(msg string, fields ...log.Field) { l.record("debug", msg, fields) }
func (l *recordingLogger) Info(msg string, fields ...log.Field)  { l.record("info", msg, fields) }
func (l *recordingLogger) Warn(msg string, fields ...log.Field)  { l.record("warn", msg, fields) }
func (l *recordingLogger) Error(msg string, fields ...log.Field) { l.record("error", msg, fields) }

// hasError reports whether any entry carries an error matching target.
func (l *recordingLogger) hasError(target error) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		for _, f := range e.fields {
			if err, ok := f.Value.(error); ok && errors.Is(err, target) {
				return true
			}
		}
	}
	return false
}

// transitionRecorder counts phase transitions.
type transitionRecorder struct {
	mu          sync.Mutex
	transitions []transition
}

type transition struct {
	from, to Phase
	reason   string
}

func (r *transitionRecorder) OnTransition(from, to Phase, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, transition{from, to, reason})
}

func (r *transitionRecorder) Transitions() []transition {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]transition{}, r.transitions...)
}
