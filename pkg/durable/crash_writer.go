package durable

import (
	"os"
	"runtime"
	"sync/atomic"

	"github.com/bft-labs/appstate/internal/domain"
)

// CrashTempSuffix is appended to the target path for the crash-path temporary file.
const CrashTempSuffix = ".crash.tmp"

// CrashWriter replaces a single file from crash handling code.
//
// Everything that needs allocation (directory handle, file names) is set up by
// NewCrashWriter. Write takes no mutex; a second concurrent Write fails fast
// with domain.ErrCrashWriteBusy instead of waiting.
type CrashWriter struct {
	path   string
	target *crashTarget

	busy   atomic.Bool
	closed atomic.Bool

	writes   atomic.Uint64
	failures atomic.Uint64
}

// NewCrashWriter prepares a crash writer for path, creating its parent directory.
func NewCrashWriter(path string) (*CrashWriter, error) {
	target, err := openCrashTarget(path)
	if err != nil {
		return nil, err
	}
	return &CrashWriter{path: path, target: target}, nil
}

// Write atomically replaces the target file with data.
func (w *CrashWriter) Write(data []byte) error {
	if w.closed.Load() {
		return os.ErrClosed
	}
	if !w.busy.CompareAndSwap(false, true) {
		return domain.ErrCrashWriteBusy
	}
	defer w.busy.Store(false)

	if err := w.target.write(data); err != nil {
		w.failures.Add(1)
		return err
	}
	w.writes.Add(1)
	return nil
}

// Writes returns the number of successful writes.
func (w *CrashWriter) Writes() uint64 { return w.writes.Load() }

// Failures returns the number of failed writes.
func (w *CrashWriter) Failures() uint64 { return w.failures.Load() }

// Path returns the target path.
func (w *CrashWriter) Path() string { return w.path }

// Close releases the pre-opened handles. An in-flight Write finishes first.
func (w *CrashWriter) Close() error {
	if !w.closed.CompareAndSwap(false, true) {
		return nil
	}
	for !w.busy.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
	return w.target.close()
}
