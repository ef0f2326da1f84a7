package durable

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bft-labs/appstate/pkg/log"
)

// TempSuffix is appended to the target path for the normal-path temporary file.
const TempSuffix = ".tmp"

// Writer performs atomic, fsync'd file replacement with bounded retries.
// It is safe for concurrent use as long as callers do not write the same
// path concurrently; the tracker serializes its writes under its own mutex.
type Writer struct {
	attempts       int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         log.Logger
}

// Option configures a Writer.
type Option func(*Writer)

// WithAttempts sets how many times a write is tried before giving up.
// Values below 1 are treated as 1.
func WithAttempts(n int) Option {
	return func(w *Writer) {
		if n < 1 {
			n = 1
		}
		w.attempts = n
	}
}

// WithBackoff sets the delay range between attempts.
func WithBackoff(initial, max time.Duration) Option {
	return func(w *Writer) {
		w.initialBackoff = initial
		w.maxBackoff = max
	}
}

// WithLogger sets the logger used to report failed attempts.
func WithLogger(logger log.Logger) Option {
	return func(w *Writer) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWriter creates a Writer. Defaults: 3 attempts, 5ms initial and 50ms max backoff.
func NewWriter(opts ...Option) *Writer {
	w := &Writer{
		attempts:       3,
		initialBackoff: 5 * time.Millisecond,
		maxBackoff:     50 * time.Millisecond,
		logger:         log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteFile atomically replaces path with data.
// On failure the previous contents of path are left untouched.
func (w *Writer) WriteFile(path string, data []byte, perm os.FileMode) error {
	backoff := NewBackoff(w.initialBackoff, w.maxBackoff)

	var err error
	for attempt := 1; attempt <= w.attempts; attempt++ {
		if err = replaceFile(path, data, perm); err == nil {
			return nil
		}
		w.logger.Warn("durable write failed",
			log.Path(path),
			log.Int("attempt", attempt),
			log.Err(err),
		)
		if attempt < w.attempts {
			backoff.Sleep()
		}
	}
	return fmt.Errorf("durable write %s: %w", path, err)
}

func replaceFile(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp := path + TempSuffix
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmp, path); err != nil {
		return err
	}
	return syncDir(dir)
}
