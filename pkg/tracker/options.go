package tracker

import (
	"github.com/bft-labs/appstate/pkg/durable"
	"github.com/bft-labs/appstate/pkg/log"
	"github.com/bft-labs/appstate/pkg/state"
)

// Option configures optional behavior of a Tracker.
type Option func(*options)

type options struct {
	clock     Clock
	logger    log.Logger
	emitter   EventEmitter
	repo      state.Repository
	writer    *durable.Writer
	lockState bool
}

func defaultOptions() options {
	return options{
		clock:     SystemClock(),
		logger:    log.NewNoopLogger(),
		lockState: true,
	}
}

// WithClock sets the time source. Tests use it to drive elapsed time.
func WithClock(clock Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEventEmitter sets a handler for phase transitions.
func WithEventEmitter(emitter EventEmitter) Option {
	return func(o *options) {
		o.emitter = emitter
	}
}

// WithRepository replaces the file repository used on normal paths.
// The crash path still writes the file given to Initialize.
func WithRepository(repo state.Repository) Option {
	return func(o *options) {
		o.repo = repo
	}
}

// WithWriter sets the durable writer backing the default file repository.
func WithWriter(w *durable.Writer) Option {
	return func(o *options) {
		o.writer = w
	}
}

// WithStateLock controls whether Initialize takes an advisory lock on
// "<path>.lock" so two processes sharing a state file are reported.
// Enabled by default.
func WithStateLock(enabled bool) Option {
	return func(o *options) {
		o.lockState = enabled
	}
}
