package statewatcher

import (
	"time"

	"github.com/bft-labs/appstate/pkg/log"
	"github.com/bft-labs/appstate/pkg/state"
)

// Handler receives the decoded state file after each change. err is non-nil
// when the file could not be read or decoded; p is then the zero value.
type Handler func(p state.Persisted, err error)

// Option configures a Plugin.
type Option func(*Plugin)

// WithDebounce sets how long the watcher waits after the last change before
// reading the file.
func WithDebounce(d time.Duration) Option {
	return func(p *Plugin) {
		if d > 0 {
			p.debounceDelay = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(p *Plugin) {
		if logger != nil {
			p.logger = logger
		}
	}
}
