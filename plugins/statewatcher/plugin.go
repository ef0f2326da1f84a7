// Package statewatcher follows a lifecycle state file on disk and reports its
// decoded contents whenever another process rewrites it.
package statewatcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/appstate/pkg/log"
	"github.com/bft-labs/appstate/pkg/state"
)

// DefaultDebounce is the delay used when none is configured.
const DefaultDebounce = 100 * time.Millisecond

// Plugin watches one state file.
type Plugin struct {
	mu sync.Mutex

	path          string
	debounceDelay time.Duration
	handler       Handler
	repo          *state.FileRepository
	logger        log.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a watcher for the state file at path.
func New(path string, handler Handler, opts ...Option) *Plugin {
	p := &Plugin{
		path:          path,
		debounceDelay: DefaultDebounce,
		handler:       handler,
		repo:          state.NewFileRepository(path, nil),
		logger:        log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "statewatcher"
}

// Start reports the current file contents once and then watches the file's
// directory until ctx is done or Shutdown is called.
func (p *Plugin) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return fmt.Errorf("statewatcher: already started")
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("statewatcher: create %s: %w", dir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("statewatcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("statewatcher: watch %s: %w", dir, err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("state watcher started", log.Path(p.path), log.Duration("debounce", p.debounceDelay))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)
	return nil
}

// Shutdown stops the watcher. The handler is not called after it returns.
func (p *Plugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// watchLoop runs the handler on this goroutine only.
func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	p.report(ctx)

	name := filepath.Base(p.path)
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(p.debounceDelay)
			} else {
				timer.Reset(p.debounceDelay)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			p.report(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("state watcher error", log.Path(p.path), log.Err(err))
		}
	}
}

func (p *Plugin) report(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	persisted, err := p.repo.Load(ctx)
	if err != nil {
		p.logger.Warn("state file unreadable", log.Path(p.path), log.Err(err))
		persisted = state.Persisted{}
	} else {
		p.logger.Debug("state file changed", log.Path(p.path))
	}
	if p.handler != nil {
		p.handler(persisted, err)
	}
}
