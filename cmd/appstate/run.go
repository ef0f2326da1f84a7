package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/appstate/internal/metrics"
	"github.com/bft-labs/appstate/pkg/log"
	"github.com/bft-labs/appstate/pkg/monitor"
	"github.com/bft-labs/appstate/pkg/tracker"
)

// action is what a signal asks the hosted tracker to do.
type action int

const (
	actionTerminate action = iota
	actionCrash
	actionBackground
	actionForeground
)

func (a action) String() string {
	switch a {
	case actionTerminate:
		return "terminate"
	case actionCrash:
		return "crash"
	case actionBackground:
		return "background"
	case actionForeground:
		return "foreground"
	default:
		return "unknown"
	}
}

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Track this process's lifecycle until it is signalled",
		Long: `Host a tracker for the lifetime of this process.

The process starts active and in the foreground. SIGUSR1 moves it to the
background, SIGUSR2 back to the foreground. SIGINT and SIGTERM terminate
normally. SIGQUIT and SIGABRT record a crash, print the crash report and exit
with status 2.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sigCh := make(chan os.Signal, 4)
			sigs := make([]os.Signal, 0, len(signalActions))
			for s := range signalActions {
				sigs = append(sigs, s)
			}
			signal.Notify(sigCh, sigs...)
			defer signal.Stop(sigCh)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			actions := make(chan action)
			go func() {
				for {
					select {
					case s := <-sigCh:
						select {
						case actions <- signalActions[s]:
						case <-ctx.Done():
							return
						}
					case <-ctx.Done():
						return
					}
				}
			}()
			return a.runHost(ctx, cmd.OutOrStdout(), actions)
		},
	}
	cmd.Flags().StringVar(&a.cfg.MetricsAddr, "metrics-addr", a.cfg.MetricsAddr, "serve Prometheus metrics on this address (empty disables)")
	return cmd
}

// host drives one tracker from actions.
type host struct {
	tracker  *tracker.Tracker
	registry *monitor.Registry
	logger   log.Logger
	out      io.Writer
}

// transitionLogger logs every phase change.
type transitionLogger struct{ logger log.Logger }

func (l transitionLogger) OnTransition(from, to tracker.Phase, reason string) {
	l.logger.Info("phase changed",
		log.String("from", from.String()),
		log.String("to", to.String()),
		log.String("reason", reason),
	)
}

func (a *app) runHost(ctx context.Context, out io.Writer, actions <-chan action) error {
	t := a.newTracker(tracker.WithEventEmitter(transitionLogger{a.logger}))
	t.Initialize(a.cfg.StateFile)
	defer t.Close()

	reg := monitor.NewRegistry()
	if err := reg.Register(monitor.NewAppState(t)); err != nil {
		return err
	}
	if err := reg.SetEnabled(monitor.AppStateID, true); err != nil {
		return err
	}

	if a.cfg.MetricsAddr != "" {
		stop, err := serveMetrics(a.cfg.MetricsAddr, t, a.logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	h := &host{tracker: t, registry: reg, logger: a.logger, out: out}
	t.NotifyAppInForeground(true)
	t.NotifyAppActive(true)
	a.logger.Info("tracking", log.Path(t.Path()), log.String("launch_id", t.LaunchID()))

	for {
		select {
		case <-ctx.Done():
			h.apply(actionTerminate)
			return nil
		case act := <-actions:
			if done, err := h.apply(act); done {
				return err
			}
		}
	}
}

// apply performs act and reports whether the host should stop.
func (h *host) apply(act action) (bool, error) {
	h.logger.Debug("signal", log.String("action", act.String()))

	switch act {
	case actionBackground:
		h.tracker.NotifyAppActive(false)
		h.tracker.NotifyAppInForeground(false)
		return false, nil

	case actionForeground:
		h.tracker.NotifyAppInForeground(true)
		h.tracker.NotifyAppActive(true)
		return false, nil

	case actionCrash:
		h.tracker.NotifyAppCrash()
		ev := monitor.NewEvent()
		h.registry.AddContextualInfo(&ev)
		enc := json.NewEncoder(h.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(ev); err != nil {
			return true, err
		}
		return true, errSimulatedCrash

	default:
		h.tracker.NotifyAppActive(false)
		h.tracker.NotifyAppTerminate()
		if stats := h.tracker.Stats(); stats.PersistFailures > 0 {
			return true, fmt.Errorf("%d state writes failed", stats.PersistFailures)
		}
		return true, nil
	}
}

// serveMetrics listens on addr and serves /metrics until stop is called.
func serveMetrics(addr string, t *tracker.Tracker, logger log.Logger) (stop func(), err error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listen %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(metrics.NewRegistry(t, true)))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", log.Err(err))
		}
	}()
	logger.Info("serving metrics", log.String("addr", ln.Addr().String()))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
