package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/appstate/pkg/log"
	"github.com/bft-labs/appstate/pkg/state"
	"github.com/bft-labs/appstate/plugins/statewatcher"
)

func newWatchCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print a state file every time it changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			var mu sync.Mutex
			out := cmd.OutOrStdout()
			w := statewatcher.New(a.cfg.StateFile, func(p state.Persisted, err error) {
				if err != nil {
					a.logger.Warn("state file unreadable", log.Err(err))
					return
				}
				mu.Lock()
				defer mu.Unlock()
				if err := printState(out, newFileView(a.cfg.StateFile, p), asJSON); err != nil {
					a.logger.Error("print state failed", log.Err(err))
				}
			},
				statewatcher.WithDebounce(a.cfg.WatchDebounce),
				statewatcher.WithLogger(a.logger),
			)
			if err := w.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return w.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	cmd.Flags().DurationVar(&a.cfg.WatchDebounce, "debounce", a.cfg.WatchDebounce, "wait this long after a change before reading")
	return cmd
}
