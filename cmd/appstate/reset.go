package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bft-labs/appstate/pkg/log"
)

func newResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the since-last-crash counters of a state file",
		Long: "Clear the since-last-crash counters and the crashed-last-launch flag. " +
			"The file is loaded and rewritten with the same durable write the tracker uses.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := a.newTracker()
			t.Initialize(a.cfg.StateFile)
			ok := t.Reset()
			if err := t.Close(); err != nil {
				a.logger.Warn("close tracker failed", log.Err(err))
			}
			if !ok {
				return fmt.Errorf("reset %s: state was not persisted", a.cfg.StateFile)
			}

			v, err := loadView(cmd.Context(), a.cfg.StateFile)
			if err != nil {
				return err
			}
			return printState(cmd.OutOrStdout(), v, false)
		},
	}
}
