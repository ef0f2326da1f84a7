package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/appstate/pkg/state"
)

// fileView is the printed form of a state file.
type fileView struct {
	Path                             string        `json:"path"`
	CrashedLastLaunch                bool          `json:"crashed_last_launch"`
	ActiveDurationSinceLastCrash     time.Duration `json:"active_duration_since_last_crash_ns"`
	BackgroundDurationSinceLastCrash time.Duration `json:"background_duration_since_last_crash_ns"`
	LaunchesSinceLastCrash           int64         `json:"launches_since_last_crash"`
	SessionsSinceLastCrash           int64         `json:"sessions_since_last_crash"`
}

func newFileView(path string, p state.Persisted) fileView {
	return fileView{
		Path:                             path,
		CrashedLastLaunch:                p.CrashedLastLaunch,
		ActiveDurationSinceLastCrash:     p.ActiveDurationSinceLastCrash,
		BackgroundDurationSinceLastCrash: p.BackgroundDurationSinceLastCrash,
		LaunchesSinceLastCrash:           p.LaunchesSinceLastCrash,
		SessionsSinceLastCrash:           p.SessionsSinceLastCrash,
	}
}

func newShowCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the contents of a state file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := state.NewFileRepository(a.cfg.StateFile, nil)
			p, err := repo.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("read %s: %w", a.cfg.StateFile, err)
			}
			return printState(cmd.OutOrStdout(), newFileView(a.cfg.StateFile, p), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func printState(w io.Writer, v fileView, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "path\t%s\n", v.Path)
	fmt.Fprintf(tw, "crashed last launch\t%v\n", v.CrashedLastLaunch)
	fmt.Fprintf(tw, "launches since last crash\t%d\n", v.LaunchesSinceLastCrash)
	fmt.Fprintf(tw, "sessions since last crash\t%d\n", v.SessionsSinceLastCrash)
	fmt.Fprintf(tw, "active since last crash\t%s\n", v.ActiveDurationSinceLastCrash)
	fmt.Fprintf(tw, "background since last crash\t%s\n", v.BackgroundDurationSinceLastCrash)
	return tw.Flush()
}

// loadView is used by watch and reset to print the file after a change.
func loadView(ctx context.Context, path string) (fileView, error) {
	p, err := state.NewFileRepository(path, nil).Load(ctx)
	if err != nil {
		return fileView{}, err
	}
	return newFileView(path, p), nil
}
