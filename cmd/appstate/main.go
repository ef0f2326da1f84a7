package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/appstate/internal/cliconfig"
	"github.com/bft-labs/appstate/pkg/durable"
	"github.com/bft-labs/appstate/pkg/log"
	"github.com/bft-labs/appstate/pkg/tracker"
)

const helpDescription = `
Inspect and maintain application lifecycle state files.

A state file records launches, sessions and active/background time since the
last crash, and whether the launch that wrote it crashed. Configure via file,
env (APPSTATE_*), or flags.
`

var exampleUsage = strings.TrimSpace(`
  appstate show --state-file ~/.myapp/appstate.json
  appstate reset --state-file ~/.myapp/appstate.json
  appstate run --metrics-addr 127.0.0.1:9100
  appstate watch
`)

// errSimulatedCrash makes main exit with crashExitCode.
var errSimulatedCrash = errors.New("simulated crash")

const crashExitCode = 2

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// app carries the resolved configuration into subcommands.
type app struct {
	cfg     cliconfig.Config
	cfgPath string
	zl      zerolog.Logger
	logger  log.Logger
}

func main() {
	a := &app{cfg: cliconfig.DefaultConfig()}
	root := newRootCmd(a)
	if err := root.Execute(); err != nil {
		if errors.Is(err, errSimulatedCrash) {
			os.Exit(crashExitCode)
		}
		a.zl.Error().Err(err).Msg("appstate")
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	a.zl = cliconfig.Logger(zerolog.InfoLevel)
	a.logger = log.NewZerologAdapterWithLogger(a.zl)

	root := &cobra.Command{
		Use:           "appstate",
		Short:         "Inspect and maintain application lifecycle state files",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "path to config file (default: $HOME/.appstate/config.toml)")
	pf.StringVar(&a.cfg.StateFile, "state-file", a.cfg.StateFile, "path to the state file")
	pf.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "log level (debug, info, warn, error)")
	pf.IntVar(&a.cfg.WriteAttempts, "write-attempts", a.cfg.WriteAttempts, "attempts per state write before giving up")
	pf.BoolVar(&a.cfg.LockState, "lock-state", a.cfg.LockState, "hold an advisory lock on the state file while tracking")

	root.AddCommand(
		newShowCmd(a),
		newResetCmd(a),
		newRunCmd(a),
		newWatchCmd(a),
	)
	return root
}

// loadConfig layers defaults, the config file, APPSTATE_* variables and flags.
func (a *app) loadConfig(cmd *cobra.Command) error {
	cfgFile := a.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&a.cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := cliconfig.ApplyEnvConfig(&a.cfg, changed); err != nil {
		return err
	}

	if err := a.cfg.Validate(); err != nil {
		return err
	}

	a.zl = cliconfig.Logger(a.cfg.Level())
	a.logger = log.NewZerologAdapterWithLogger(a.zl)
	a.zl.Debug().Interface("config", a.cfg).Msg("configuration")
	return nil
}

func (a *app) writer() *durable.Writer {
	return durable.NewWriter(
		durable.WithAttempts(a.cfg.WriteAttempts),
		durable.WithLogger(a.logger),
	)
}

func (a *app) newTracker(opts ...tracker.Option) *tracker.Tracker {
	base := []tracker.Option{
		tracker.WithLogger(a.logger),
		tracker.WithWriter(a.writer()),
		tracker.WithStateLock(a.cfg.LockState),
	}
	return tracker.New(append(base, opts...)...)
}
