package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/appstate/internal/cliconfig"
	"github.com/bft-labs/appstate/internal/domain"
	"github.com/bft-labs/appstate/pkg/log"
	"github.com/bft-labs/appstate/pkg/state"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	a := &app{cfg: cliconfig.DefaultConfig()}
	root := newRootCmd(a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func saveState(t *testing.T, path string, p state.Persisted) {
	t.Helper()
	require.NoError(t, state.NewFileRepository(path, nil).Save(context.Background(), p))
}

func loadState(t *testing.T, path string) state.Persisted {
	t.Helper()
	p, err := state.NewFileRepository(path, nil).Load(context.Background())
	require.NoError(t, err)
	return p
}

func TestShow_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "appstate.json")
	saveState(t, path, state.Persisted{
		CrashedLastLaunch:            true,
		ActiveDurationSinceLastCrash: 3 * time.Second,
		LaunchesSinceLastCrash:       2,
	})

	out, err := execute(t, "show", "--state-file", path, "--json")
	require.NoError(t, err)

	var v fileView
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, path, v.Path)
	assert.True(t, v.CrashedLastLaunch)
	assert.Equal(t, 3*time.Second, v.ActiveDurationSinceLastCrash)
	assert.Equal(t, int64(2), v.LaunchesSinceLastCrash)
}

func TestShow_Table(t *testing.T) {
	path := filepath.Join(t.TempDir(), "appstate.json")
	saveState(t, path, state.Persisted{SessionsSinceLastCrash: 5})

	out, err := execute(t, "show", "--state-file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "sessions since last crash")
	assert.Contains(t, out, "5")
}

func TestShow_StateFileFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.json")
	saveState(t, path, state.Persisted{LaunchesSinceLastCrash: 8})
	t.Setenv("APPSTATE_STATE_FILE", path)

	out, err := execute(t, "show", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"launches_since_last_crash": 8`)
}

func TestShow_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "appstate.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))

	_, err := execute(t, "show", "--state-file", path)
	assert.True(t, errors.Is(err, domain.ErrCorruptState))
}

func TestInvalidConfig(t *testing.T) {
	_, err := execute(t, "show", "--state-file", filepath.Join(t.TempDir(), "s.json"), "--log-level", "loud")
	assert.True(t, errors.Is(err, domain.ErrInvalidConfig))
}

func TestReset_ClearsCounters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "appstate.json")
	saveState(t, path, state.Persisted{
		CrashedLastLaunch:      true,
		LaunchesSinceLastCrash: 4,
		SessionsSinceLastCrash: 9,
	})

	out, err := execute(t, "reset", "--state-file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "launches since last crash")
	assert.Equal(t, state.Persisted{}, loadState(t, path))
}

func newTestApp(t *testing.T) *app {
	t.Helper()
	cfg := cliconfig.DefaultConfig()
	cfg.StateFile = filepath.Join(t.TempDir(), "appstate.json")
	return &app{cfg: cfg, logger: log.NewNoopLogger()}
}

func startHost(t *testing.T, a *app) (chan<- action, <-chan error, *bytes.Buffer) {
	t.Helper()
	actions := make(chan action)
	done := make(chan error, 1)
	var out bytes.Buffer
	go func() {
		done <- a.runHost(context.Background(), &out, actions)
	}()
	return actions, done, &out
}

func wait(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("host did not stop")
		return nil
	}
}

func TestRunHost_Terminate(t *testing.T) {
	a := newTestApp(t)
	actions, done, _ := startHost(t, a)

	actions <- actionBackground
	actions <- actionForeground
	actions <- actionTerminate
	require.NoError(t, wait(t, done))

	p := loadState(t, a.cfg.StateFile)
	assert.False(t, p.CrashedLastLaunch)
	assert.Equal(t, int64(1), p.LaunchesSinceLastCrash)
	assert.Equal(t, int64(2), p.SessionsSinceLastCrash)
}

func TestRunHost_Crash(t *testing.T) {
	a := newTestApp(t)
	actions, done, out := startHost(t, a)

	actions <- actionCrash
	err := wait(t, done)
	assert.True(t, errors.Is(err, errSimulatedCrash))

	var ev struct {
		ID          string       `json:"id"`
		HasAppState bool         `json:"has_app_state"`
		AppState    state.Record `json:"app_state"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &ev))
	assert.NotEmpty(t, ev.ID)
	assert.True(t, ev.HasAppState)
	assert.True(t, ev.AppState.CrashedThisLaunch)
	assert.NotEmpty(t, ev.AppState.LaunchID)

	p := loadState(t, a.cfg.StateFile)
	assert.True(t, p.CrashedLastLaunch)
	assert.Equal(t, int64(1), p.LaunchesSinceLastCrash)
}

func TestRunHost_ContextCancelTerminates(t *testing.T) {
	a := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- a.runHost(ctx, &bytes.Buffer{}, make(chan action))
	}()

	cancel()
	require.NoError(t, wait(t, done))
	assert.Equal(t, int64(1), loadState(t, a.cfg.StateFile).SessionsSinceLastCrash)
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, "terminate", actionTerminate.String())
	assert.Equal(t, "crash", actionCrash.String())
	assert.Equal(t, "background", actionBackground.String())
	assert.Equal(t, "foreground", actionForeground.String())
	assert.Equal(t, "unknown", action(42).String())
}
