package statewatcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/appstate/internal/domain"
	"github.com/bft-labs/appstate/pkg/state"
)

type result struct {
	p   state.Persisted
	err error
}

func startWatcher(t *testing.T, path string) (*Plugin, <-chan result) {
	t.Helper()
	ch := make(chan result, 16)
	p := New(path, func(ps state.Persisted, err error) {
		ch <- result{ps, err}
	}, WithDebounce(20*time.Millisecond))

	require.NoError(t, p.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = p.Shutdown(ctx)
	})
	return p, ch
}

func next(t *testing.T, ch <-chan result) result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for state report")
		return result{}
	}
}

func TestPlugin_Name(t *testing.T) {
	assert.Equal(t, "statewatcher", New("x", nil).Name())
}

func TestPlugin_ReportsInitialAndChangedState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "appstate.json")
	repo := state.NewFileRepository(path, nil)
	require.NoError(t, repo.Save(context.Background(), state.Persisted{LaunchesSinceLastCrash: 1}))

	_, ch := startWatcher(t, path)

	first := next(t, ch)
	require.NoError(t, first.err)
	assert.Equal(t, int64(1), first.p.LaunchesSinceLastCrash)

	want := state.Persisted{LaunchesSinceLastCrash: 2, CrashedLastLaunch: true}
	require.NoError(t, repo.Save(context.Background(), want))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case r := <-ch:
			if r.err == nil && r.p == want {
				return
			}
		case <-deadline:
			t.Fatal("change was not reported")
		}
	}
}

func TestPlugin_ReportsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "appstate.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, ch := startWatcher(t, path)

	r := next(t, ch)
	assert.True(t, errors.Is(r.err, domain.ErrCorruptState))
	assert.Equal(t, state.Persisted{}, r.p)
}

func TestPlugin_StartTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "appstate.json")
	p, _ := startWatcher(t, path)
	assert.Error(t, p.Start(context.Background()))
}

func TestPlugin_NoReportsAfterShutdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "appstate.json")
	p, ch := startWatcher(t, path)
	next(t, ch)

	require.NoError(t, p.Shutdown(context.Background()))

	repo := state.NewFileRepository(path, nil)
	require.NoError(t, repo.Save(context.Background(), state.Persisted{SessionsSinceLastCrash: 9}))

	select {
	case r := <-ch:
		t.Fatalf("unexpected report after shutdown: %+v", r)
	case <-time.After(100 * time.Millisecond):
	}
}
