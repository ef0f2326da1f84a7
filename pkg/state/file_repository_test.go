package state

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bft-labs/appstate/internal/domain"
)

func TestFileRepository_LoadMissingFile(t *testing.T) {
	repo := NewFileRepository(filepath.Join(t.TempDir(), "state.json"), nil)

	p, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error for missing file: %v", err)
	}
	if p != (Persisted{}) {
		t.Fatalf("expected zero state, got %+v", p)
	}
}

func TestFileRepository_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "state.json")
	repo := NewFileRepository(path, nil)

	want := Persisted{
		CrashedLastLaunch:                true,
		ActiveDurationSinceLastCrash:     5 * time.Second,
		BackgroundDurationSinceLastCrash: 7 * time.Second,
		LaunchesSinceLastCrash:           3,
		SessionsSinceLastCrash:           4,
	}
	if err := repo.Save(context.Background(), want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if repo.Path() != path {
		t.Fatalf("Path() = %s, want %s", repo.Path(), path)
	}

	got, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Fatalf("Load = %+v, want %+v", got, want)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestFileRepository_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{{{{"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	p, err := NewFileRepository(path, nil).Load(context.Background())
	if !errors.Is(err, domain.ErrCorruptState) {
		t.Fatalf("expected ErrCorruptState, got %v", err)
	}
	if p != (Persisted{}) {
		t.Fatalf("expected zero state, got %+v", p)
	}
}

func TestFileRepository_CanceledContext(t *testing.T) {
	repo := NewFileRepository(filepath.Join(t.TempDir(), "state.json"), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := repo.Save(ctx, Persisted{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Save with canceled ctx = %v, want context.Canceled", err)
	}
	if _, err := repo.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Load with canceled ctx = %v, want context.Canceled", err)
	}
}
