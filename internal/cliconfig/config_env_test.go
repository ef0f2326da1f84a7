package cliconfig

import (
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"APPSTATE_STATE_FILE":     "/env/state.json",
				"APPSTATE_LOG_LEVEL":      "warn",
				"APPSTATE_METRICS_ADDR":   "127.0.0.1:9100",
				"APPSTATE_WRITE_ATTEMPTS": "7",
				"APPSTATE_WATCH_DEBOUNCE": "2s",
				"APPSTATE_LOCK_STATE":     "1",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				StateFile:     "/env/state.json",
				LogLevel:      "warn",
				MetricsAddr:   "127.0.0.1:9100",
				WriteAttempts: 7,
				WatchDebounce: 2 * time.Second,
				LockState:     true,
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"APPSTATE_STATE_FILE": "/env/state.json",
				"APPSTATE_LOG_LEVEL":  "error",
			},
			changed:  map[string]bool{"state-file": true},
			initial:  Config{StateFile: "/flag/state.json"},
			expected: Config{StateFile: "/flag/state.json", LogLevel: "error"},
		},
		{
			name:    "returns error for invalid duration",
			envVars: map[string]string{"APPSTATE_WATCH_DEBOUNCE": "not-a-duration"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:    "returns error for invalid int",
			envVars: map[string]string{"APPSTATE_WRITE_ATTEMPTS": "many"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:     "handles bool 'false' as false",
			envVars:  map[string]string{"APPSTATE_LOCK_STATE": "false"},
			changed:  map[string]bool{},
			initial:  Config{LockState: true},
			expected: Config{LockState: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)

			if tt.wantErr && err == nil {
				t.Error("ApplyEnvConfig() expected error but got nil")
				return
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ApplyEnvConfig() unexpected error: %v", err)
				return
			}
			if !tt.wantErr && cfg != tt.expected {
				t.Errorf("ApplyEnvConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

// Integration test: precedence order (CLI > Env > File)
func TestConfigPrecedence(t *testing.T) {
	fileConf := FileConfig{
		StateFile:     "/file/state.json",
		LogLevel:      "debug",
		WriteAttempts: 2,
	}

	t.Setenv("APPSTATE_STATE_FILE", "/env/state.json")
	t.Setenv("APPSTATE_LOG_LEVEL", "warn")

	changed := map[string]bool{
		"state-file": true,
	}

	cfg := Config{
		StateFile: "/cli/state.json",
	}

	if err := ApplyFileConfig(&cfg, fileConf, changed); err != nil {
		t.Fatalf("ApplyFileConfig failed: %v", err)
	}
	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig failed: %v", err)
	}

	if cfg.StateFile != "/cli/state.json" {
		t.Errorf("StateFile = %v, want /cli/state.json (CLI should win)", cfg.StateFile)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %v, want warn (env should override file)", cfg.LogLevel)
	}
	if cfg.WriteAttempts != 2 {
		t.Errorf("WriteAttempts = %v, want 2 (file should set)", cfg.WriteAttempts)
	}
}
