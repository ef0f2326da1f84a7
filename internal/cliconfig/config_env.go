package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (APPSTATE_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("state-file", os.Getenv("APPSTATE_STATE_FILE"), &cfg.StateFile)
	s.setString("log-level", os.Getenv("APPSTATE_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("metrics-addr", os.Getenv("APPSTATE_METRICS_ADDR"), &cfg.MetricsAddr)

	if err := s.setIntFromString("write-attempts", os.Getenv("APPSTATE_WRITE_ATTEMPTS"), &cfg.WriteAttempts); err != nil {
		return err
	}
	if err := s.setDuration("debounce", os.Getenv("APPSTATE_WATCH_DEBOUNCE"), &cfg.WatchDebounce); err != nil {
		return err
	}

	s.setBoolFromString("lock-state", os.Getenv("APPSTATE_LOCK_STATE"), &cfg.LockState)
	return nil
}
