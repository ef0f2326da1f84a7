package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/appstate/internal/domain"
)

// DefaultStateFileName is the state file name used when only a directory is known.
const DefaultStateFileName = "appstate.json"

// Config holds CLI configuration for appstate.
type Config struct {
	StateFile string
	LogLevel  string

	// MetricsAddr enables the /metrics endpoint of the run command when set.
	MetricsAddr string

	WriteAttempts int
	LockState     bool
	WatchDebounce time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		StateFile:     defaultStateFile(),
		LogLevel:      "info",
		WriteAttempts: 3,
		LockState:     true,
		WatchDebounce: 100 * time.Millisecond,
	}
}

func defaultStateFile() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".appstate", DefaultStateFileName)
	}
	return ""
}

// Validate checks the configuration for errors and normalizes derived values.
func (c *Config) Validate() error {
	if c.StateFile == "" {
		return fmt.Errorf("%w: state-file is required", domain.ErrInvalidConfig)
	}
	if strings.HasSuffix(c.StateFile, string(filepath.Separator)) {
		c.StateFile = filepath.Join(c.StateFile, DefaultStateFileName)
	}
	c.StateFile = filepath.Clean(c.StateFile)

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log-level: %v", domain.ErrInvalidConfig, err)
	}

	if c.WriteAttempts <= 0 {
		return fmt.Errorf("%w: write attempts must be positive", domain.ErrInvalidConfig)
	}
	if c.WatchDebounce < 0 {
		return fmt.Errorf("%w: watch debounce must not be negative", domain.ErrInvalidConfig)
	}
	return nil
}

// Level returns the parsed log level, or info if it does not parse.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
