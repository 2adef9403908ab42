// Package coreconfig implements JSON-file configuration loading for the
// headless core harness, trimmed from the teacher's internal/app.Config to
// the knobs a windowless, audioless CLI actually has: where the ROM lives,
// how long to run, and what trace output to produce.
package coreconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the gones-core CLI's tunable settings.
type Config struct {
	ROMPath      string `json:"rom_path"`
	FrameBudget  int    `json:"frame_budget"`
	TraceCPU     bool   `json:"trace_cpu"`
	TracePath    string `json:"trace_path"`
	SnapshotPath string `json:"snapshot_path"`

	configPath string
	loaded     bool
}

// NewConfig returns the default configuration: no ROM, a 60-frame budget,
// tracing disabled.
func NewConfig() *Config {
	return &Config{
		FrameBudget: 60,
	}
}

// LoadFromFile loads configuration from a JSON file, writing out the
// default configuration if the file does not yet exist.
func (c *Config) LoadFromFile(path string) error {
	c.configPath = path

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return c.SaveToFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	if c.FrameBudget <= 0 {
		return fmt.Errorf("invalid configuration: frame_budget must be positive, got %d", c.FrameBudget)
	}
	c.loaded = true
	return nil
}

// SaveToFile writes the configuration to a JSON file, creating its parent
// directory if necessary.
func (c *Config) SaveToFile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// IsLoaded reports whether LoadFromFile successfully read an existing file.
func (c *Config) IsLoaded() bool { return c.loaded }

// GetDefaultConfigPath returns the default configuration file location.
func GetDefaultConfigPath() string {
	return filepath.Join(GetDefaultConfigDir(), "gones-core.json")
}

// GetDefaultConfigDir returns the default configuration directory,
// preferring $XDG_CONFIG_HOME/gones-core and falling back to ./config.
func GetDefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gones-core")
	}
	return "./config"
}
