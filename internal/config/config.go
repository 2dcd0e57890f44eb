// Package config loads the optional user configuration for reverendo.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"reverendo/internal/launch"
	"reverendo/internal/reconcile"
)

// Config holds all reverendo configuration.
type Config struct {
	// Assistant started after installation
	Assistant AssistantConfig `yaml:"assistant"`

	// Launch hands off to the assistant after installing
	Launch bool `yaml:"launch"`

	// Servers are extra .mcp.json entries written next to the defaults
	Servers map[string]reconcile.Server `yaml:"servers,omitempty"`

	Logging LoggingConfig `yaml:"logging"`
}

// AssistantConfig configures the hand-off process.
type AssistantConfig struct {
	Binary      string   `yaml:"binary"`
	Args        []string `yaml:"args,omitempty"`
	InstallHint string   `yaml:"install_hint"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Assistant: AssistantConfig{
			Binary:      launch.DefaultBinary,
			InstallHint: launch.DefaultInstallHint,
		},
		Launch: true,
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// DefaultPath returns the per-user config location, or "" when the
// platform has no config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "reverendo", "config.yaml")
}

// Load loads configuration from a YAML file. A missing file (or an empty
// path) yields the defaults. Environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if bin := os.Getenv("REVERENDO_ASSISTANT"); bin != "" {
		c.Assistant.Binary = bin
	}
	if v := os.Getenv("REVERENDO_NO_LAUNCH"); v != "" {
		if noLaunch, err := strconv.ParseBool(v); err == nil {
			c.Launch = !noLaunch
		}
	}
	if level := os.Getenv("REVERENDO_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Assistant.Binary) == "" {
		return fmt.Errorf("assistant.binary must not be empty")
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}

	names := make([]string, 0, len(c.Servers))
	for name := range c.Servers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if c.Servers[name].Command == "" {
			return fmt.Errorf("server %q: command must not be empty", name)
		}
	}
	return nil
}
