package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reverendo/internal/reconcile"
)

// clearEnv keeps the developer's environment out of the tests.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("REVERENDO_ASSISTANT", "")
	t.Setenv("REVERENDO_NO_LAUNCH", "")
	t.Setenv("REVERENDO_LOG_LEVEL", "")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "claude", cfg.Assistant.Binary)
	assert.Equal(t, "npm install -g @anthropic-ai/claude-code", cfg.Assistant.InstallHint)
	assert.True(t, cfg.Launch)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
servers:
  local-db:
    command: npx
    args: [-y, db-mcp]
    env:
      DB_URL: postgres://localhost
logging:
  level: debug
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "claude", cfg.Assistant.Binary)
	assert.True(t, cfg.Launch)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, reconcile.Server{
		Command: "npx",
		Args:    []string{"-y", "db-mcp"},
		Env:     map[string]string{"DB_URL": "postgres://localhost"},
	}, cfg.Servers["local-db"])
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("launch: [unclosed"), 0644))
	_, err := Load(bad)
	assert.Error(t, err)

	// A directory cannot be read as a config file.
	_, err = Load(dir)
	assert.Error(t, err)
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Assistant.Args = []string{"--resume"}
	cfg.Launch = false
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestConfig_EnvOverrides(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "assistant binary",
			env:  map[string]string{"REVERENDO_ASSISTANT": "/opt/bin/claude"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/opt/bin/claude", cfg.Assistant.Binary)
			},
		},
		{
			name: "no launch",
			env:  map[string]string{"REVERENDO_NO_LAUNCH": "1"},
			check: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.Launch)
			},
		},
		{
			name: "no launch false keeps launching",
			env:  map[string]string{"REVERENDO_NO_LAUNCH": "false"},
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.Launch)
			},
		},
		{
			name: "garbage is ignored",
			env:  map[string]string{"REVERENDO_NO_LAUNCH": "maybe"},
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.Launch)
			},
		},
		{
			name: "log level",
			env:  map[string]string{"REVERENDO_LOG_LEVEL": "info"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "info", cfg.Logging.Level)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load("")
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestConfig_EnvBeatsFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: error\n"), 0644))
	t.Setenv("REVERENDO_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Assistant.Binary = " "
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Logging.Level = "loud"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Servers = map[string]reconcile.Server{"empty": {Args: []string{"x"}}}
	assert.Error(t, cfg.Validate())

	cfg.Servers = map[string]reconcile.Server{"ok": {Command: "node"}}
	assert.NoError(t, cfg.Validate())
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	t.Setenv("HOME", "/tmp/home")
	p := DefaultPath()
	if p == "" {
		t.Skip("no user config dir on this platform")
	}
	assert.Equal(t, "config.yaml", filepath.Base(p))
	assert.Equal(t, "reverendo", filepath.Base(filepath.Dir(p)))
}
