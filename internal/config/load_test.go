package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"FLASHFLOW_LOG_LEVEL",
		"FLASHFLOW_LOG_FILE",
		"FLASHFLOW_STORAGE_BACKEND",
		"FLASHFLOW_STORAGE_PATH",
		"FLASHFLOW_STORAGE_URL",
		"FLASHFLOW_STORAGE_KEY",
		"FLASHFLOW_STUDY_TRANSITION_DURATION",
		"FLASHFLOW_STUDY_DEFAULT_MODE",
	} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

// TestLoadDefaults verifies the values used when nothing is configured.
func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err, "Load() should not return an error with default values")
	require.NotNil(t, cfg)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, BackendBadger, cfg.Storage.Backend)
	assert.NotEmpty(t, cfg.Storage.Path)
	assert.Equal(t, DefaultSlotKey, cfg.Storage.Key)
	assert.Equal(t, 500*time.Millisecond, cfg.Study.TransitionDuration)
	assert.Equal(t, "flip", cfg.Study.DefaultMode)
}

// TestLoadFromEnv verifies that environment variables override defaults.
func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("FLASHFLOW_LOG_LEVEL", "debug")
	t.Setenv("FLASHFLOW_STORAGE_BACKEND", "redis")
	t.Setenv("FLASHFLOW_STORAGE_URL", "redis://localhost:6379/0")
	t.Setenv("FLASHFLOW_STORAGE_KEY", "my_decks")
	t.Setenv("FLASHFLOW_STUDY_TRANSITION_DURATION", "250ms")
	t.Setenv("FLASHFLOW_STUDY_DEFAULT_MODE", "choice")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Storage.URL)
	assert.Equal(t, "my_decks", cfg.Storage.Key)
	assert.Equal(t, 250*time.Millisecond, cfg.Study.TransitionDuration)
	assert.Equal(t, "choice", cfg.Study.DefaultMode)
}

// TestLoadFromFile verifies that an explicit YAML file is read and that the
// environment still takes precedence over it.
func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "flashflow.yaml")
	content := `
log:
  level: warn
storage:
  backend: sqlite
  path: /tmp/decks.db
study:
  default_mode: choice
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("FLASHFLOW_LOG_LEVEL", "error")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Log.Level, "env should win over file")
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/decks.db", cfg.Storage.Path)
	assert.Equal(t, "choice", cfg.Study.DefaultMode)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

// TestLoadValidation verifies that invalid settings are rejected.
func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown log level", env: map[string]string{"FLASHFLOW_LOG_LEVEL": "verbose"}},
		{name: "unknown backend", env: map[string]string{"FLASHFLOW_STORAGE_BACKEND": "s3"}},
		{name: "postgres without url", env: map[string]string{"FLASHFLOW_STORAGE_BACKEND": "postgres"}},
		{name: "unknown mode", env: map[string]string{"FLASHFLOW_STUDY_DEFAULT_MODE": "srs"}},
		{name: "negative duration", env: map[string]string{"FLASHFLOW_STUDY_TRANSITION_DURATION": "-1s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load("")
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
