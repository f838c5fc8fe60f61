package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/codeclock/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 300, cfg.InactivityTimeoutSeconds)
	assert.Equal(t, 60, cfg.FocusTimeoutSeconds)
	assert.Equal(t, 5, cfg.SaveIntervalSeconds)
	assert.Equal(t, 10, cfg.BranchPollSeconds)
	assert.True(t, cfg.Health.Enabled)
	assert.True(t, cfg.Health.Modal)
	assert.Equal(t, 20, cfg.Health.EyeRestMinutes)
	assert.Equal(t, 45, cfg.Health.StretchMinutes)
	assert.Equal(t, 120, cfg.Health.BreakMinutes)
	assert.False(t, cfg.Diagnostics.Enabled)
	assert.Equal(t, "127.0.0.1:7717", cfg.Server.Listen)
	assert.True(t, cfg.Server.Metrics)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `
inactivity_timeout_seconds: 120
health:
  modal: false
  eye_rest_minutes: 30
server:
  listen: 127.0.0.1:9000
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 120, cfg.InactivityTimeoutSeconds)
	assert.False(t, cfg.Health.Modal)
	assert.True(t, cfg.Health.Enabled, "unset keys keep their defaults")
	assert.Equal(t, 30, cfg.Health.EyeRestMinutes)
	assert.Equal(t, 45, cfg.Health.StretchMinutes)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Listen)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "focus_timeout_seconds: 90\n")
	t.Setenv("CODECLOCK_FOCUS_TIMEOUT_SECONDS", "15")
	t.Setenv("CODECLOCK_HEALTH_ENABLED", "false")
	t.Setenv("CODECLOCK_LOG_LEVEL", "debug")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 15, cfg.FocusTimeoutSeconds)
	assert.False(t, cfg.Health.Enabled)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoad_MalformedFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "inactivity_timeout_seconds: [oops\n")

	cfg, err := Load(path)

	assert.Error(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestNormalize_ReplacesNonPositiveIntervals(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InactivityTimeoutSeconds = 0
	cfg.SaveIntervalSeconds = -5
	cfg.Health.BreakMinutes = 0
	cfg.Server.Listen = " "
	cfg.LogLevel = "loud"

	fixed := cfg.Normalize()

	assert.Len(t, fixed, 5)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestNormalize_ValidConfigUntouched(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FocusTimeoutSeconds = 1

	assert.Empty(t, cfg.Normalize())
	assert.Equal(t, 1, cfg.FocusTimeoutSeconds)
}

func TestConversions(t *testing.T) {
	cfg := DefaultConfig()

	tc := cfg.Tracker()
	assert.Equal(t, 5*time.Minute, tc.InactivityTimeout)
	assert.Equal(t, time.Minute, tc.FocusTimeout)
	assert.Equal(t, 5*time.Second, tc.SaveInterval)
	assert.Equal(t, 10*time.Second, tc.BranchPollInterval)

	hs := cfg.HealthSettings()
	assert.True(t, hs.Enabled)
	assert.Equal(t, 20*time.Minute, hs.EyeRest)
	assert.Equal(t, 45*time.Minute, hs.Stretch)
	assert.Equal(t, 2*time.Hour, hs.Break)
}

func TestWriteDefault_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, WriteDefault(path, false))
	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestWriteDefault_RefusesToOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "log_level: warn\n")

	assert.Error(t, WriteDefault(path, false))
	require.NoError(t, WriteDefault(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestWatcher_DeliversReloadedConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "inactivity_timeout_seconds: 300\n")

	w, err := NewWatcher(path, testutil.DiscardLogger())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	writeFile(t, filepath.Join(dir, "other.yaml"), "ignored: true\n")
	writeFile(t, path, "inactivity_timeout_seconds: 0\nsave_interval_seconds: 30\n")

	// A truncating write can surface as more than one event; wait for the
	// final content.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-w.Changes():
			if cfg.SaveIntervalSeconds != 30 {
				continue
			}
			assert.Equal(t, 300, cfg.InactivityTimeoutSeconds, "normalized back to the default")
			return
		case <-deadline:
			t.Fatal("no config change delivered")
		}
	}
}
