package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, time.Second, cfg.TickInterval)
	assert.Equal(t, "dayplan.db", filepath.Base(cfg.DBPath))
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
db_path: /tmp/custom.db
log_level: debug
log_pretty: true
tick_interval: 250ms
timezone: UTC
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/custom.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "log_level: debug\n")
	t.Setenv("DAYPLAN_LOG_LEVEL", "error")
	t.Setenv("DAYPLAN_TICK_INTERVAL", "2s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.TickInterval)
}

func TestLoadEnvBeatsDotEnv(t *testing.T) {
	path := writeConfig(t, "log_level: debug\ntick_interval: 250ms\n")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("DAYPLAN_LOG_LEVEL=warn\nDAYPLAN_TICK_INTERVAL=3s\n"), 0o644))
	t.Chdir(dir)
	t.Setenv("DAYPLAN_LOG_LEVEL", "error")
	t.Cleanup(func() { os.Unsetenv("DAYPLAN_TICK_INTERVAL") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel, "process env wins over .env")
	assert.Equal(t, 3*time.Second, cfg.TickInterval, ".env wins over the file")
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	path := writeConfig(t, "timezone: Mars/Olympus\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsNonPositiveTick(t *testing.T) {
	path := writeConfig(t, "tick_interval: 0s\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLocationDefaultsToLocal(t *testing.T) {
	cfg := DefaultConfig()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, time.Second, cfg.TickInterval)
}
