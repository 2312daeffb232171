package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default().Server.Port, cfg.Server.Port)
	assert.True(t, cfg.Server.EnableCORS)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "0.0.0.0:5000", cfg.Server.Addr())
	assert.Equal(t, 100*time.Millisecond, cfg.Executor.SimulatedDelay)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.True(t, cfg.Observability.Metrics.Enabled)
}

func TestLoadExplicitFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, `
server:
  port: 8080
  allowed_origins: ["https://ops.example.com"]
executor:
  simulated_delay: 5ms
  max_concurrency: 4
  action_timeout: 2s
observability:
  logging:
    level: debug
    format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, []string{"https://ops.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 5*time.Millisecond, cfg.Executor.SimulatedDelay)

	dispatch := cfg.Executor.Dispatch()
	assert.Equal(t, 4, dispatch.MaxConcurrency)
	assert.Equal(t, 2*time.Second, dispatch.ActionTimeout)

	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
	assert.Equal(t, "json", cfg.Observability.Logging.Format)
}

func TestLoadFindsFileInWorkingDirectory(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "sutra.yaml"), "server:\n  debug: true\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Server.Debug)
}

func TestLoadFindsFileInHome(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".sutra", "sutra.yaml"), "server:\n  host: 127.0.0.1\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "sutra.yaml")
	writeFile(t, path, "server:\n  port: 8080\n")
	t.Setenv("SUTRA_SERVER_PORT", "9090")
	t.Setenv("SUTRA_EXECUTOR_SIMULATED_DELAY", "1ms")
	t.Setenv("SUTRA_OBSERVABILITY_METRICS_ENABLED", "false")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, time.Millisecond, cfg.Executor.SimulatedDelay)
	assert.False(t, cfg.Observability.Metrics.Enabled)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.yaml")
	writeFile(t, path, `
server:
  port: 70000
executor:
  max_concurrency: -1
observability:
  logging:
    format: xml
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "executor.max_concurrency")
	assert.Contains(t, err.Error(), "observability.logging.format")
}

func TestValidateAcceptsDefaults(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
