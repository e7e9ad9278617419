package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
server:
  port: 9000
  mode: debug
  cors_origins: ["http://localhost:3000"]
backend:
  base_url: "http://analysis:8000"
  timeout: 45s
  retry_max: 2
dashboard:
  scale: 2
  container_width: 900
  sensitivity: aggressive
  default_mode: gnn
cache:
  enabled: true
  addr: "redis:6379"
  ttl: 1h
archive:
  enabled: true
  endpoint: "minio:9000"
  access_key: key
  secret_key: secret
log:
  level: debug
  format: console
  file:
    path: /tmp/clauselens.log
    max_size_mb: 5
metrics:
  enabled: false
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_File(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "http://analysis:8000", cfg.Backend.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 2, cfg.Backend.RetryMax)
	assert.Equal(t, 2.0, cfg.Dashboard.Scale)
	assert.Equal(t, 900.0, cfg.Dashboard.ContainerWidth)
	assert.Equal(t, "aggressive", cfg.Dashboard.Sensitivity)
	assert.Equal(t, "gnn", cfg.Dashboard.DefaultMode)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.True(t, cfg.Archive.Enabled)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "/tmp/clauselens.log", cfg.Log.File.Path)
	assert.Equal(t, 5, cfg.Log.File.MaxSizeMB)
	assert.False(t, cfg.Metrics.Enabled)

	// defaults still fill the rest
	assert.Equal(t, 3500*time.Millisecond, cfg.Dashboard.FadeAfter)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("CLAUSELENS_SERVER_PORT", "7070")
	t.Setenv("CLAUSELENS_DASHBOARD_SENSITIVITY", "conservative")

	cfg, err := Load(writeConfig(t, validConfigYAML))
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "conservative", cfg.Dashboard.Sensitivity)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(writeConfig(t, "dashboard:\n  sensitivity: reckless\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CLAUSELENS_BACKEND_BASE_URL", "https://risk.example.com")
	t.Setenv("CLAUSELENS_BACKEND_API_KEY", "k-123")
	t.Setenv("CLAUSELENS_CACHE_ENABLED", "true")
	t.Setenv("CLAUSELENS_WORKSPACE_TTL", "30m")
	t.Setenv("CLAUSELENS_LOG_OUTPUT_PATHS", "stdout,/var/log/cl.log")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "https://risk.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, "k-123", cfg.Backend.APIKey)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 30*time.Minute, cfg.Workspace.TTL)
	assert.Equal(t, []string{"stdout", "/var/log/cl.log"}, cfg.Log.OutputPaths)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_EmptyPathUsesEnv(t *testing.T) {
	t.Setenv("CLAUSELENS_SERVER_PORT", "8181")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8181, cfg.Server.Port)
}

func TestMustLoad_Panics(t *testing.T) {
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "missing.yaml")) })
}
