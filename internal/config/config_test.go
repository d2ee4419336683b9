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

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
service:
  base_url: "http://localhost:8080"
  api_key: "key"
  cache_ttl_seconds: 120
  write_rate: 10
planner:
  base_cell_width: 50
  zoom_percent: 150
  visible_days: 14
monitoring:
  prometheus_enabled: true
  prometheus_port: 9091
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.Service.BaseURL)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL())
	assert.Equal(t, 50, cfg.Planner.BaseCellWidth)
	assert.Equal(t, 150, cfg.Planner.ZoomPercent)
	assert.Equal(t, 14, cfg.Planner.VisibleDays)
	assert.True(t, cfg.Monitoring.PrometheusEnabled)

	rate, burst := cfg.WriteRate()
	assert.Equal(t, float64(10), rate)
	assert.Equal(t, 11, burst)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
service:
  base_url: "http://localhost:8080"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 40, cfg.Planner.BaseCellWidth)
	assert.Equal(t, 28, cfg.Planner.BaseRowHeight)
	assert.Equal(t, 100, cfg.Planner.ZoomPercent)
	assert.Equal(t, 31, cfg.Planner.VisibleDays)
	assert.Equal(t, time.Duration(0), cfg.CacheTTL())
	assert.Equal(t, 60*time.Second, cfg.RefreshInterval())

	rate, burst := cfg.WriteRate()
	assert.Equal(t, float64(5), rate)
	assert.Equal(t, 10, burst)
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("PLANBOARD_TEST_API_KEY", "from-env")
	path := writeConfig(t, `
service:
  base_url: "http://localhost:8080"
  api_key: "${PLANBOARD_TEST_API_KEY}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Service.APIKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
