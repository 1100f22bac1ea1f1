package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/stay-engine/config"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_EmptyPathGivesDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "stay.db", cfg.Database.Path)
	assert.Equal(t, "EUR", cfg.Currency.Code)
	assert.Equal(t, int32(2), cfg.Currency.Exponent)
	assert.False(t, cfg.Shifts.SkipVersionCheck)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_OverlaysFileAndExpandsEnv(t *testing.T) {
	t.Setenv("STAY_DB_PATH", "/var/lib/stay/prod.db")
	path := writeFile(t, `
server:
  port: 9090
database:
  path: ${STAY_DB_PATH}
currency:
  code: JPY
  exponent: 0
shifts:
  skip_version_check: true
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/var/lib/stay/prod.db", cfg.Database.Path)
	assert.Equal(t, "JPY", cfg.Currency.Code)
	assert.Equal(t, int32(0), cfg.Currency.Exponent)
	assert.True(t, cfg.Shifts.SkipVersionCheck)
	assert.Equal(t, "console", cfg.Log.Format, "untouched keys keep defaults")
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad port":     "server:\n  port: 70000\n",
		"bad currency": "currency:\n  code: EURO\n",
		"bad format":   "log:\n  format: xml\n",
		"not yaml":     "server: [",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(writeFile(t, content))
			assert.Error(t, err)
		})
	}

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDurations(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, "15s", cfg.ReadTimeout().String())
	cfg.Scheduler.IntervalMinutes = 0
	assert.Equal(t, "15m0s", cfg.SchedulerInterval().String())
}
