package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreate_WritesDefaultsOnFirstLaunch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultConfigFileName)

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "a", cfg.Keys.Add)

	_, err = os.Stat(path)
	require.NoError(t, err, "expected config file to be created")
}

func TestLoadOrCreate_ReadsExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFileName)
	content := `
db_driver = ""
server_addr = ":9090"
save_debounce_ms = 250

[keys]
add = "n"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, ":9090", cfg.ServerAddr)
	assert.Equal(t, 250*time.Millisecond, cfg.SaveDebounce())
	assert.Equal(t, "n", cfg.Keys.Add)
	assert.Equal(t, "q", cfg.Keys.Quit, "unset keys keep their defaults")
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	t.Setenv("TASKPAD_DB_DRIVER", "postgres")
	t.Setenv("TASKPAD_ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("TASKPAD_ALERT_INTERVAL_MINUTES", "5")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.AlertInterval())
}

func TestDurations_FallBackToDefaults(t *testing.T) {
	var cfg Config
	assert.Equal(t, time.Second, cfg.SaveDebounce())
	assert.Equal(t, time.Hour, cfg.AlertInterval())
}
