package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "data/mazpan.db", cfg.DB.Path)
	assert.Equal(t, 720*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 6, cfg.Auth.MinPasswordLength)
	assert.Equal(t, "ru", cfg.I18n.DefaultLanguage)
	assert.Equal(t, 20, cfg.Entitlement.VIPCap)
	assert.Equal(t, 30, cfg.Entitlement.GrantDays)
}

func TestLoadEnvOverridesDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DB_PATH=/tmp/from-dotenv.db\nADMIN_USERNAME=root\nVIP_USER_CAP=5\n"), 0o600))
	t.Setenv("MAZPAN_ENTITLEMENT_VIP_CAP", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/from-dotenv.db", cfg.DB.Path)
	assert.Equal(t, "root", cfg.Bootstrap.Admin.Username)
	assert.Equal(t, 7, cfg.Entitlement.VIPCap)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "mazpan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  driver: postgres\n  dsn: postgres://u:p@localhost/mazpan\nlog:\n  level: debug\n"), 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "postgres://u:p@localhost/mazpan", cfg.DB.DSN)
	assert.Equal(t, "debug", cfg.Log.Level)
}
