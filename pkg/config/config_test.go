package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"POCKETR_DB_DRIVER",
		"POCKETR_DB_DSN",
		"POCKETR_DATA_DIR",
		"POCKETR_EXPORT_DIR",
		"POCKETR_CURRENCIES_FILE",
		"POCKETR_USER",
		"DEBUG",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Empty(t, cfg.Database.DSN)
	assert.Equal(t, "./data", cfg.Paths.DataDir)
	assert.False(t, cfg.Debug)
	assert.False(t, cfg.IsPostgres())
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)
	for _, key := range []string{"POCKETR_DB_DRIVER", "POCKETR_DB_DSN", "POCKETR_USER", "DEBUG"} {
		require.NoError(t, os.Unsetenv(key))
	}

	envFile := filepath.Join(t.TempDir(), "test.env")
	content := "POCKETR_DB_DRIVER=postgres\n" +
		"POCKETR_DB_DSN=postgres://localhost/pocketr?sslmode=disable\n" +
		"POCKETR_USER=alice@example.com\n" +
		"DEBUG=true\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0644))

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.True(t, cfg.IsPostgres())
	assert.Equal(t, "postgres://localhost/pocketr?sslmode=disable", cfg.Database.DSN)
	assert.Equal(t, "alice@example.com", cfg.User)
	assert.True(t, cfg.Debug)
}

func TestLoadMissingEnvFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("POCKETR_DB_DRIVER", "mysql")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Driver: "sqlite3"},
		Paths:    PathsConfig{DataDir: "./data"},
	}

	require.NoError(t, cfg.Validate("database.driver", "paths.dataDir"))

	err := cfg.Validate("paths.exportDir", "user", "database.driver")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paths.exportDir")
	assert.Contains(t, err.Error(), "user")
	assert.NotContains(t, err.Error(), "database.driver")

	assert.Error(t, cfg.Validate("nope"))
}
