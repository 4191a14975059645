//go:build !integration

package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(origDir) //nolint:errcheck

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"madrid", "barcelona", "mallorca"}, cfg.Cities)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "data/listings.csv", cfg.Data.ListingsPath)
	assert.Equal(t, "utf-8", cfg.Data.Charset)
}

func TestLoad_EnvOverride(t *testing.T) {
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(origDir) //nolint:errcheck

	t.Setenv("STR_STORE_DRIVER", "postgres")
	t.Setenv("STR_SERVER_PORT", "9999")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 9999, cfg.Server.Port)
}

func TestLoad_ConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(origDir) //nolint:errcheck

	yaml := []byte("data:\n  listings_path: /srv/str/listados.csv\ncities:\n  - madrid\n")
	require.NoError(t, os.WriteFile("config.yaml", yaml, 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/str/listados.csv", cfg.Data.ListingsPath)
	assert.Equal(t, []string{"madrid"}, cfg.Cities)
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "shout", Format: "json"})
	assert.Error(t, err)
}

func TestInitLogger_Console(t *testing.T) {
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
}
