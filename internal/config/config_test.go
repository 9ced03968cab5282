package config

import (
	"os"
	"path/filepath"
	"testing"

	"hotelbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
app:
  environment: test
database:
  path: data/hotelbook.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "hotelbook", cfg.App.Name)
	assert.Equal(t, 8080, cfg.API.HTTP.Port)
	assert.Equal(t, "x-api-key", cfg.API.Auth.HeaderAPIKey)
	assert.Equal(t, "exports", cfg.Exports.Path)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("HOTELBOOK_DB_PATH", "/tmp/from-env.db")

	path := writeConfig(t, `
database:
  path: ${HOTELBOOK_DB_PATH}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-env.db", cfg.Database.Path)
}

func TestLoad_ValidationErrors(t *testing.T) {
	t.Run("missing database path", func(t *testing.T) {
		path := writeConfig(t, `
app:
  name: hotelbook
`)
		_, err := Load(path)
		assert.ErrorContains(t, err, "database path is required")
	})

	t.Run("auth enabled without keys", func(t *testing.T) {
		path := writeConfig(t, `
database:
  path: data/hotelbook.db
api:
  auth:
    enabled: true
`)
		_, err := Load(path)
		assert.ErrorContains(t, err, "no api keys")
	})
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateRooms(t *testing.T) {
	valid := []models.Room{
		{Number: 1, Name: "Garden"},
		{Number: 2, Name: "Sea view"},
	}
	assert.NoError(t, ValidateRooms(valid))

	assert.ErrorContains(t,
		ValidateRooms([]models.Room{{Number: 0, Name: "Broken"}}),
		"invalid number")

	assert.ErrorContains(t,
		ValidateRooms([]models.Room{{Number: 1}, {Number: 1}}),
		"duplicate room number")
}
