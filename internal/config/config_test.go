package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `{"port": 9090, "database_url": "postgres://localhost/match", "pool_limit": 50}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "postgres://localhost/match", cfg.DatabaseURL)
	assert.Equal(t, 50, cfg.PoolLimit)
	assert.Empty(t, cfg.GeminiAPIKey)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `{not json`))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Config{Port: 8080, PoolLimit: 100}
	assert.NoError(t, cfg.Validate())

	bad := Config{Port: 70000}
	assert.Error(t, bad.Validate())

	bad = Config{PoolLimit: -1}
	assert.Error(t, bad.Validate())

	bad = Config{WeightsFile: filepath.Join(t.TempDir(), "missing.json")}
	assert.Error(t, bad.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{Port: 9090}
	defaults := Config{Port: 8080, DatabaseURL: "postgres://localhost/match", Concurrency: 4}

	merged := cfg.MergeWithDefaults(defaults)
	assert.Equal(t, 9090, merged.Port, "explicit values win")
	assert.Equal(t, "postgres://localhost/match", merged.DatabaseURL)
	assert.Equal(t, 4, merged.Concurrency)
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 200, cfg.PoolLimit)
	assert.Greater(t, cfg.Concurrency, 0)
}
