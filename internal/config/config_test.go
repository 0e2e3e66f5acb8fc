package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "IMAGE_BUDGET", "WORKER_COUNT", "JOB_TTL", "LOG_LEVEL", "MAX_DEFERRED"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, 100, cfg.ImageBudget)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.Equal(t, 8, cfg.MaxDeferred)
	assert.Equal(t, time.Hour, cfg.JobTTL)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("IMAGE_BUDGET", "25")
	t.Setenv("WORKER_COUNT", "-1")
	t.Setenv("JOB_TTL", "90s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STORE_URL", "http://store:8080")

	cfg := Load()
	assert.Equal(t, 25, cfg.ImageBudget)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.Equal(t, 90*time.Second, cfg.JobTTL)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "http://store:8080", cfg.StoreURL)
}

func TestValidate(t *testing.T) {
	assert.Error(t, Config{}.Validate())
	assert.NoError(t, Config{SourceDir: "./content"}.Validate())
	assert.NoError(t, Config{StoreURL: "https://store.example.com"}.Validate())
	assert.Error(t, Config{StoreURL: "store:8080"}.Validate())
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("BRAND_PREFIX=Acme\nBRAND=ignored\n"), 0o644))
	t.Setenv("BRAND_PREFIX", "")
	require.NoError(t, os.Unsetenv("BRAND_PREFIX"))
	t.Setenv("BRAND", "Kept")

	require.NoError(t, LoadEnvFile(path))
	cfg := Load()
	assert.Equal(t, "Acme", cfg.BrandPrefix)
	assert.Equal(t, "Kept", cfg.Brand)

	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}
