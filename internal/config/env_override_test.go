package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvOverrides_Dataset(t *testing.T) {
	t.Run("sessions and seed", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CHATSYNTH_SESSIONS", "12")
		t.Setenv("CHATSYNTH_SEED", "99")

		cfg := DefaultConfig()
		require.NoError(t, cfg.applyEnvOverrides())

		assert.Equal(t, 12, cfg.Dataset.Sessions)
		assert.Equal(t, uint64(99), cfg.Dataset.Seed)
	})

	t.Run("invalid sessions is an error", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CHATSYNTH_SESSIONS", "many")

		cfg := DefaultConfig()
		assert.Error(t, cfg.applyEnvOverrides())
	})

	t.Run("invalid seed is an error", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CHATSYNTH_SEED", "-3")

		cfg := DefaultConfig()
		assert.Error(t, cfg.applyEnvOverrides())
	})
}

func TestEnvOverrides_Sinks(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHATSYNTH_DB", "/var/lib/chatsynth.db")
	t.Setenv("CHATSYNTH_S3_BUCKET", "bucket-a")
	t.Setenv("CHATSYNTH_S3_ENDPOINT", "http://localhost:9000")
	t.Setenv("CHATSYNTH_S3_ACCESS_KEY_ID", "ak")
	t.Setenv("CHATSYNTH_S3_SECRET_ACCESS_KEY", "sk")

	cfg := DefaultConfig()
	require.NoError(t, cfg.applyEnvOverrides())

	assert.Equal(t, "/var/lib/chatsynth.db", cfg.Store.DatabasePath)
	assert.True(t, cfg.Publish.Enabled, "bucket from env enables publishing")
	assert.Equal(t, "bucket-a", cfg.Publish.Bucket)
	assert.Equal(t, "http://localhost:9000", cfg.Publish.Endpoint)
	assert.Equal(t, "ak", cfg.Publish.AccessKeyID)
	assert.Equal(t, "sk", cfg.Publish.SecretAccessKey)
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "chatsynth.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  results_dir: from-file\n"), 0644))
	t.Setenv("CHATSYNTH_RESULTS_DIR", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Output.ResultsDir)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	// Missing file is fine.
	require.NoError(t, LoadDotEnv(filepath.Join(dir, ".env")))

	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("CHATSYNTH_RAW_DIR=dotenv-raw\n"), 0644))
	// t.Setenv("", ...) in clearEnv leaves the variable set to empty, and
	// godotenv never overwrites set variables, so unset it for this test.
	require.NoError(t, os.Unsetenv("CHATSYNTH_RAW_DIR"))
	t.Cleanup(func() { os.Unsetenv("CHATSYNTH_RAW_DIR") })

	require.NoError(t, LoadDotEnv(envPath))
	assert.Equal(t, "dotenv-raw", os.Getenv("CHATSYNTH_RAW_DIR"))

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "dotenv-raw", cfg.Output.RawDir)
}
