package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chatsynth/internal/config"
	"chatsynth/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// countingSyncer discards log output and counts Sync calls.
type countingSyncer struct{ syncs int }

func (c *countingSyncer) Write(p []byte) (int, error) { return len(p), nil }
func (c *countingSyncer) Sync() error                 { c.syncs++; return nil }

// stubLogger swaps the logger constructor and records the level it is asked for.
func stubLogger(t *testing.T) (*countingSyncer, *string) {
	t.Helper()
	sink := &countingSyncer{}
	var gotLevel string
	orig := newLogger
	newLogger = func(level string, verbose bool) (*zap.Logger, error) {
		gotLevel = level
		enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		return zap.New(zapcore.NewCore(enc, sink, zapcore.DebugLevel)), nil
	}
	t.Cleanup(func() {
		newLogger = orig
		logger = nil
	})
	return sink, &gotLevel
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	err := run()
	return out.String(), err
}

func TestRootRunsPipeline(t *testing.T) {
	dir := t.TempDir()
	raw := filepath.Join(dir, "raw")
	results := filepath.Join(dir, "results")

	out, err := execute(t,
		"--config", filepath.Join(dir, "missing.yaml"),
		"--env-file", filepath.Join(dir, "missing.env"),
		"--sessions", "3",
		"--seed", "11",
		"--raw-dir", raw,
		"--results-dir", results,
		"--charts=false",
		"--db", "",
	)
	require.NoError(t, err)

	assert.Contains(t, out, "3 sessions")
	assert.Contains(t, out, "seed 11")
	assert.FileExists(t, filepath.Join(raw, "generated_sessions.csv"))
	assert.FileExists(t, filepath.Join(raw, "generated_messages.csv"))
	assert.FileExists(t, filepath.Join(results, "analysis_summary.json"))
	assert.NoFileExists(t, filepath.Join(results, "role_distribution.txt"))
}

func TestRootFailsOnUnwritableDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := execute(t,
		"--config", filepath.Join(dir, "missing.yaml"),
		"--env-file", filepath.Join(dir, "missing.env"),
		"--sessions", "1",
		"--seed", "1",
		"--raw-dir", filepath.Join(blocker, "raw"),
		"--results-dir", filepath.Join(dir, "results"),
		"--charts=false",
		"--db", "",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run failed")
}

func TestLoggerSyncedWhenRunFails(t *testing.T) {
	sink, _ := stubLogger(t)
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := execute(t,
		"--config", filepath.Join(dir, "missing.yaml"),
		"--env-file", filepath.Join(dir, "missing.env"),
		"--sessions", "1",
		"--seed", "1",
		"--raw-dir", filepath.Join(blocker, "raw"),
		"--results-dir", filepath.Join(dir, "results"),
		"--charts=false",
		"--db", "",
	)
	require.Error(t, err)
	assert.Equal(t, 1, sink.syncs)
}

func TestConfiguredLogLevelReachesLogger(t *testing.T) {
	_, gotLevel := stubLogger(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "chatsynth.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("logging:\n  level: warn\n"), 0644))
	t.Setenv("CHATSYNTH_LOG_LEVEL", "")

	_, err := execute(t,
		"--config", cfgPath,
		"--env-file", filepath.Join(dir, "missing.env"),
		"--sessions", "1",
		"--seed", "1",
		"--raw-dir", filepath.Join(dir, "raw"),
		"--results-dir", filepath.Join(dir, "results"),
		"--charts=false",
		"--db", "",
	)
	require.NoError(t, err)
	assert.Equal(t, "warn", *gotLevel)
}

func TestConfigInitWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatsynth.yaml")

	out, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Dataset, loaded.Dataset)
}

func TestRenderResultListsWarnings(t *testing.T) {
	res := &pipeline.Result{
		RunID:    "run-1",
		Sessions: 2,
		Messages: 9,
		Files:    []string{"raw/generated_sessions.csv"},
		Uploaded: []string{"chatsynth/run-1/generated_sessions.csv"},
		Warnings: []string{"SQLite sink skipped: disk full"},
		Duration: 1500 * time.Millisecond,
	}

	out := renderResult(res)
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "raw/generated_sessions.csv")
	assert.Contains(t, out, "1 objects")
	assert.True(t, strings.Contains(out, "SQLite sink skipped: disk full"))
}
