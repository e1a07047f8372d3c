package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"chatsynth/internal/config"
	"chatsynth/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = time.Date(2025, 5, 28, 12, 0, 0, 0, time.UTC)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Dataset.Sessions = 8
	cfg.Dataset.Seed = 7
	cfg.Output.RawDir = filepath.Join(root, "raw")
	cfg.Output.ResultsDir = filepath.Join(root, "results")
	return cfg
}

func testOptions() Options {
	return Options{Now: func() time.Time { return fixedNow }}
}

type recordingUploader struct {
	runID string
	paths []string
	err   error
}

func (u *recordingUploader) Upload(_ context.Context, runID string, paths ...string) ([]string, error) {
	u.runID = runID
	u.paths = paths
	if u.err != nil {
		return nil, u.err
	}
	keys := make([]string, len(paths))
	for i, p := range paths {
		keys[i] = runID + "/" + filepath.Base(p)
	}
	return keys, nil
}

func TestRun_WritesAllFiles(t *testing.T) {
	cfg := testConfig(t)

	res, err := Run(context.Background(), cfg, testOptions())
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, uint64(7), res.Seed)
	assert.Equal(t, 8, res.Sessions)
	assert.GreaterOrEqual(t, res.Messages, 8*4)
	assert.Empty(t, res.Warnings)

	// tabular files, summary, six charts
	require.Len(t, res.Files, 9)
	for _, f := range res.Files {
		assert.FileExists(t, f)
	}
	assert.Equal(t, cfg.Output.SessionsPath(), res.Files[0])
	assert.Equal(t, cfg.Output.MessagesPath(), res.Files[1])
	assert.Equal(t, cfg.Output.SummaryPath(), res.Files[2])

	data, err := os.ReadFile(cfg.Output.SummaryPath())
	require.NoError(t, err)
	var summary struct {
		Shape      [2]int                   `json:"shape"`
		SampleRows []map[string]interface{} `json:"sample_rows"`
	}
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, [2]int{res.Messages, 11}, summary.Shape)
	assert.Len(t, summary.SampleRows, 5)
}

func TestRun_SameSeedSameFiles(t *testing.T) {
	first := testConfig(t)
	second := testConfig(t)

	_, err := Run(context.Background(), first, testOptions())
	require.NoError(t, err)
	_, err = Run(context.Background(), second, testOptions())
	require.NoError(t, err)

	a, err := os.ReadFile(first.Output.MessagesPath())
	require.NoError(t, err)
	b, err := os.ReadFile(second.Output.MessagesPath())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRun_ZeroSeedIsReported(t *testing.T) {
	cfg := testConfig(t)
	cfg.Dataset.Seed = 0
	cfg.Output.Charts = false

	res, err := Run(context.Background(), cfg, testOptions())
	require.NoError(t, err)
	assert.Equal(t, uint64(fixedNow.UnixNano()), res.Seed)
	assert.Len(t, res.Files, 3)
}

func TestRun_UnwritableRawDirFails(t *testing.T) {
	cfg := testConfig(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	cfg.Output.RawDir = filepath.Join(blocker, "raw")

	_, err := Run(context.Background(), cfg, testOptions())
	assert.Error(t, err)
}

func TestRun_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Dataset.Sessions = -1

	_, err := Run(context.Background(), cfg, testOptions())
	assert.Error(t, err)
}

func TestRun_SavesToStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.DatabasePath = filepath.Join(t.TempDir(), "db", "chatsynth.db")

	res, err := Run(context.Background(), cfg, testOptions())
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, cfg.Store.DatabasePath, res.Database)

	db, err := store.Open(cfg.Store.DatabasePath)
	require.NoError(t, err)
	defer db.Close()
	sessions, messages, err := db.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, res.Sessions, sessions)
	assert.Equal(t, res.Messages, messages)
}

func TestRun_FailingStoreIsWarning(t *testing.T) {
	cfg := testConfig(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	cfg.Store.DatabasePath = filepath.Join(blocker, "sub", "chatsynth.db")

	res, err := Run(context.Background(), cfg, testOptions())
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "SQLite sink skipped")
	assert.Empty(t, res.Database)
	assert.FileExists(t, cfg.Output.SummaryPath())
}

func TestRun_PublishesWrittenFiles(t *testing.T) {
	cfg := testConfig(t)
	up := &recordingUploader{}

	res, err := Run(context.Background(), cfg, Options{Now: testOptions().Now, Publisher: up})
	require.NoError(t, err)
	assert.Equal(t, res.RunID, up.runID)
	assert.Equal(t, res.Files, up.paths)
	assert.Len(t, res.Uploaded, len(res.Files))
}

func TestRun_FailingPublisherIsWarning(t *testing.T) {
	cfg := testConfig(t)
	up := &recordingUploader{err: errors.New("bucket unreachable")}

	res, err := Run(context.Background(), cfg, Options{Now: testOptions().Now, Publisher: up})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "bucket unreachable")
	assert.Empty(t, res.Uploaded)
}

func TestRun_PublishWithoutBucketIsWarning(t *testing.T) {
	cfg := testConfig(t)
	cfg.Publish.Enabled = true

	res, err := Run(context.Background(), cfg, testOptions())
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "publish skipped")
}
