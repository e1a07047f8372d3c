// Package pipeline runs one chatsynth generation: dataset, files, charts and
// the optional sinks, in that order.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"chatsynth/internal/config"
	"chatsynth/internal/dataset"
	"chatsynth/internal/export"
	"chatsynth/internal/logging"
	"chatsynth/internal/publish"
	"chatsynth/internal/report"
	"chatsynth/internal/store"

	"github.com/google/uuid"
)

// Uploader publishes written files for a run.
type Uploader interface {
	Upload(ctx context.Context, runID string, paths ...string) ([]string, error)
}

// Options carries the collaborators a run may override.
type Options struct {
	// Now is the generation clock. Defaults to time.Now.
	Now func() time.Time

	// Publisher replaces the S3 publisher built from the config.
	Publisher Uploader
}

// Result describes a finished run.
type Result struct {
	RunID    string
	Seed     uint64
	Sessions int
	Messages int

	Files    []string // local files written, in order
	Uploaded []string // object keys, when publishing ran
	Database string   // SQLite path, when the store step succeeded

	// Warnings from optional steps that failed without failing the run.
	Warnings []string

	Duration time.Duration
}

func (r *Result) warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logging.PipelineWarn("%s", msg)
	r.Warnings = append(r.Warnings, msg)
}

// Run executes one generation with cfg. Errors from directory creation and
// file writes abort the run; the SQLite and publish steps only add warnings.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	start := time.Now()

	res := &Result{
		RunID: uuid.NewString(),
		Seed:  cfg.Dataset.Seed,
	}
	if res.Seed == 0 {
		res.Seed = uint64(now().UnixNano())
	}
	log := logging.Get(logging.CategoryPipeline).With("run_id", res.RunID)
	log.Info("Run started: %d sessions, seed %d", cfg.Dataset.Sessions, res.Seed)

	out := cfg.Output
	if err := export.EnsureDirs(out.RawDir, out.ResultsDir); err != nil {
		return nil, err
	}

	gen := dataset.NewSeeded(res.Seed, now)
	sessions := gen.GenerateSessions(cfg.Dataset.Sessions)
	messages := gen.GenerateMessages(sessions, dataset.NewIDCounter())
	res.Sessions, res.Messages = len(sessions), len(messages)

	if err := export.WriteTabular(out.SessionsPath(), dataset.SessionRecords(sessions)); err != nil {
		return nil, err
	}
	res.Files = append(res.Files, out.SessionsPath())

	msgRecords := dataset.MessageRecords(messages)
	if err := export.WriteTabular(out.MessagesPath(), msgRecords); err != nil {
		return nil, err
	}
	res.Files = append(res.Files, out.MessagesPath())

	if _, err := export.WriteSummary(out.SummaryPath(), msgRecords,
		export.WithSampleRows(out.SampleRows),
		export.WithDescription(report.Describe(msgRecords)),
	); err != nil {
		return nil, err
	}
	res.Files = append(res.Files, out.SummaryPath())

	if out.Charts {
		charts, err := report.RenderCharts(out.ResultsDir, sessions, messages)
		if err != nil {
			return nil, err
		}
		res.Files = append(res.Files, charts...)
	}

	if cfg.Store.Enabled() {
		if err := saveToStore(ctx, cfg.Store.DatabasePath, sessions, messages); err != nil {
			res.warn("SQLite sink skipped: %v", err)
		} else {
			res.Database = cfg.Store.DatabasePath
		}
	}

	if cfg.Publish.Enabled || opts.Publisher != nil {
		res.Uploaded = publishFiles(ctx, cfg.Publish, opts.Publisher, res)
	}

	res.Duration = time.Since(start)
	log.Info("Run finished in %v: %d files, %d warnings", res.Duration, len(res.Files), len(res.Warnings))
	return res, nil
}

func saveToStore(ctx context.Context, path string, sessions []dataset.Session, messages []dataset.Message) error {
	db, err := store.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.SaveDataset(ctx, sessions, messages); err != nil {
		return err
	}

	flagged, err := db.FlaggedBySession(ctx)
	if err != nil {
		return err
	}
	logging.Store("%d of %d sessions contain flagged messages", len(flagged), len(sessions))
	return nil
}

func publishFiles(ctx context.Context, cfg config.PublishConfig, up Uploader, res *Result) []string {
	ctx, cancel := context.WithTimeout(ctx, cfg.GetTimeout())
	defer cancel()

	if up == nil {
		p, err := publish.NewS3Publisher(ctx, cfg)
		if err != nil {
			res.warn("publish skipped: %v", err)
			return nil
		}
		up = p
	}

	keys, err := up.Upload(ctx, res.RunID, res.Files...)
	if err != nil {
		res.warn("publish incomplete (%d of %d files): %v", len(keys), len(res.Files), err)
	}
	return keys
}
