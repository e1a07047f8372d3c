package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"chatsynth/internal/dataset"
	"chatsynth/internal/logging"
	"chatsynth/internal/report"
)

// DefaultSampleRows is how many leading records a summary copies verbatim.
const DefaultSampleRows = 5

// Summary describes the shape and sample content of an exported dataset.
type Summary struct {
	Shape      [2]int                        `json:"shape"` // rows, columns
	Columns    []string                      `json:"columns"`
	Stats      map[string]report.ColumnStats `json:"summary,omitempty"`
	NullCounts map[string]int                `json:"null_counts,omitempty"`
	SampleRows []dataset.Record              `json:"sample_rows"`
}

// SummaryOption customizes a Summary.
type SummaryOption func(*Summary, []dataset.Record)

// WithSampleRows overrides how many leading records are copied.
func WithSampleRows(n int) SummaryOption {
	return func(s *Summary, records []dataset.Record) {
		if n > len(records) {
			n = len(records)
		}
		if n < 0 {
			n = 0
		}
		s.SampleRows = append([]dataset.Record{}, records[:n]...)
	}
}

// WithDescription attaches per-column statistics and null counts.
func WithDescription(d report.Description) SummaryOption {
	return func(s *Summary, _ []dataset.Record) {
		s.Stats = d.Columns
		s.NullCounts = d.NullCounts
	}
}

// NewSummary builds the summary of records.
func NewSummary(records []dataset.Record, opts ...SummaryOption) Summary {
	s := Summary{
		Columns:    []string{},
		SampleRows: []dataset.Record{},
	}
	if len(records) > 0 {
		s.Columns = records[0].Names()
	}
	s.Shape = [2]int{len(records), len(s.Columns)}
	WithSampleRows(DefaultSampleRows)(&s, records)
	for _, opt := range opts {
		opt(&s, records)
	}
	return s
}

// WriteSummary writes the JSON summary of records to path, creating the parent
// directory when missing.
func WriteSummary(path string, records []dataset.Record, opts ...SummaryOption) (Summary, error) {
	s := NewSummary(records, opts...)

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return s, fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := EnsureDirs(filepath.Dir(path)); err != nil {
		return s, err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return s, fmt.Errorf("failed to write summary %s: %w", path, err)
	}

	logging.Export("Summary written to %s (%d rows x %d columns)", path, s.Shape[0], s.Shape[1])
	return s, nil
}
