package config

import "path/filepath"

// OutputConfig configures where the run writes its files.
type OutputConfig struct {
	RawDir     string `yaml:"raw_dir"`     // tabular files
	ResultsDir string `yaml:"results_dir"` // summary and charts

	SessionsFile string `yaml:"sessions_file"`
	MessagesFile string `yaml:"messages_file"`
	SummaryFile  string `yaml:"summary_file"`

	// Rows copied verbatim into the summary (default: 5)
	SampleRows int `yaml:"sample_rows"`

	// Render text charts into ResultsDir
	Charts bool `yaml:"charts"`
}

// DefaultOutputConfig returns the default output layout.
func DefaultOutputConfig() OutputConfig {
	return OutputConfig{
		RawDir:       filepath.Join("data", "mining", "raw"),
		ResultsDir:   filepath.Join("data", "mining", "results"),
		SessionsFile: "generated_sessions.csv",
		MessagesFile: "generated_messages.csv",
		SummaryFile:  "analysis_summary.json",
		SampleRows:   5,
		Charts:       true,
	}
}

// SessionsPath returns the full path of the sessions tabular file.
func (o OutputConfig) SessionsPath() string {
	return filepath.Join(o.RawDir, o.SessionsFile)
}

// MessagesPath returns the full path of the messages tabular file.
func (o OutputConfig) MessagesPath() string {
	return filepath.Join(o.RawDir, o.MessagesFile)
}

// SummaryPath returns the full path of the JSON summary.
func (o OutputConfig) SummaryPath() string {
	return filepath.Join(o.ResultsDir, o.SummaryFile)
}
