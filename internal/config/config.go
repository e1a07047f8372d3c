package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is where the CLI looks for a config file when --config
// is not given.
const DefaultConfigPath = "chatsynth.yaml"

// Config holds all chatsynth configuration.
type Config struct {
	Name string `yaml:"name"`

	// Synthetic dataset shape
	Dataset DatasetConfig `yaml:"dataset"`

	// Output files and directories
	Output OutputConfig `yaml:"output"`

	// Optional SQLite sink
	Store StoreConfig `yaml:"store"`

	// Optional object storage upload
	Publish PublishConfig `yaml:"publish"`

	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "chatsynth",
		Dataset: DefaultDatasetConfig(),
		Output:  DefaultOutputConfig(),
		Publish: DefaultPublishConfig(),
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file over the defaults. A missing
// file is not an error. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// defaults
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overwriting variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies CHATSYNTH_* environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("CHATSYNTH_SESSIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid CHATSYNTH_SESSIONS %q: %w", v, err)
		}
		c.Dataset.Sessions = n
	}
	if v := os.Getenv("CHATSYNTH_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid CHATSYNTH_SEED %q: %w", v, err)
		}
		c.Dataset.Seed = n
	}

	if dir := os.Getenv("CHATSYNTH_RAW_DIR"); dir != "" {
		c.Output.RawDir = dir
	}
	if dir := os.Getenv("CHATSYNTH_RESULTS_DIR"); dir != "" {
		c.Output.ResultsDir = dir
	}

	if path := os.Getenv("CHATSYNTH_DB"); path != "" {
		c.Store.DatabasePath = path
	}

	if bucket := os.Getenv("CHATSYNTH_S3_BUCKET"); bucket != "" {
		c.Publish.Bucket = bucket
		c.Publish.Enabled = true
	}
	if endpoint := os.Getenv("CHATSYNTH_S3_ENDPOINT"); endpoint != "" {
		c.Publish.Endpoint = endpoint
	}
	if key := os.Getenv("CHATSYNTH_S3_ACCESS_KEY_ID"); key != "" {
		c.Publish.AccessKeyID = key
	}
	if secret := os.Getenv("CHATSYNTH_S3_SECRET_ACCESS_KEY"); secret != "" {
		c.Publish.SecretAccessKey = secret
	}

	if level := os.Getenv("CHATSYNTH_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Dataset.Sessions < 0 {
		return fmt.Errorf("dataset.sessions must be >= 0, got %d", c.Dataset.Sessions)
	}
	if c.Output.RawDir == "" {
		return fmt.Errorf("output.raw_dir is required")
	}
	if c.Output.ResultsDir == "" {
		return fmt.Errorf("output.results_dir is required")
	}
	if c.Output.SampleRows < 0 {
		return fmt.Errorf("output.sample_rows must be >= 0, got %d", c.Output.SampleRows)
	}
	if !validLevel(c.Logging.Level) {
		return fmt.Errorf("invalid logging.level: %s (valid: %v)", c.Logging.Level, ValidLevels)
	}
	return nil
}
