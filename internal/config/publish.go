package config

import "time"

// PublishConfig configures the optional upload of run outputs to an
// S3-compatible bucket.
type PublishConfig struct {
	Enabled bool   `yaml:"enabled"`
	Bucket  string `yaml:"bucket"`
	Prefix  string `yaml:"prefix"` // objects land under <prefix>/<run-id>/
	Region  string `yaml:"region"`

	// Custom endpoint for S3-compatible stores (MinIO, R2). Enables
	// path-style addressing.
	Endpoint string `yaml:"endpoint"`

	// Static credentials. When empty the default AWS credential chain is used.
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`

	Timeout string `yaml:"timeout"`
}

// DefaultPublishConfig returns publishing disabled with sane defaults.
func DefaultPublishConfig() PublishConfig {
	return PublishConfig{
		Prefix:  "chatsynth",
		Region:  "us-east-1",
		Timeout: "60s",
	}
}

// GetTimeout returns the upload timeout as a duration.
func (p PublishConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(p.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}
