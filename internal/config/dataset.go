package config

// DatasetConfig controls the shape of the synthetic dataset.
type DatasetConfig struct {
	// Number of sessions to generate (default: 50)
	Sessions int `yaml:"sessions"`

	// Random seed. Zero picks a time-based seed; the seed actually used is
	// reported with the run result so a run can be reproduced.
	Seed uint64 `yaml:"seed"`
}

// DefaultDatasetConfig returns a batch of 50 sessions.
func DefaultDatasetConfig() DatasetConfig {
	return DatasetConfig{Sessions: 50}
}
