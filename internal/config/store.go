package config

// StoreConfig configures the optional SQLite sink. An empty DatabasePath
// disables it.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// Enabled reports whether the SQLite sink is configured.
func (s StoreConfig) Enabled() bool {
	return s.DatabasePath != ""
}
