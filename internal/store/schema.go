package store

import (
	"fmt"

	"chatsynth/internal/logging"
)

// SchemaVersion is written to PRAGMA user_version after initialization.
const SchemaVersion = 1

// initSchema creates the dataset tables.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		session_id INTEGER PRIMARY KEY,
		user_id INTEGER NOT NULL,
		agent_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		created_at TEXT NOT NULL,
		last_activity TEXT NOT NULL,
		message_count INTEGER NOT NULL CHECK (message_count >= 0),
		total_tokens INTEGER NOT NULL,
		duration_minutes INTEGER NOT NULL,
		topic TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		message_id INTEGER PRIMARY KEY,
		session_id INTEGER NOT NULL REFERENCES sessions(session_id),
		agent_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
		content TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		token_count INTEGER NOT NULL,
		flagged INTEGER NOT NULL DEFAULT 0,
		model_used TEXT NOT NULL DEFAULT '',
		topic TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id);
	CREATE INDEX IF NOT EXISTS idx_messages_topic ON messages(topic);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	var version int
	if err := s.db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version < SchemaVersion {
		if _, err := s.db.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, SchemaVersion)); err != nil {
			return fmt.Errorf("failed to set schema version: %w", err)
		}
		logging.StoreDebug("Schema upgraded from v%d to v%d", version, SchemaVersion)
	}
	return nil
}
