// Package store provides the optional SQLite sink for chatsynth datasets.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"chatsynth/internal/dataset"
	"chatsynth/internal/logging"

	_ "github.com/mattn/go-sqlite3"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store holds the generated sessions and messages of the latest run.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open creates or opens the database at path and initializes the schema.
func Open(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Open")
	defer timer.Stop()

	dsn := path
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, dbPath: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Store("Opened dataset store at %s", path)
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// SaveDataset replaces the stored dataset with sessions and messages in one
// transaction.
func (s *Store) SaveDataset(ctx context.Context, sessions []dataset.Session, messages []dataset.Message) error {
	timer := logging.StartTimer(logging.CategoryStore, "SaveDataset")
	defer timer.Stop()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages`); err != nil {
		return fmt.Errorf("failed to clear messages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}

	sessStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sessions (session_id, user_id, agent_id, title, created_at,
			last_activity, message_count, total_tokens, duration_minutes, topic)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare session insert: %w", err)
	}
	defer sessStmt.Close()

	for _, ss := range sessions {
		if _, err := sessStmt.ExecContext(ctx,
			ss.SessionID, ss.UserID, ss.AgentID, ss.Title,
			ss.CreatedAt.Format(dataset.TimeLayout), ss.LastActivity.Format(dataset.TimeLayout),
			ss.MessageCount, ss.TotalTokens, ss.DurationMinutes, ss.Topic,
		); err != nil {
			return fmt.Errorf("failed to insert session %d: %w", ss.SessionID, err)
		}
	}

	msgStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (message_id, session_id, agent_id, user_id, role,
			content, timestamp, token_count, flagged, model_used, topic)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare message insert: %w", err)
	}
	defer msgStmt.Close()

	for _, m := range messages {
		if _, err := msgStmt.ExecContext(ctx,
			m.MessageID, m.SessionID, m.AgentID, m.UserID, m.Role,
			m.Content, m.Timestamp.Format(dataset.TimeLayout), m.TokenCount,
			m.Flagged, m.ModelUsed, m.Topic,
		); err != nil {
			return fmt.Errorf("failed to insert message %d: %w", m.MessageID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dataset: %w", err)
	}
	logging.Store("Saved %d sessions and %d messages to %s", len(sessions), len(messages), s.dbPath)
	return nil
}

// Counts returns the number of stored sessions and messages.
func (s *Store) Counts(ctx context.Context) (sessions, messages int, err error) {
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&sessions); err != nil {
		return 0, 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&messages); err != nil {
		return 0, 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return sessions, messages, nil
}

// FlaggedBySession returns the number of flagged messages per session id.
// Sessions without flagged messages are absent.
func (s *Store) FlaggedBySession(ctx context.Context) (map[int]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, COUNT(*) FROM messages
		WHERE flagged = 1
		GROUP BY session_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query flagged messages: %w", err)
	}
	defer rows.Close()

	out := map[int]int{}
	for rows.Next() {
		var id, n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("failed to scan flagged row: %w", err)
		}
		out[id] = n
	}
	return out, rows.Err()
}
