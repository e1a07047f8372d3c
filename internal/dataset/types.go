// Package dataset generates the synthetic chat sessions and messages that a
// chatsynth run exports.
package dataset

import "time"

// TimeLayout is how timestamps are rendered in exported records.
const TimeLayout = "2006-01-02 15:04:05"

// Roles alternate within a session, starting with RoleUser.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Topics is the fixed set of session topics.
var Topics = []string{
	"Technical support",
	"Product information",
	"Sales",
	"Returns",
}

// Models an assistant message may report. An assistant turn may also report
// no model, hence the empty entry.
var Models = []string{"gpt-3.5-turbo", "gpt-4", ""}

// Session is one simulated support conversation.
type Session struct {
	SessionID       int
	UserID          int
	AgentID         int
	Title           string
	CreatedAt       time.Time
	LastActivity    time.Time
	MessageCount    int
	TotalTokens     int
	DurationMinutes int
	Topic           string
}

// SessionColumns is the exported column order for sessions.
var SessionColumns = []string{
	"session_id", "user_id", "agent_id", "title", "created_at",
	"last_activity", "message_count", "total_tokens", "duration_minutes", "topic",
}

// Record converts the session to an exportable row.
func (s Session) Record() Record {
	return Record{
		{"session_id", s.SessionID},
		{"user_id", s.UserID},
		{"agent_id", s.AgentID},
		{"title", s.Title},
		{"created_at", s.CreatedAt.Format(TimeLayout)},
		{"last_activity", s.LastActivity.Format(TimeLayout)},
		{"message_count", s.MessageCount},
		{"total_tokens", s.TotalTokens},
		{"duration_minutes", s.DurationMinutes},
		{"topic", s.Topic},
	}
}

// Message is one simulated chat turn belonging to a session.
type Message struct {
	MessageID  int
	SessionID  int
	AgentID    int
	UserID     int
	Role       string
	Content    string
	Timestamp  time.Time
	TokenCount int
	Flagged    bool
	ModelUsed  string
	Topic      string
}

// MessageColumns is the exported column order for messages.
var MessageColumns = []string{
	"message_id", "session_id", "agent_id", "user_id", "role", "content",
	"timestamp", "token_count", "flagged", "model_used", "topic",
}

// Record converts the message to an exportable row.
func (m Message) Record() Record {
	return Record{
		{"message_id", m.MessageID},
		{"session_id", m.SessionID},
		{"agent_id", m.AgentID},
		{"user_id", m.UserID},
		{"role", m.Role},
		{"content", m.Content},
		{"timestamp", m.Timestamp.Format(TimeLayout)},
		{"token_count", m.TokenCount},
		{"flagged", m.Flagged},
		{"model_used", m.ModelUsed},
		{"topic", m.Topic},
	}
}

// SessionRecords converts sessions to records, preserving order.
func SessionRecords(sessions []Session) []Record {
	out := make([]Record, len(sessions))
	for i, s := range sessions {
		out[i] = s.Record()
	}
	return out
}

// MessageRecords converts messages to records, preserving order.
func MessageRecords(messages []Message) []Record {
	out := make([]Record, len(messages))
	for i, m := range messages {
		out[i] = m.Record()
	}
	return out
}
