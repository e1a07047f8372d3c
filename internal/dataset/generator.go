package dataset

import (
	"math/rand/v2"
	"strings"
	"time"

	"chatsynth/internal/logging"
)

// Value ranges. Upper bounds are exclusive.
const (
	MaxUserID  = 50
	MaxAgentID = 10

	MinMessages = 4
	MaxMessages = 20

	MinDuration = 5
	MaxDuration = 60

	MinTokensPerMessage = 30
	MaxTokensPerMessage = 50

	// Sessions start up to this many whole days before the generation clock.
	MaxAgeDays = 14

	MinFillerWords = 10
	MaxFillerWords = 100
	FillerWord     = "word"

	// Minutes between consecutive messages of a session.
	MessageSpacing = 2

	TokensPerWord  = 4
	MaxTokenJitter = 20

	FlagRate = 0.05
)

// Source is the randomness a Generator draws from. *rand.Rand from
// math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
	Float64() float64
}

// IDCounter hands out message ids. One counter is shared by every session of
// a run so ids stay globally unique and increasing.
type IDCounter struct {
	next int
}

// NewIDCounter returns a counter whose first id is 1.
func NewIDCounter() *IDCounter {
	return &IDCounter{next: 1}
}

// Next returns the next id.
func (c *IDCounter) Next() int {
	id := c.next
	c.next++
	return id
}

// Generator fabricates sessions and messages from an injected random source
// and clock.
type Generator struct {
	rng Source
	now func() time.Time
}

// NewGenerator creates a generator. A nil clock means time.Now.
func NewGenerator(rng Source, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{rng: rng, now: now}
}

// NewSeeded creates a generator backed by a PCG source seeded with seed.
func NewSeeded(seed uint64, now func() time.Time) *Generator {
	logging.GenerateDebug("Seeding PCG source with %d", seed)
	return NewGenerator(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), now)
}

// between returns a value in [lo, hi).
func (g *Generator) between(lo, hi int) int {
	return lo + g.rng.IntN(hi-lo)
}

// GenerateSessions returns count sessions with ids 1..count. A count of zero
// or less yields an empty slice.
func (g *Generator) GenerateSessions(count int) []Session {
	if count <= 0 {
		return []Session{}
	}
	timer := logging.StartTimer(logging.CategoryGenerate, "GenerateSessions")
	defer timer.Stop()

	now := g.now().Truncate(time.Second)
	sessions := make([]Session, 0, count)
	for id := 1; id <= count; id++ {
		userID := g.between(1, MaxUserID+1)
		agentID := g.between(1, MaxAgentID+1)
		topic := Topics[g.rng.IntN(len(Topics))]
		createdAt := now.AddDate(0, 0, -g.rng.IntN(MaxAgeDays))
		duration := g.between(MinDuration, MaxDuration)
		messageCount := g.between(MinMessages, MaxMessages)
		totalTokens := messageCount * g.between(MinTokensPerMessage, MaxTokensPerMessage)

		sessions = append(sessions, Session{
			SessionID:       id,
			UserID:          userID,
			AgentID:         agentID,
			Title:           "Inquiry about " + topic,
			CreatedAt:       createdAt,
			LastActivity:    createdAt.Add(time.Duration(duration) * time.Minute),
			MessageCount:    messageCount,
			TotalTokens:     totalTokens,
			DurationMinutes: duration,
			Topic:           topic,
		})
	}
	logging.Generate("Generated %d sessions", len(sessions))
	return sessions
}

// GenerateMessages builds session.MessageCount messages for every session,
// in session order, drawing ids from ids. Roles alternate starting with
// "user".
func (g *Generator) GenerateMessages(sessions []Session, ids *IDCounter) []Message {
	total := 0
	for _, s := range sessions {
		total += s.MessageCount
	}
	messages := make([]Message, 0, total)
	if len(sessions) == 0 {
		return messages
	}

	for _, s := range sessions {
		for i := 0; i < s.MessageCount; i++ {
			messages = append(messages, g.message(s, i, ids.Next()))
		}
	}
	logging.Generate("Generated %d messages across %d sessions", len(messages), len(sessions))
	return messages
}

func (g *Generator) message(s Session, index, id int) Message {
	role := RoleUser
	if index%2 == 1 {
		role = RoleAssistant
	}

	content := messageContent(role, s.Topic, g.between(MinFillerWords, MaxFillerWords))
	tokens := len(strings.Fields(content))*TokensPerWord + g.rng.IntN(MaxTokenJitter)
	flagged := g.rng.Float64() < FlagRate

	model := ""
	if role == RoleAssistant {
		model = Models[g.rng.IntN(len(Models))]
	}

	return Message{
		MessageID:  id,
		SessionID:  s.SessionID,
		AgentID:    s.AgentID,
		UserID:     s.UserID,
		Role:       role,
		Content:    content,
		Timestamp:  s.CreatedAt.Add(time.Duration(index*MessageSpacing) * time.Minute),
		TokenCount: tokens,
		Flagged:    flagged,
		ModelUsed:  model,
		Topic:      s.Topic,
	}
}

func messageContent(role, topic string, fillerWords int) string {
	var b strings.Builder
	b.Grow(len(topic) + 32 + fillerWords*(len(FillerWord)+1))
	b.WriteString("Message from ")
	b.WriteString(role)
	b.WriteString(" about ")
	b.WriteString(topic)
	for i := 0; i < fillerWords; i++ {
		b.WriteByte(' ')
		b.WriteString(FillerWord)
	}
	return b.String()
}
