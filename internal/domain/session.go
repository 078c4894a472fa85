package domain

import (
	"time"
)

// SummaryLength is the number of characters kept from the first user message.
const SummaryLength = 60

// ChatSession is one persisted conversation thread. CreatedAt and LastModified
// are unix milliseconds so the serialized form stays compatible with the
// browser history documents.
type ChatSession struct {
	SessionID    string    `json:"sessionId" yaml:"session_id"`
	UserID       string    `json:"userId,omitempty" yaml:"user_id,omitempty"`
	Topic        string    `json:"topic,omitempty" yaml:"topic,omitempty"`
	Summary      string    `json:"summary,omitempty" yaml:"summary,omitempty"`
	Messages     []Message `json:"messages,omitempty" yaml:"messages,omitempty"`
	CreatedAt    int64     `json:"createdAt,omitempty" yaml:"created_at,omitempty"`
	LastModified int64     `json:"lastModified" yaml:"last_modified"`
}

// Date returns CreatedAt, falling back to LastModified when unset.
func (s *ChatSession) Date() int64 {
	if s.CreatedAt != 0 {
		return s.CreatedAt
	}
	return s.LastModified
}

// FirstUserMessage returns the first non-bot message, if any.
func (s *ChatSession) FirstUserMessage() (Message, bool) {
	for _, m := range s.Messages {
		if !m.IsBot {
			return m, true
		}
	}
	return Message{}, false
}

// Summarize derives a sidebar summary from text: the first SummaryLength
// characters followed by an ellipsis when the text is longer.
func Summarize(text string) string {
	r := []rune(text)
	if len(r) <= SummaryLength {
		return text
	}
	return string(r[:SummaryLength]) + "..."
}

// MillisToTime converts unix milliseconds to a time.Time. Zero stays zero.
func MillisToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

// StorageStats aggregates a user's persisted history.
type StorageStats struct {
	TotalSessions    int        `json:"totalSessions"`
	TotalMessages    int        `json:"totalMessages"`
	FavoriteSessions int        `json:"favoriteSessions"`
	OldestSession    *time.Time `json:"oldestSession"`
	NewestSession    *time.Time `json:"newestSession"`
}
