// Package chatapi is the HTTP client for the chatbot REST API.
package chatapi

import (
	"encoding/json"
	"strings"

	"github.com/ashureev/adolai/internal/domain"
)

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message   string `json:"message"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// ChatResponse is the reply of POST /chat.
type ChatResponse struct {
	Response string `json:"response"`
	Topic    string `json:"topic,omitempty"`
}

// TopicsResponse is the reply of GET /topics.
type TopicsResponse struct {
	Topics       []string          `json:"topics"`
	Descriptions map[string]string `json:"descriptions"`
}

// FollowUpResponse is the reply of GET /follow-up/{userId}.
type FollowUpResponse struct {
	Questions []string `json:"questions"`
}

// AttemptRequest is the body of POST /mcq/attempt.
type AttemptRequest struct {
	QuestionID string `json:"question_id"`
	Selected   string `json:"selected"`
	UserID     string `json:"user_id"`
}

// questionWire accepts numeric or string question ids.
type questionWire struct {
	ID       json.RawMessage `json:"id"`
	Question string          `json:"question"`
	Topic    string          `json:"topic"`
	Options  []domain.Option `json:"options"`
}

func (q questionWire) toDomain() *domain.Question {
	return &domain.Question{
		ID:       strings.Trim(string(q.ID), `"`),
		Question: q.Question,
		Topic:    q.Topic,
		Options:  q.Options,
	}
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
	Error  string          `json:"error"`
}

// detail extracts FastAPI-style {"detail": "..."} or {"error": "..."} text.
func (b errorBody) detail() string {
	if len(b.Detail) > 0 {
		var s string
		if err := json.Unmarshal(b.Detail, &s); err == nil {
			return s
		}
		return string(b.Detail)
	}
	return b.Error
}
