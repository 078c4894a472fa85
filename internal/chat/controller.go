// Package chat orchestrates a chat turn: reply cache, upstream call, history.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ashureev/adolai/internal/cache"
	"github.com/ashureev/adolai/internal/chatapi"
	"github.com/ashureev/adolai/internal/domain"
	"github.com/ashureev/adolai/internal/history"
	"github.com/ashureev/adolai/internal/mcq"
	"github.com/google/uuid"
)

// DefaultChatTimeout bounds a single chat round trip.
const DefaultChatTimeout = 10 * time.Second

// ErrEmptyMessage is returned when the trimmed input is empty.
var ErrEmptyMessage = errors.New("message is empty")

// Upstream is the subset of the chatbot API the controller drives.
type Upstream interface {
	SendMessage(ctx context.Context, req chatapi.ChatRequest) (*chatapi.ChatResponse, error)
	Topics(ctx context.Context) (*chatapi.TopicsResponse, error)
	FollowUps(ctx context.Context, userID, topic string) (*chatapi.FollowUpResponse, error)
	Health(ctx context.Context) (map[string]any, error)
	NextQuestion(ctx context.Context, topic, difficulty string) (*domain.Question, error)
	SubmitAttempt(ctx context.Context, req chatapi.AttemptRequest) (*domain.AttemptResult, error)
}

var _ Upstream = (*chatapi.Client)(nil)

// Options configures a Controller.
type Options struct {
	ChatTimeout time.Duration
	Now         func() time.Time
	NewID       func() string
	Logger      *slog.Logger
}

// Controller wires user input to the cache, the chatbot API and history.
type Controller struct {
	api         Upstream
	cache       *cache.ResponseCache
	history     *history.Store
	chatTimeout time.Duration
	now         func() time.Time
	newID       func() string
	log         *slog.Logger
}

// NewController creates a Controller.
func NewController(api Upstream, c *cache.ResponseCache, h *history.Store, opts Options) *Controller {
	if opts.ChatTimeout <= 0 {
		opts.ChatTimeout = DefaultChatTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Controller{
		api:         api,
		cache:       c,
		history:     h,
		chatTimeout: opts.ChatTimeout,
		now:         opts.Now,
		newID:       opts.NewID,
		log:         opts.Logger,
	}
}

// SendRequest is one user turn.
type SendRequest struct {
	UserID         string
	SessionID      string
	Text           string
	Emoji          string
	SuggestedTopic string
}

// Reply is what the UI renders after a turn.
type Reply struct {
	Messages      []domain.Message  `json:"messages"`
	Topic         string            `json:"topic,omitempty"`
	FromCache     bool              `json:"from_cache"`
	Connected     bool              `json:"connected"`
	ShowFollowUps bool              `json:"show_follow_ups"`
	ErrorKind     string            `json:"error_kind,omitempty"`
	Quiz          []domain.Question `json:"quiz,omitempty"`
}

// Send runs one chat turn. Upstream failures never surface as errors: they
// become a bot message and Connected=false. Only empty input is rejected.
func (c *Controller) Send(ctx context.Context, req SendRequest) (*Reply, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	transcript := c.Transcript(ctx, req.UserID, req.SessionID)

	userMsg, err := c.message(text, false)
	if err != nil {
		return nil, fmt.Errorf("build user message: %w", err)
	}
	userMsg.Emoji = req.Emoji
	reply := &Reply{Messages: []domain.Message{userMsg}, Connected: true}

	var (
		botText    string
		topic      string
		processing time.Duration
	)
	if cached, ok := c.cache.Get(text, req.UserID); ok {
		c.log.Debug("Using cached response", "user_id", req.UserID, "session_id", req.SessionID)
		botText, topic = cached.Response, cached.Topic
		reply.FromCache = true
	} else {
		start := c.now()
		resp, err := c.callChat(ctx, req.UserID, req.SessionID, text)
		if err == nil && (resp == nil || strings.TrimSpace(resp.Response) == "") {
			err = &chatapi.Error{Kind: chatapi.KindDecode, Endpoint: "/chat", Detail: "empty response"}
		}
		if err != nil {
			c.log.Error("Error sending message", "user_id", req.UserID, "session_id", req.SessionID, "error", err)
			errMsg, msgErr := c.message(ErrorCopy(err), true)
			if msgErr != nil {
				return nil, fmt.Errorf("build error message: %w", msgErr)
			}
			reply.Connected = false
			reply.ErrorKind = string(chatapi.KindOf(err))
			reply.Messages = append(reply.Messages, errMsg)
			c.record(ctx, req, "", append(transcript, reply.Messages...))
			return reply, nil
		}
		processing = c.now().Sub(start)
		botText, topic = resp.Response, resp.Topic
		c.cache.Set(text, domain.CachedResponse{Response: resp.Response, Topic: resp.Topic}, req.UserID)
	}

	botMsg, err := c.message(botText, true)
	if err != nil {
		return nil, fmt.Errorf("build bot message: %w", err)
	}
	botMsg.ProcessingTime = processing.Seconds()
	reply.Messages = append(reply.Messages, botMsg)

	if topic == "" {
		topic = req.SuggestedTopic
	}
	reply.Topic = topic
	reply.ShowFollowUps = topic != ""
	if mcq.IsQuiz(botText) {
		reply.Quiz = mcq.Parse(botText)
	}

	c.record(ctx, req, topic, append(transcript, reply.Messages...))
	return reply, nil
}

func (c *Controller) callChat(ctx context.Context, userID, sessionID, text string) (*chatapi.ChatResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.chatTimeout)
	defer cancel()
	return c.api.SendMessage(ctx, chatapi.ChatRequest{Message: text, UserID: userID, SessionID: sessionID})
}

// record persists the turn. History is best effort and never fails a turn.
func (c *Controller) record(ctx context.Context, req SendRequest, topic string, messages []domain.Message) {
	if c.history == nil || req.SessionID == "" {
		return
	}
	patch := history.SessionPatch{SessionID: req.SessionID, UserID: &req.UserID}
	if topic != "" {
		patch.Topic = &topic
	}
	c.history.SaveSession(ctx, req.UserID, patch)
	c.history.UpdateSessionMessages(ctx, req.UserID, req.SessionID, messages)
}

// Transcript returns the stored messages of a session, or a fresh greeting
// when the session has none.
func (c *Controller) Transcript(ctx context.Context, userID, sessionID string) []domain.Message {
	if c.history != nil {
		if s, ok := c.history.Session(ctx, userID, sessionID); ok && len(s.Messages) > 0 {
			return s.Messages
		}
	}
	greeting, err := c.message(Greeting, true)
	if err != nil {
		c.log.Error("Failed to build greeting", "error", err)
		return nil
	}
	return []domain.Message{greeting}
}

func (c *Controller) message(text string, isBot bool) (domain.Message, error) {
	return domain.NewMessage(c.newID(), text, isBot, c.now())
}

// Topics lists the available health topics.
func (c *Controller) Topics(ctx context.Context) (*chatapi.TopicsResponse, error) {
	return c.api.Topics(ctx)
}

// FollowUps returns follow-up suggestions for the user's last topic.
func (c *Controller) FollowUps(ctx context.Context, userID, topic string) (*chatapi.FollowUpResponse, error) {
	return c.api.FollowUps(ctx, userID, topic)
}

// NextQuestion fetches a quiz question.
func (c *Controller) NextQuestion(ctx context.Context, topic, difficulty string) (*domain.Question, error) {
	return c.api.NextQuestion(ctx, topic, difficulty)
}

// SubmitAttempt grades a quiz answer for userID.
func (c *Controller) SubmitAttempt(ctx context.Context, userID, questionID, selected string) (*domain.AttemptResult, error) {
	return c.api.SubmitAttempt(ctx, chatapi.AttemptRequest{QuestionID: questionID, Selected: selected, UserID: userID})
}

// Health reports upstream health together with local cache stats.
func (c *Controller) Health(ctx context.Context) map[string]any {
	out := map[string]any{"cache": c.cache.Stats()}
	upstream, err := c.api.Health(ctx)
	if err != nil {
		out["connected"] = false
		out["error"] = ErrorCopy(err)
		return out
	}
	out["connected"] = true
	out["upstream"] = upstream
	return out
}

// ClearCache drops the user's memoized replies.
func (c *Controller) ClearCache(userID string) {
	c.cache.Clear(userID)
}
