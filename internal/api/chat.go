package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ashureev/adolai/internal/chat"
	"github.com/ashureev/adolai/internal/chatapi"
	"github.com/ashureev/adolai/internal/identity"
)

type chatRequest struct {
	Message string `json:"message"`
	Emoji   string `json:"emoji,omitempty"`
	Topic   string `json:"topic,omitempty"`
}

type attemptRequest struct {
	QuestionID string `json:"question_id"`
	Selected   string `json:"selected"`
}

// Me returns the caller's user and tab session ids.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{
		"user_id":    identity.UserIDFromContext(r.Context()),
		"session_id": identity.SessionIDFromContext(r.Context()),
	})
}

// Chat runs one chat turn. Upstream failures still answer 200 with a
// disconnected reply; only malformed or empty input is rejected.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	reply, err := h.chat.Send(ctx, chat.SendRequest{
		UserID:         identity.UserIDFromContext(ctx),
		SessionID:      identity.SessionIDFromContext(ctx),
		Text:           req.Message,
		Emoji:          req.Emoji,
		SuggestedTopic: req.Topic,
	})
	if errors.Is(err, chat.ErrEmptyMessage) {
		Error(w, http.StatusBadRequest, "message is required")
		return
	}
	if err != nil {
		slog.Error("Chat turn failed", "error", err, "user_id", identity.UserIDFromContext(ctx))
		Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	JSON(w, http.StatusOK, reply)
}

// Transcript returns the messages of the caller's current tab session.
func (h *Handler) Transcript(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	JSON(w, http.StatusOK, map[string]any{
		"session_id": identity.SessionIDFromContext(ctx),
		"messages":   h.chat.Transcript(ctx, identity.UserIDFromContext(ctx), identity.SessionIDFromContext(ctx)),
	})
}

// NewChat drops the tab session id and issues a fresh one. The user id and
// stored history are untouched.
func (h *Handler) NewChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	mgr := identity.ManagerFromContext(ctx)
	if mgr == nil {
		Error(w, http.StatusInternalServerError, "identity unavailable")
		return
	}
	if err := mgr.ClearSession(ctx); err != nil {
		slog.Error("Failed to clear session", "error", err, "user_id", identity.UserIDFromContext(ctx))
		Error(w, http.StatusInternalServerError, "failed to start new chat")
		return
	}
	sessionID, err := mgr.SessionID(ctx)
	if err != nil {
		slog.Error("Failed to issue session", "error", err, "user_id", identity.UserIDFromContext(ctx))
		Error(w, http.StatusInternalServerError, "failed to start new chat")
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"messages":   h.chat.Transcript(ctx, identity.UserIDFromContext(ctx), sessionID),
	})
}

// Topics proxies the topic catalogue.
func (h *Handler) Topics(w http.ResponseWriter, r *http.Request) {
	resp, err := h.chat.Topics(r.Context())
	if err != nil {
		upstreamError(w, err)
		return
	}
	JSON(w, http.StatusOK, resp)
}

// FollowUps proxies follow-up suggestions for ?topic=.
func (h *Handler) FollowUps(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp, err := h.chat.FollowUps(ctx, identity.UserIDFromContext(ctx), r.URL.Query().Get("topic"))
	if err != nil {
		upstreamError(w, err)
		return
	}
	JSON(w, http.StatusOK, resp)
}

// NextQuestion proxies a quiz question for ?topic=&difficulty=.
func (h *Handler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := h.chat.NextQuestion(r.Context(), q.Get("topic"), q.Get("difficulty"))
	if err != nil {
		upstreamError(w, err)
		return
	}
	JSON(w, http.StatusOK, resp)
}

// SubmitAttempt grades a quiz answer.
func (h *Handler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	var req attemptRequest
	if err := decodeJSON(w, r, &req); err != nil || req.QuestionID == "" || req.Selected == "" {
		Error(w, http.StatusBadRequest, "question_id and selected are required")
		return
	}
	ctx := r.Context()
	resp, err := h.chat.SubmitAttempt(ctx, identity.UserIDFromContext(ctx), req.QuestionID, req.Selected)
	if err != nil {
		upstreamError(w, err)
		return
	}
	JSON(w, http.StatusOK, resp)
}

// upstreamError maps a chatbot API failure onto a status and user copy.
func upstreamError(w http.ResponseWriter, err error) {
	kind := chatapi.KindOf(err)
	status := http.StatusBadGateway
	switch kind {
	case chatapi.KindValidation:
		status = http.StatusBadRequest
	case chatapi.KindNotFound:
		status = http.StatusNotFound
	case chatapi.KindRateLimited:
		status = http.StatusTooManyRequests
	case chatapi.KindTimeout:
		status = http.StatusGatewayTimeout
	case chatapi.KindUnavailable:
		status = http.StatusServiceUnavailable
	}
	slog.Warn("Upstream call failed", "error", err, "kind", kind)
	JSON(w, status, map[string]string{"error": chat.ErrorCopy(err), "kind": string(kind)})
}
