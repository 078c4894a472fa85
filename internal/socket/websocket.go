package socket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ashureev/adolai/internal/chat"
	"github.com/ashureev/adolai/internal/identity"
	"github.com/coder/websocket"
)

// Sender runs one chat turn.
type Sender interface {
	Send(ctx context.Context, req chat.SendRequest) (*chat.Reply, error)
}

// Handler serves /ws/chat: each inbound frame is a user turn, each outbound
// frame a JSON reply.
type Handler struct {
	chat           Sender
	sm             *SessionManager
	allowedOrigins []string
	isDev          bool
}

// NewHandler creates a chat WebSocket handler.
func NewHandler(s Sender, sm *SessionManager, allowedOrigins []string, isDev bool) *Handler {
	return &Handler{
		chat:           s,
		sm:             sm,
		allowedOrigins: allowedOrigins,
		isDev:          isDev,
	}
}

// inbound is the JSON form of a client frame. Plain text frames are treated
// as {"type":"message","content":<frame>}.
type inbound struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Emoji   string `json:"emoji,omitempty"`
	Topic   string `json:"topic,omitempty"`
}

type outbound struct {
	Type  string      `json:"type"`
	Reply *chat.Reply `json:"reply,omitempty"`
	Error string      `json:"error,omitempty"`
}

// ServeHTTP implements http.Handler for the WebSocket upgrade.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	slog.Info("WebSocket connection request", "user_id", userID, "session_id", sessionID, "ip", r.RemoteAddr)

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "user_id", userID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "user_id", userID)
		}
	}()

	h.sm.Register(userID, sessionID, ws)
	defer h.sm.Unregister(userID, sessionID, ws)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	h.readLoop(ctx, ws, userID, sessionID)
	slog.Info("Chat socket ended", "user_id", userID, "session_id", sessionID)
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range h.allowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigins)
	return false
}

func (h *Handler) readLoop(ctx context.Context, ws *websocket.Conn, userID, sessionID string) {
	for {
		typ, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client", "user_id", userID)
			} else if ctx.Err() == nil {
				slog.Warn("WebSocket read error", "error", err, "user_id", userID)
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		msg := decodeInbound(data)
		switch msg.Type {
		case "ping":
			if err := h.writeJSON(ctx, ws, outbound{Type: "pong"}); err != nil {
				slog.Debug("Failed to send pong", "error", err)
				return
			}
		case "close":
			return
		case "message":
			if err := h.handleMessage(ctx, ws, userID, sessionID, msg); err != nil {
				slog.Debug("Failed to send reply", "error", err, "user_id", userID)
				return
			}
		default:
			if err := h.writeJSON(ctx, ws, outbound{Type: "error", Error: "unknown message type"}); err != nil {
				return
			}
		}
	}
}

func (h *Handler) handleMessage(ctx context.Context, ws *websocket.Conn, userID, sessionID string, msg inbound) error {
	reply, err := h.chat.Send(ctx, chat.SendRequest{
		UserID:         userID,
		SessionID:      sessionID,
		Text:           msg.Content,
		Emoji:          msg.Emoji,
		SuggestedTopic: msg.Topic,
	})
	if errors.Is(err, chat.ErrEmptyMessage) {
		return h.writeJSON(ctx, ws, outbound{Type: "error", Error: err.Error()})
	}
	if err != nil {
		slog.Error("Chat turn failed", "error", err, "user_id", userID, "session_id", sessionID)
		return h.writeJSON(ctx, ws, outbound{Type: "error", Error: "internal error"})
	}
	return h.writeJSON(ctx, ws, outbound{Type: "reply", Reply: reply})
}

func decodeInbound(data []byte) inbound {
	var msg inbound
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
		return inbound{Type: "message", Content: string(data)}
	}
	return msg
}

func (h *Handler) writeJSON(ctx context.Context, ws *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return ws.Write(ctx, websocket.MessageText, data)
}
