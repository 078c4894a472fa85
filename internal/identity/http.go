package identity

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/ashureev/adolai/internal/store"
)

const (
	// SessionHeaderName carries the tab session id in both directions.
	SessionHeaderName = "X-Adolai-Session-ID"
	userCookieMaxAge  = 365 * 24 * time.Hour
)

type contextKey int

const (
	userIDKey contextKey = iota
	sessionIDKey
	managerKey
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// UserIDFromContext extracts the user ID from the request context.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

// SessionIDFromContext extracts the tab session ID from the request context.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey).(string); ok {
		return v
	}
	return ""
}

// ManagerFromContext returns the request-bound Manager installed by Middleware.
func ManagerFromContext(ctx context.Context) *Manager {
	if v, ok := ctx.Value(managerKey).(*Manager); ok {
		return v
	}
	return nil
}

// WithIdentity returns ctx carrying the given ids. Used by non-HTTP callers
// and tests.
func WithIdentity(ctx context.Context, userID, sessionID string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// cookieScope is the browser's durable scope seen from the server: values
// live in long-lived cookies.
type cookieScope struct {
	w     http.ResponseWriter
	r     *http.Request
	isDev bool
	local map[string]string
}

func (c *cookieScope) Get(_ context.Context, key string) (string, error) {
	if v, ok := c.local[key]; ok {
		if v == "" {
			return "", store.ErrNotFound
		}
		return v, nil
	}
	ck, err := c.r.Cookie(key)
	if err != nil || !idPattern.MatchString(ck.Value) {
		return "", store.ErrNotFound
	}
	return ck.Value, nil
}

func (c *cookieScope) Set(_ context.Context, key, value string) error {
	c.local[key] = value
	http.SetCookie(c.w, &http.Cookie{
		Name:     key,
		Value:    value,
		Path:     "/",
		MaxAge:   int(userCookieMaxAge.Seconds()),
		Expires:  time.Now().Add(userCookieMaxAge),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !c.isDev,
	})
	return nil
}

func (c *cookieScope) Remove(_ context.Context, key string) error {
	c.local[key] = ""
	http.SetCookie(c.w, &http.Cookie{
		Name:     key,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !c.isDev,
	})
	return nil
}

// headerScope is the tab scope: the browser echoes the id back on every
// request and the server announces replacements in the response header.
type headerScope struct {
	w     http.ResponseWriter
	r     *http.Request
	local map[string]string
}

func (h *headerScope) Get(_ context.Context, key string) (string, error) {
	if v, ok := h.local[key]; ok {
		if v == "" {
			return "", store.ErrNotFound
		}
		return v, nil
	}
	sid := strings.TrimSpace(h.r.Header.Get(SessionHeaderName))
	if sid == "" {
		sid = h.r.URL.Query().Get("session_id")
	}
	if !idPattern.MatchString(sid) {
		return "", store.ErrNotFound
	}
	return sid, nil
}

func (h *headerScope) Set(_ context.Context, key, value string) error {
	h.local[key] = value
	h.w.Header().Set(SessionHeaderName, value)
	return nil
}

func (h *headerScope) Remove(_ context.Context, key string) error {
	h.local[key] = ""
	h.w.Header().Del(SessionHeaderName)
	return nil
}

// RequestManager returns a Manager whose durable scope is the request's
// cookies and whose tab scope is the session header.
func RequestManager(w http.ResponseWriter, r *http.Request, isDev bool) *Manager {
	return NewManager(
		&cookieScope{w: w, r: r, isDev: isDev, local: make(map[string]string)},
		&headerScope{w: w, r: r, local: make(map[string]string)},
		Options{},
	)
}

// Middleware resolves (or issues) the user and tab session ids for every request.
func Middleware(isDev bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mgr := RequestManager(w, r, isDev)

			userID, err := mgr.UserID(r.Context())
			if err != nil {
				slog.Error("Failed to establish user identity", "error", err)
				http.Error(w, `{"error":"failed to establish identity"}`, http.StatusInternalServerError)
				return
			}
			sessionID, err := mgr.SessionID(r.Context())
			if err != nil {
				slog.Error("Failed to establish session identity", "error", err, "user_id", userID)
				http.Error(w, `{"error":"failed to establish session"}`, http.StatusInternalServerError)
				return
			}

			ctx := WithIdentity(r.Context(), userID, sessionID)
			ctx = context.WithValue(ctx, managerKey, mgr)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
