package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ashureev/adolai/internal/domain"
	"github.com/ashureev/adolai/internal/history/export"
	"github.com/ashureev/adolai/internal/identity"
	"github.com/go-chi/chi/v5"
)

type sessionsResponse struct {
	Sessions  []domain.ChatSession `json:"sessions"`
	Favorites []string             `json:"favorites"`
	Status    string               `json:"status"`
}

// ListSessions returns the caller's sessions. Query parameters narrow the
// result: q (search), favorites=1, start and end (unix ms, inclusive).
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := identity.UserIDFromContext(ctx)
	q := r.URL.Query()

	resp := sessionsResponse{Status: "ok"}
	switch {
	case q.Get("q") != "":
		resp.Sessions = h.history.SearchSessions(ctx, userID, q.Get("q"))
	case q.Get("favorites") == "1" || q.Get("favorites") == "true":
		resp.Sessions = h.history.FavoriteSessions(ctx, userID)
	case q.Get("start") != "" || q.Get("end") != "":
		start, errStart := parseMillis(q.Get("start"), 0)
		end, errEnd := parseMillis(q.Get("end"), 1<<62)
		if errStart != nil || errEnd != nil {
			Error(w, http.StatusBadRequest, "start and end must be unix milliseconds")
			return
		}
		resp.Sessions = h.history.FilterSessionsByDate(ctx, userID, start, end)
	default:
		sessions, status := h.history.LoadSessions(ctx, userID)
		resp.Sessions, resp.Status = sessions, status.String()
	}
	if resp.Sessions == nil {
		resp.Sessions = []domain.ChatSession{}
	}
	resp.Favorites = h.history.FavoriteIDs(ctx, userID)
	JSON(w, http.StatusOK, resp)
}

func parseMillis(v string, fallback int64) (int64, error) {
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

// GetSession returns one stored session.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := identity.UserIDFromContext(ctx)
	sessionID := chi.URLParam(r, "sessionID")

	session, ok := h.history.Session(ctx, userID, sessionID)
	if !ok {
		Error(w, http.StatusNotFound, "session not found")
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"session":  session,
		"favorite": h.history.IsFavorite(ctx, userID, sessionID),
	})
}

// DeleteSession removes one stored session. Deleting an absent session succeeds.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.history.DeleteSession(ctx, identity.UserIDFromContext(ctx), chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}

// ToggleFavorite flips the favorite flag of a session.
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	favorite := h.history.ToggleFavorite(ctx, identity.UserIDFromContext(ctx), chi.URLParam(r, "sessionID"))
	JSON(w, http.StatusOK, map[string]bool{"favorite": favorite})
}

// ClearHistory removes every session and favorite of the caller.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.history.ClearHistory(ctx, identity.UserIDFromContext(ctx))
	w.WriteHeader(http.StatusNoContent)
}

// Stats summarizes the caller's stored history.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	JSON(w, http.StatusOK, h.history.StorageStats(ctx, identity.UserIDFromContext(ctx)))
}

// Export downloads the caller's history as ?format=json|txt|yaml|md.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	out, err := h.history.ExportSessions(ctx, identity.UserIDFromContext(ctx), r.URL.Query().Get("format"))
	if errors.Is(err, export.ErrUnsupportedFormat) {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to export history")
		return
	}

	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+out.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Data)
}
