package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the JSON API under /api.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/me", h.Me)

		r.Route("/chat", func(r chi.Router) {
			r.With(h.throttle).Post("/", h.Chat)
			r.Get("/transcript", h.Transcript)
			r.Post("/new", h.NewChat)
		})

		r.Get("/topics", h.Topics)
		r.Get("/follow-up", h.FollowUps)
		r.Get("/mcq/next", h.NextQuestion)
		r.Post("/mcq/attempt", h.SubmitAttempt)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", h.ListSessions)
			r.Delete("/", h.ClearHistory)
			r.Get("/stats", h.Stats)
			r.Get("/export", h.Export)
			r.Get("/{sessionID}", h.GetSession)
			r.Delete("/{sessionID}", h.DeleteSession)
			r.Post("/{sessionID}/favorite", h.ToggleFavorite)
		})

		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			Error(w, http.StatusNotFound, "not found")
		})
	})
}

func (h *Handler) throttle(next http.Handler) http.Handler {
	if h.limiter == nil {
		return next
	}
	return h.limiter.Middleware(next)
}
