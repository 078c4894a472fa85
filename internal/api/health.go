package api

import (
	"net/http"
)

// Health reports upstream connectivity and cache stats. It always answers
// 200; "connected" carries the upstream state.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, h.chat.Health(r.Context()))
}
