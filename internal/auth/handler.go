package auth

import (
	"log/slog"
	"net/http"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Refresh handles POST /boards/{boardId}/token. It must run behind
// BoardMiddleware and swaps a still-valid token for a fresh one.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	boardID := BoardIDFromContext(r.Context())

	token, err := h.service.Issue(boardID)
	if err != nil {
		slog.Error("refresh token failed", "error", err, "board", boardID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, token)
}
