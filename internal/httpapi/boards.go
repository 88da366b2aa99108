package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/museboard/museboard/internal/auth"
	"github.com/museboard/museboard/internal/document"
	"github.com/museboard/museboard/internal/session"
	"github.com/museboard/museboard/internal/share"
)

type BoardHandler struct {
	hub    *session.Hub
	auth   *auth.Service
	linker *share.Linker
}

func NewBoardHandler(hub *session.Hub, authSvc *auth.Service, linker *share.Linker) *BoardHandler {
	return &BoardHandler{hub: hub, auth: authSvc, linker: linker}
}

type createRequest struct {
	Name string `json:"name"`
	// Sample seeds the board with the demo content.
	Sample bool `json:"sample"`
}

type BoardResponse struct {
	Board *document.Board `json:"board"`
	Token *auth.Token     `json:"token,omitempty"`
	URL   string          `json:"url"`
}

// Create handles POST /boards. The body is optional.
func (h *BoardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	var board *document.Board
	if req.Sample {
		board = document.NewSampleBoard("")
		if req.Name != "" {
			board.Name = req.Name
		}
	} else {
		board = document.NewBoard("", req.Name)
	}

	token, err := h.auth.Issue(board.ID)
	if err != nil {
		slog.Error("issue board token", "error", err, "board", board.ID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	// The session loop owns board once created.
	snapshot := board.Clone()
	h.hub.Create(board)

	writeJSON(w, http.StatusCreated, BoardResponse{
		Board: snapshot,
		Token: token,
		URL:   h.linker.BoardURL(board.ID, token.Token),
	})
}

// Get handles GET /boards/{boardId} behind auth.BoardMiddleware.
func (h *BoardHandler) Get(w http.ResponseWriter, r *http.Request) {
	boardID := mux.Vars(r)["boardId"]

	board, err := h.hub.Board(r.Context(), boardID)
	if err != nil {
		handleSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BoardResponse{Board: board, URL: h.linker.BoardURL(board.ID, "")})
}

// QRCode handles GET /boards/{boardId}/qr.png. The code carries the
// caller's token so scanning it opens the board directly.
func (h *BoardHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	boardID := mux.Vars(r)["boardId"]
	if _, err := h.hub.Get(boardID); err != nil {
		handleSessionError(w, err)
		return
	}

	token, _ := auth.TokenFromRequest(r)
	png, err := share.QRCode(h.linker.BoardURL(boardID, token), share.DefaultQRSize)
	if err != nil {
		slog.Error("render qr code", "error", err, "board", boardID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}

func handleSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "board not found"})
	case errors.Is(err, session.ErrSessionClosed):
		writeJSON(w, http.StatusGone, map[string]string{"error": "board closed"})
	default:
		slog.Error("session error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
