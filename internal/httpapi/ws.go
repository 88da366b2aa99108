package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/museboard/museboard/internal/auth"
	"github.com/museboard/museboard/internal/session"
)

type WebSocketHandler struct {
	hub     *session.Hub
	auth    *auth.Service
	origins []string
}

func NewWebSocketHandler(hub *session.Hub, authSvc *auth.Service, origins []string) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, auth: authSvc, origins: origins}
}

// ServeHTTP handles GET /ws/board/{boardId}?token=. Browsers cannot set
// headers on websocket upgrades, so the token comes from the query.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	boardID := mux.Vars(r)["boardId"]

	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	if err := h.auth.Authorize(token, boardID); err != nil {
		if errors.Is(err, auth.ErrWrongBoard) {
			http.Error(w, "token is for another board", http.StatusForbidden)
			return
		}
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	sess, err := h.hub.Get(boardID)
	if err != nil {
		http.Error(w, "board not found", http.StatusNotFound)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := session.NewClient(sess, conn, uuid.New().String())
	if !sess.Attach(client) {
		conn.Close(websocket.StatusGoingAway, "board closed")
		return
	}

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
