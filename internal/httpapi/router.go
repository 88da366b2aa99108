// Package httpapi exposes boards over HTTP and websockets.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/museboard/museboard/internal/asset"
	"github.com/museboard/museboard/internal/auth"
	"github.com/museboard/museboard/internal/document"
	"github.com/museboard/museboard/internal/export"
	"github.com/museboard/museboard/internal/session"
	"github.com/museboard/museboard/internal/share"
)

type Deps struct {
	Hub     *session.Hub
	Auth    *auth.Service
	Linker  *share.Linker
	Assets  *asset.Store
	Origins []string
}

// NewRouter wires every route of the server.
func NewRouter(d Deps) *mux.Router {
	boards := NewBoardHandler(d.Hub, d.Auth, d.Linker)
	tokens := auth.NewHandler(d.Auth)
	assets := asset.NewHandler(d.Assets)
	exports := export.NewHandler(liveBoards{d.Hub}, d.Assets)

	r := mux.NewRouter()
	r.Use(Recovery)
	r.Use(Logger)
	r.Use(CORS(d.Origins))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "boards": d.Hub.Len()})
	}).Methods("GET")

	r.HandleFunc("/boards", boards.Create).Methods("POST", "OPTIONS")

	board := r.PathPrefix("/boards/{boardId}").Subrouter()
	board.Use(d.Auth.BoardMiddleware)
	board.HandleFunc("", boards.Get).Methods("GET")
	board.HandleFunc("/token", tokens.Refresh).Methods("POST")
	board.HandleFunc("/qr.png", boards.QRCode).Methods("GET")
	board.HandleFunc("/export.pdf", exports.ExportPDF).Methods("GET")

	r.HandleFunc("/assets/upload", assets.Upload).Methods("POST", "OPTIONS")
	r.PathPrefix(asset.URLPrefix).Handler(assets.Serve()).Methods("GET")

	r.Handle("/ws/board/{boardId}", NewWebSocketHandler(d.Hub, d.Auth, d.Origins))

	return r
}

// liveBoards adapts the hub to the export package.
type liveBoards struct{ hub *session.Hub }

func (l liveBoards) Board(ctx context.Context, id string) (*document.Board, error) {
	b, err := l.hub.Board(ctx, id)
	if errors.Is(err, session.ErrSessionNotFound) {
		return nil, export.ErrBoardNotFound
	}
	return b, err
}
