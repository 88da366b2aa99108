package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/museboard/museboard/internal/document"
	"github.com/museboard/museboard/internal/generate"
)

// ErrBoardNotFound is returned by a BoardSource for unknown ids.
var ErrBoardNotFound = errors.New("board not found")

// BoardSource yields a consistent snapshot of a live board.
type BoardSource interface {
	Board(ctx context.Context, id string) (*document.Board, error)
}

type Handler struct {
	boards BoardSource
	loader generate.ImageLoader
}

func NewHandler(boards BoardSource, loader generate.ImageLoader) *Handler {
	return &Handler{boards: boards, loader: loader}
}

// ExportPDF serves GET /boards/{boardId}/export.pdf.
func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	boardID := mux.Vars(r)["boardId"]

	board, err := h.boards.Board(r.Context(), boardID)
	if errors.Is(err, ErrBoardNotFound) {
		http.Error(w, "board not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("load board for export", "boardId", boardID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := WritePDF(&buf, board, h.loader); err != nil {
		slog.Error("export pdf", "boardId", boardID, "error", err)
		http.Error(w, fmt.Sprintf("export failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, Filename(board.Name)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	buf.WriteTo(w)

	slog.Info("export complete", "boardId", boardID, "elements", board.Len(), "size", buf.Len())
}

// Filename reduces a board name to a safe attachment file name.
func Filename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "board"
	}
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}
