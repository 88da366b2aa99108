package asset

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
)

const maxUploadSize = 10 << 20 // 10MB

type UploadResponse struct {
	Asset
	// Name is the uploaded file name, for display only.
	Name string `json:"name"`
}

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// Upload handles POST /assets/upload, a multipart form with a "file" field.
// The type is sniffed from the bytes; the part's Content-Type is not trusted.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "expected a multipart file field of at most 10MB")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}
	if !supported(http.DetectContentType(data)) {
		writeError(w, http.StatusBadRequest, "only PNG and JPEG images are supported")
		return
	}

	a, err := h.store.Save(data)
	switch {
	case errors.Is(err, ErrInvalidImage):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		slog.Error("save asset", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save file")
		return
	}
	slog.Info("asset uploaded", "asset", a.ID, "width", a.Width, "height", a.Height)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(UploadResponse{Asset: a, Name: header.Filename})
}

func supported(mime string) bool {
	return mime == "image/png" || mime == "image/jpeg"
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// Serve returns the handler for GET /assets/{id}.png. Asset ids are never
// reused, so responses are cacheable forever.
func (h *Handler) Serve() http.Handler {
	files := http.StripPrefix(URLPrefix, http.FileServer(http.Dir(h.store.Dir())))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := h.store.path(r.URL.Path); err != nil {
			writeError(w, http.StatusNotFound, "asset not found")
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		files.ServeHTTP(w, r)
	})
}
