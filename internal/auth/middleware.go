package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

type contextKey string

const BoardIDKey contextKey = "boardID"

// BoardMiddleware requires a token for the {boardId} route variable, taken
// from a Bearer Authorization header or the token query parameter.
func (s *Service) BoardMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := TokenFromRequest(r)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
			return
		}

		boardID := mux.Vars(r)["boardId"]
		if err := s.Authorize(token, boardID); err != nil {
			status := http.StatusUnauthorized
			if errors.Is(err, ErrWrongBoard) {
				status = http.StatusForbidden
			}
			writeJSON(w, status, map[string]string{"error": "invalid token"})
			return
		}

		ctx := context.WithValue(r.Context(), BoardIDKey, boardID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TokenFromRequest extracts a token from the Authorization header or, for
// websocket upgrades and links, the token query parameter.
func TokenFromRequest(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", errors.New("invalid authorization format")
		}
		return parts[1], nil
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, nil
	}
	return "", errors.New("missing token")
}

func BoardIDFromContext(ctx context.Context) string {
	boardID, _ := ctx.Value(BoardIDKey).(string)
	return boardID
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
