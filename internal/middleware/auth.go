package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/perfil-app/perfil-api/internal/crypto"
)

type contextKey string

const userIDKey contextKey = "userID"

// UnauthorizedMessage is the single client-facing message for every token failure.
const UnauthorizedMessage = "Token invalido ou expirado"

// TokenValidator resolves a raw session token to a user id.
type TokenValidator interface {
	Validate(raw string) (int64, error)
}

// JWTAuth returns middleware that validates a Bearer token from the Authorization header.
// Missing, expired and invalid tokens all get the same 401 response; only the log tells them apart.
func JWTAuth(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := tokens.Validate(bearerToken(r))
			if err != nil {
				logTokenFailure(r, err)
				writeJSONError(w, http.StatusUnauthorized, UnauthorizedMessage)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext extracts the authenticated user ID from the request context.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// bearerToken returns the credential of an "Authorization: Bearer <token>"
// header, or "" when the header is absent or uses another scheme.
func bearerToken(r *http.Request) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func logTokenFailure(r *http.Request, err error) {
	attrs := []any{"method", r.Method, "path", r.URL.Path, "reason", err.Error()}
	switch {
	case errors.Is(err, crypto.ErrTokenMissing):
		slog.InfoContext(r.Context(), "authorization token missing", attrs...)
	case errors.Is(err, crypto.ErrTokenExpired):
		slog.InfoContext(r.Context(), "authorization token expired", attrs...)
	default:
		slog.WarnContext(r.Context(), "authorization token rejected", attrs...)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
