package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// InternalErrorMessage is returned for any fault that reaches the boundary.
const InternalErrorMessage = "Erro interno do servidor"

// Recover turns a panic into a 500 JSON response.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			slog.ErrorContext(r.Context(), "panic recovered",
				"method", r.Method,
				"path", r.URL.Path,
				"panic", rvr,
				"stack", string(debug.Stack()),
			)
			writeJSONError(w, http.StatusInternalServerError, InternalErrorMessage)
		}()

		next.ServeHTTP(w, r)
	})
}
