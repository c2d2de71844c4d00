package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

const maxBodyBytes = 1 << 20 // 1MB

var (
	errBodyTooLarge = errors.New("request body too large")
	errEmptyBody    = errors.New("request body empty")
	errInvalidBody  = errors.New("invalid request body")
)

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return errBodyTooLarge
		case errors.Is(err, io.EOF):
			return errEmptyBody
		default:
			return errInvalidBody
		}
	}
	return nil
}

// writeDecodeError answers a failed decodeJSON. An empty body counts as
// missing fields and gets missingMsg.
func writeDecodeError(w http.ResponseWriter, err error, missingMsg string) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse("Corpo da requisicao muito grande"))
	case errors.Is(err, errEmptyBody):
		writeJSON(w, http.StatusBadRequest, errorResponse(missingMsg))
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse("Corpo da requisicao invalido"))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorResponse(msg string) map[string]string {
	return map[string]string{"message": msg}
}

// NotFound answers unmatched routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse("Recurso nao encontrado"))
}

// MethodNotAllowed answers known routes called with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse("Metodo nao permitido"))
}
