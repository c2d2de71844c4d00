package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/perfil-app/perfil-api/internal/crypto"
)

func protected(tokens TokenValidator) http.Handler {
	return JWTAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]int64{"id": id})
	}))
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body["message"]
}

func TestJWTAuth_ValidToken(t *testing.T) {
	tokens := crypto.NewTokenManager("test-secret", time.Hour)
	token, _, err := tokens.Issue(42)
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	for _, header := range []string{"Bearer " + token, "bearer " + token, "  Bearer   " + token + " "} {
		req := httptest.NewRequest(http.MethodGet, "/api/perfil", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()

		protected(tokens).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("header %q: status = %d, want 200", header, rec.Code)
		}
		var body map[string]int64
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["id"] != 42 {
			t.Errorf("id = %d, want 42", body["id"])
		}
	}
}

func TestJWTAuth_FailuresAreUniform(t *testing.T) {
	now := time.Now()
	tokens := crypto.NewTokenManager("test-secret", time.Minute, crypto.WithClock(func() time.Time { return now }))
	token, _, err := tokens.Issue(42)
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}
	expired := crypto.NewTokenManager("test-secret", time.Minute,
		crypto.WithClock(func() time.Time { return now.Add(time.Hour) }))

	tests := []struct {
		name      string
		validator TokenValidator
		header    string
	}{
		{"no header", tokens, ""},
		{"basic scheme", tokens, "Basic dXNlcjpwYXNz"},
		{"bearer without token", tokens, "Bearer "},
		{"malformed", tokens, "Bearer not.a.jwt"},
		{"wrong secret", crypto.NewTokenManager("other", time.Minute), "Bearer " + token},
		{"expired", expired, "Bearer " + token},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/perfil", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			protected(tt.validator).ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			if msg := decodeMessage(t, rec); msg != UnauthorizedMessage {
				t.Errorf("message = %q, want %q", msg, UnauthorizedMessage)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"BEARER abc", "abc"},
		{"Bearerabc", ""},
		{"Token abc", ""},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", tt.header)
		if got := bearerToken(req); got != tt.want {
			t.Errorf("bearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if msg := decodeMessage(t, rec); msg != InternalErrorMessage {
		t.Errorf("message = %q, want %q", msg, InternalErrorMessage)
	}
}

func TestLoggerPassesThrough(t *testing.T) {
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}
}
