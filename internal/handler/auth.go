package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/perfil-app/perfil-api/internal/middleware"
	"github.com/perfil-app/perfil-api/internal/model"
	"github.com/perfil-app/perfil-api/internal/service"
)

const (
	msgRegisterRequired = "Nome, email e senha sao obrigatorios"
	msgLoginRequired    = "Email e senha sao obrigatorios"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// HandleRegister handles POST /form requests.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err, msgRegisterRequired)
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingRegisterFields):
			writeJSON(w, http.StatusBadRequest, errorResponse(msgRegisterRequired))
		case errors.Is(err, service.ErrPasswordTooShort):
			writeJSON(w, http.StatusBadRequest, errorResponse("Senha deve ter pelo menos 6 caracteres"))
		case errors.Is(err, service.ErrEmailTaken):
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse("Email ja registrado"))
		default:
			slog.ErrorContext(r.Context(), "register failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse("Erro ao criar usuario"))
		}
		return
	}

	slog.InfoContext(r.Context(), "user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, model.RegisterResponse{
		Message: "Usuario criado com sucesso",
		User:    user,
	})
}

// HandleLogin handles POST /login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err, msgLoginRequired)
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingLoginFields):
			writeJSON(w, http.StatusBadRequest, errorResponse(msgLoginRequired))
		case errors.Is(err, service.ErrInvalidCredentials):
			writeJSON(w, http.StatusUnauthorized, errorResponse("Email ou senha incorretos."))
		default:
			slog.ErrorContext(r.Context(), "login failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse(middleware.InternalErrorMessage))
		}
		return
	}

	slog.InfoContext(r.Context(), "user logged in", "user_id", resp.User.ID, "expires_at", resp.ExpiresAt)
	writeJSON(w, http.StatusOK, resp)
}

// HandleProfile handles GET /api/perfil requests.
func (h *AuthHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse(middleware.UnauthorizedMessage))
		return
	}
	slog.DebugContext(r.Context(), "profile requested", "user_id", userID)

	user, err := h.service.Profile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse("Usuario nao encontrado"))
			return
		}
		slog.ErrorContext(r.Context(), "profile lookup failed", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("Erro ao obter perfil"))
		return
	}

	writeJSON(w, http.StatusOK, user)
}
