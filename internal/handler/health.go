package handler

import (
	"net/http"

	"github.com/perfil-app/perfil-api/internal/model"
)

// HandleHealth handles GET /health requests.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.HealthResponse{
		Status:  "ok",
		Message: "Backend rodando",
	})
}
