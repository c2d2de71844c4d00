// Package router assembles the HTTP surface: middleware chain, CORS and routes.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/perfil-app/perfil-api/internal/handler"
	"github.com/perfil-app/perfil-api/internal/middleware"
)

// Deps are the collaborators the routes are bound to.
type Deps struct {
	Auth        *handler.AuthHandler
	Tokens      middleware.TokenValidator
	CORSOrigins []string
}

// New returns the application's root handler.
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	r.Get("/health", handler.HandleHealth)
	r.Post("/login", d.Auth.HandleLogin)
	r.Post("/form", d.Auth.HandleRegister)

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(d.Tokens))
		r.Get("/api/perfil", d.Auth.HandleProfile)
	})

	return r
}
