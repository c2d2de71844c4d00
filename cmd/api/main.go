package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/perfil-app/perfil-api/internal/config"
	"github.com/perfil-app/perfil-api/internal/crypto"
	"github.com/perfil-app/perfil-api/internal/handler"
	"github.com/perfil-app/perfil-api/internal/logging"
	"github.com/perfil-app/perfil-api/internal/repository"
	"github.com/perfil-app/perfil-api/internal/router"
	"github.com/perfil-app/perfil-api/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logging.New(os.Stdout, cfg.Env, cfg.LogLevel))

	hasher, err := crypto.NewHasher(cfg.PasswordHasher)
	if err != nil {
		slog.Error("password hasher", "error", err)
		os.Exit(1)
	}
	tokens := crypto.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	store, closer, err := openStore(context.Background(), cfg.DatabaseDSN)
	if err != nil {
		slog.Error("store unavailable", "error", err)
		os.Exit(1)
	}
	defer closer.Close()

	authService := service.NewAuthService(store, hasher, tokens)
	authHandler := handler.NewAuthHandler(authService)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: router.New(router.Deps{
			Auth:        authHandler,
			Tokens:      tokens,
			CORSOrigins: cfg.CORSOrigins,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "hasher", cfg.PasswordHasher)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		slog.Error("server error", "error", err)
		closer.Close()
		os.Exit(1)
	case <-quit:
	}

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// openStore returns the in-memory store for memory:// and a migrated SQL
// store for anything else.
func openStore(ctx context.Context, dsn string) (service.UserStore, io.Closer, error) {
	if dsn == repository.MemoryDSN {
		slog.Warn("using in-memory user store, data is lost on restart")
		repo := repository.NewMemoryUserRepository()
		return repo, repo, nil
	}

	db, dialect, err := repository.NewDB(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	if err := repository.Migrate(ctx, db, dialect); err != nil {
		db.Close()
		return nil, nil, err
	}
	return repository.NewUserRepository(db, dialect), db, nil
}
