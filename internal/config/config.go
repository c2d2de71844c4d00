package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const devJWTSecret = "chave-muito-secreta"

var (
	ErrInvalidTokenTTL       = errors.New("JWT_ACCESS_TOKEN_EXPIRES must be a positive number of seconds")
	ErrUnknownPasswordHasher = errors.New("PASSWORD_HASHER must be argon2id or bcrypt")
	ErrProductionSecret      = errors.New("JWT_SECRET_KEY must be set in production environment")
)

type Config struct {
	Port           string
	Env            string
	LogLevel       string
	DatabaseDSN    string
	JWTSecret      string
	TokenTTL       time.Duration
	PasswordHasher string
	CORSOrigins    []string
}

// Load builds the process configuration from environment variables, falling
// back to development defaults for anything unset.
func Load() (Config, error) {
	cfg := Config{
		Port:           getEnv("PORT", "5000"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DatabaseDSN:    getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/perfil?parseTime=true"),
		JWTSecret:      getEnv("JWT_SECRET_KEY", devJWTSecret),
		PasswordHasher: strings.ToLower(getEnv("PASSWORD_HASHER", "argon2id")),
		CORSOrigins:    splitList(getEnv("CORS_ORIGIN", "*")),
	}

	ttl, err := strconv.Atoi(getEnv("JWT_ACCESS_TOKEN_EXPIRES", "3600"))
	if err != nil || ttl <= 0 {
		return Config{}, fmt.Errorf("%w: %q", ErrInvalidTokenTTL, os.Getenv("JWT_ACCESS_TOKEN_EXPIRES"))
	}
	cfg.TokenTTL = time.Duration(ttl) * time.Second

	switch cfg.PasswordHasher {
	case "argon2id", "bcrypt":
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownPasswordHasher, cfg.PasswordHasher)
	}

	if cfg.IsProduction() && cfg.JWTSecret == devJWTSecret {
		return Config{}, ErrProductionSecret
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with ENV=production.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if v := strings.TrimRight(strings.TrimSpace(p), "/"); v != "" {
			out = append(out, v)
		}
	}
	return out
}
