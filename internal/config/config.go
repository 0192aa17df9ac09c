// internal/config/config.go
//
// Process configuration, read from the environment (after main loads .env).
//
// Every field has a default except the secrets and optional integrations, so
// `go run .` works on a fresh checkout with a local SQLite file.

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// DevJWTSecret is used when JWT_SECRET is unset. Never rely on it in production.
const DevJWTSecret = "dev_secret_change_me"

// Config is the full runtime configuration.
type Config struct {
	Port           string        `env:"PORT"               envDefault:"5175"`
	LogLevel       string        `env:"LOG_LEVEL"          envDefault:"info"`
	StoreBackend   string        `env:"STORE_BACKEND"      envDefault:"sqlite"`
	DBPath         string        `env:"DB_PATH"            envDefault:"./data/wordl.db"`
	RedisURL       string        `env:"REDIS_URL"`
	JWTSecret      string        `env:"JWT_SECRET"`
	JWTExpiresDays int           `env:"JWT_EXPIRES_DAYS"   envDefault:"14"`
	AnswersFile    string        `env:"WORDS_ANSWERS_FILE"`
	AllowedFile    string        `env:"WORDS_ALLOWED_FILE"`
	NotifyWebhook  string        `env:"NOTIFY_WEBHOOK_URL"`
	ClientOrigin   string        `env:"CLIENT_ORIGIN"      envDefault:"http://localhost:5173"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"    envDefault:"10s"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = DevJWTSecret
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks combinations env tags cannot express.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendSQLite:
		if c.DBPath == "" {
			return errors.New("config: DB_PATH is required for the sqlite backend")
		}
	case BackendMemory:
	case BackendRedis:
		if c.RedisURL == "" {
			return errors.New("config: REDIS_URL is required for the redis backend")
		}
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.JWTExpiresDays <= 0 {
		return fmt.Errorf("config: JWT_EXPIRES_DAYS must be positive, got %d", c.JWTExpiresDays)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config: REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return ":" + c.Port }

// TokenTTL is how long issued player tokens stay valid.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpiresDays) * 24 * time.Hour
}
