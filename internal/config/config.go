// Package config loads engine-host configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds everything the session host needs. All knobs come from
// environment variables; a .env file is honored when present.
type Config struct {
	// Store selects the persistence backend for learning state:
	// memory, file, sqlite, redis or postgres.
	Store string `env:"SUDDENDICE_STORE" envDefault:"file"`

	StatePath  string `env:"SUDDENDICE_STATE_PATH" envDefault:"suddendice-state.json"`
	SQLitePath string `env:"SUDDENDICE_SQLITE_PATH" envDefault:"suddendice.db"`

	RedisAddr     string `env:"SUDDENDICE_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"SUDDENDICE_REDIS_PASSWORD"`
	RedisDB       int    `env:"SUDDENDICE_REDIS_DB" envDefault:"0"`

	PostgresDSN string `env:"SUDDENDICE_POSTGRES_DSN"`

	LogLevel string `env:"SUDDENDICE_LOG_LEVEL" envDefault:"info"`

	// StartingScore is the per-side match stake; 0 uses the engine default.
	StartingScore int `env:"SUDDENDICE_STARTING_SCORE" envDefault:"0"`

	// Seed fixes the agents' RNG for reproducible matches; 0 = derive per
	// session.
	Seed int64 `env:"SUDDENDICE_SEED" envDefault:"0"`
}

// Load reads .env (if any) and parses the environment.
func Load() (Config, error) {
	// Missing .env is the normal production case.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}
	switch cfg.Store {
	case "memory", "file", "sqlite", "redis", "postgres":
	default:
		return Config{}, fmt.Errorf("config: unknown store backend %q", cfg.Store)
	}
	return cfg, nil
}
