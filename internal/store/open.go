package store

import (
	"context"
	"fmt"

	"github.com/quantumnonsense/suddendice/internal/config"
)

// Open builds the StateStore selected by the configuration.
func Open(ctx context.Context, cfg config.Config) (StateStore, error) {
	switch cfg.Store {
	case "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(cfg.StatePath), nil
	case "sqlite":
		return NewSQLiteStore(ctx, cfg.SQLitePath)
	case "redis":
		return NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case "postgres":
		return NewPostgresStore(ctx, cfg.PostgresDSN)
	}
	return nil, fmt.Errorf("store: unknown backend %q", cfg.Store)
}
