package store

import (
	"context"
	"fmt"
	"log"

	"github.com/jeanpaul/tonepad/internal/config"
)

// Open builds the configured backend wrapped in a Durable.
func Open(ctx context.Context, cfg config.StoreConfig, logger *log.Logger) (*Durable, error) {
	var (
		backend Backend
		err     error
	)

	switch cfg.Backend {
	case config.StoreFile:
		backend, err = NewFileBackend(cfg.Path)
	case config.StoreRedis:
		backend, err = NewRedisBackend(ctx, cfg.RedisURL, cfg.Prefix)
	case config.StorePostgres:
		backend, err = NewPostgresBackend(ctx, cfg.DatabaseURL, cfg.Prefix)
	case config.StoreMemory:
		backend = NewMemoryBackend()
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Printf("store: using %s backend", cfg.Backend)
	}
	return NewDurable(backend, logger, cfg.Timeout), nil
}
