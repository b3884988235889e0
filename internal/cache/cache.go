// Package cache provides the key-value store used for OAuth state entries
// and cached per-user marketplace views, with in-memory and Redis backends.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/donaldgifford/marketplace-connections/internal/config"
)

// ErrMiss is returned when a key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache is a TTL key-value store.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Take atomically reads and deletes key. At most one caller observes
	// a given value.
	Take(ctx context.Context, key string) ([]byte, error)
	Ping(ctx context.Context) error
	Close() error
}

// New builds the configured cache backend.
func New(ctx context.Context, cfg *config.CacheConfig, log *slog.Logger) (Cache, error) {
	switch cfg.Backend {
	case "redis":
		c := NewRedisCache(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := c.Ping(ctx); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Redis.Addr, err)
		}
		log.Info("using redis cache", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
		return c, nil
	case "memory", "":
		log.Warn("using in-memory cache; OAuth state is not shared across replicas")
		return NewMemoryCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
