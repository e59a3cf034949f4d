package readingcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"horoscope/internal/config"
)

// ErrMiss is returned by Backend.Get when the key is absent or expired.
var ErrMiss = errors.New("readingcache: miss")

// Backend is the key/value store readings are cached in. Patterns use
// Redis glob syntax (*, ?, [...]).
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) (int, error)
	Keys(ctx context.Context, pattern string) ([]string, error)
	Ping(ctx context.Context) error
	Info(ctx context.Context) (BackendInfo, error)
	Close() error
}

// BackendInfo is what the backend reports about itself for health checks.
type BackendInfo struct {
	Driver     string `json:"driver"`
	Keys       int64  `json:"keys"`
	UsedMemory string `json:"usedMemory,omitempty"`
}

// NewBackend builds the backend selected by cfg.Driver.
func NewBackend(ctx context.Context, cfg config.CacheConfig) (Backend, error) {
	switch cfg.Driver {
	case "redis":
		return NewRedis(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.Prefix,
		})
	case "memory", "":
		return NewMemory(cfg.TTL), nil
	default:
		return nil, fmt.Errorf("readingcache: unknown driver %q", cfg.Driver)
	}
}
