// ABOUTME: Cache interface for raw upstream responses and backend selection.
// ABOUTME: Falls back to the in-process cache when Redis is not configured or unreachable.

package cache

import (
	"context"
	"log/slog"
	"time"
)

const (
	// DefaultTTL is how long an upstream response stays fresh.
	DefaultTTL = 10 * time.Minute
	// DefaultMaxEntries bounds the in-process cache.
	DefaultMaxEntries = 512
	// KeyPrefix namespaces Redis keys.
	KeyPrefix = "course-gateway:upstream:"
)

// Cache stores opaque response bodies by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Config selects and sizes a cache backend.
type Config struct {
	RedisURL   string
	TTL        time.Duration
	MaxEntries int
}

// Open returns a Redis cache when RedisURL is set and reachable, otherwise a Memory cache.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) Cache {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.RedisURL != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		r, err := DialRedis(pingCtx, cfg.RedisURL, KeyPrefix, ttl)
		if err == nil {
			logger.Info("connected to Redis response cache")
			return r
		}
		logger.Warn("Redis not available, using in-memory response cache", "error", err)
	}

	return NewMemory(ttl, cfg.MaxEntries)
}
