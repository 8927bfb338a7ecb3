// Package cache provides the read-through cache used for product, category
// and user lookups. Values are stored as JSON so the redis and in-process
// backends are interchangeable.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

const (
	DriverRedis  = "redis"
	DriverMemory = "memory"
	DriverNone   = "none"
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// New picks a backend from configuration. The redis driver needs a
// connected client.
func New(cfg *config.CacheConfig, client *redis.Client) (Cache, error) {
	switch cfg.Driver {
	case DriverRedis:
		if client == nil {
			return nil, fmt.Errorf("cache driver %q requires a redis client", cfg.Driver)
		}
		return NewRedisCache(client, "storefront:"), nil
	case DriverMemory, "":
		return NewMemoryCache(cfg.Size, cfg.TTL), nil
	case DriverNone:
		return NewNoopCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}

func ProductKey(id uuid.UUID) string { return "product:" + id.String() }

func CategoryKey(id uuid.UUID) string { return "category:" + id.String() }

func UserKey(id uuid.UUID) string { return "user:" + id.String() }

// noopCache never stores anything.
type noopCache struct{}

func NewNoopCache() Cache { return noopCache{} }

func (noopCache) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }

func (noopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (noopCache) Delete(context.Context, ...string) error { return nil }

// Invalidate deletes keys and only logs failures: a stale entry expires
// with its TTL and must not fail the write that triggered it.
func Invalidate(ctx context.Context, c Cache, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.Delete(ctx, keys...); err != nil {
		logger.Warn("Failed to invalidate cache keys", map[string]interface{}{
			"keys":  keys,
			"error": err.Error(),
		})
	}
}
