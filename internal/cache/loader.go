package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ikkim/storefront-backend/pkg/logger"
	"golang.org/x/sync/singleflight"
)

// Loader fronts a Cache with singleflight so concurrent misses on one key
// hit the database once.
type Loader struct {
	cache Cache
	ttl   time.Duration
	group singleflight.Group
}

func NewLoader(c Cache, ttl time.Duration) *Loader {
	if c == nil {
		c = NewNoopCache()
	}
	return &Loader{cache: c, ttl: ttl}
}

func (l *Loader) Cache() Cache {
	return l.cache
}

// Invalidate drops keys from the underlying cache.
func (l *Loader) Invalidate(ctx context.Context, keys ...string) {
	Invalidate(ctx, l.cache, keys...)
}

// Fetch returns the cached value for key or calls load and stores its
// result. Load errors are returned as-is and never cached. A broken cache
// backend degrades to calling load.
func Fetch[T any](ctx context.Context, l *Loader, key string, load func(context.Context) (*T, error)) (*T, error) {
	if raw, err := l.cache.Get(ctx, key); err == nil {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return &v, nil
		}
		logger.Warn("Discarding undecodable cache entry", map[string]interface{}{"key": key})
	} else if !errors.Is(err, ErrMiss) {
		logger.Warn("Cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}

	v, err, _ := l.group.Do(key, func() (interface{}, error) {
		loaded, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(loaded); err == nil {
			if err := l.cache.Set(ctx, key, raw, l.ttl); err != nil {
				logger.Warn("Cache write failed", map[string]interface{}{
					"key":   key,
					"error": err.Error(),
				})
			}
		}
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	// Callers sharing a flight get the same pointer; hand each a copy.
	out := *(v.(*T))
	return &out, nil
}
