package gencache

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/orourkera/getrucky-bot/internal/domain"
	"github.com/orourkera/getrucky-bot/internal/metrics"
)

// GenerateFunc produces text for a prompt, typically by calling the external
// AI provider.
type GenerateFunc func(ctx context.Context) (string, error)

// Cache wraps a Store with get-or-generate semantics. Concurrent misses for
// the same key share a single generation call; failures are never cached.
type Cache struct {
	store Store
	ttl   time.Duration
	group singleflight.Group
}

// New creates a cache with the given default TTL.
func New(store Store, ttl time.Duration) *Cache {
	return &Cache{store: store, ttl: ttl}
}

// GetOrGenerate returns the cached text for key, or invokes generate on a
// miss and caches the result. A ttl of zero or less means the cache's
// default lifetime. The cached return value reports whether the text came
// from the cache. A generation failure is wrapped as
// domain.ErrGenerationFailed so callers can fall back to a static template.
func (c *Cache) GetOrGenerate(ctx context.Context, key string, ttl time.Duration, generate GenerateFunc) (text string, cached bool, err error) {
	if ttl <= 0 {
		ttl = c.ttl
	}

	if text, found, err := c.store.Get(ctx, key); err == nil && found {
		metrics.CacheHitsTotal.Inc()
		return text, true, nil
	}
	metrics.CacheMissesTotal.Inc()

	result, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check under the flight: another caller may have populated the
		// entry between our miss and acquiring the flight.
		if text, found, err := c.store.Get(ctx, key); err == nil && found {
			return text, nil
		}

		generated, err := generate(ctx)
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
		}
		if setErr := c.store.Set(ctx, key, generated, ttl); setErr != nil {
			// A store failure must not discard a usable generation.
			return generated, nil
		}
		return generated, nil
	})
	if err != nil {
		return "", false, err
	}
	return result.(string), false, nil
}

// Invalidate removes the entry for key.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

// TTL returns the cache's default entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}
