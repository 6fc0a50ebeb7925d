package gencache

import (
	"context"
	"time"
)

// Store abstracts cache entry storage.
// The in-memory implementation is used for single-instance mode.
// The Redis implementation shares the cache across instances and survives
// process restarts.
type Store interface {
	// Get returns the cached text for the key, or found=false when the key
	// is absent or expired.
	Get(ctx context.Context, key string) (text string, found bool, err error)
	// Set stores text under the key with the given TTL.
	Set(ctx context.Context, key, text string, ttl time.Duration) error
	// Delete removes the key if present.
	Delete(ctx context.Context, key string) error
}
