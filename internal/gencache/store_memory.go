package gencache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/orourkera/getrucky-bot/internal/metrics"
)

type memoryEntry struct {
	text      string
	expiresAt time.Time
}

// MemoryStore is an in-memory TTL store. Expired entries read as misses and
// are physically removed by the periodic eviction sweep.
type MemoryStore struct {
	mu      sync.RWMutex
	clock   clockwork.Clock
	entries map[string]*memoryEntry
}

func NewMemoryStore(clock clockwork.Clock) *MemoryStore {
	return &MemoryStore{
		clock:   clock,
		entries: make(map[string]*memoryEntry),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	// Expired entries are logically absent. Physical removal happens in the
	// eviction sweep (read lock only here).
	if !s.clock.Now().Before(entry.expiresAt) {
		return "", false, nil
	}
	return entry.text, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key, text string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = &memoryEntry{
		text:      text,
		expiresAt: s.clock.Now().Add(ttl),
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Size returns the current number of entries, including expired ones not
// yet evicted.
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// EvictExpired removes all expired entries and returns the count evicted.
func (s *MemoryStore) EvictExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	evicted := 0
	for key, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, key)
			evicted++
		}
	}
	return evicted
}

// StartEvictionTimer runs a periodic eviction sweep in a background
// goroutine. The returned stop function cleans up the goroutine.
func (s *MemoryStore) StartEvictionTimer(interval time.Duration) func() {
	ticker := s.clock.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.Chan():
				evicted := s.EvictExpired()
				if evicted > 0 {
					slog.Debug("Evicted expired cache entries", "count", evicted, "remaining", s.Size())
					metrics.CacheEvictions.Add(float64(evicted))
				}
				metrics.CacheSize.Set(float64(s.Size()))
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		close(done)
	}
}
