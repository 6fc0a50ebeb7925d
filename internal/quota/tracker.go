// Package quota enforces per-capability fixed-window rate limits and
// reconstructs window state from the interaction ledger after a restart.
package quota

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/orourkera/getrucky-bot/internal/domain"
	"github.com/orourkera/getrucky-bot/internal/metrics"
)

// Tracker holds one fixed window per capability. A single mutex serializes
// all counter updates so the admit-then-consume invariant holds under
// concurrent callers.
type Tracker struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	windows map[domain.Capability]*window
}

type window struct {
	limit    int
	duration time.Duration
	count    int
	start    time.Time
}

// New creates a tracker for the given window policies. Every policy must
// have a positive limit and window; violations are configuration errors.
func New(policies map[domain.Capability]domain.WindowPolicy, clock clockwork.Clock) (*Tracker, error) {
	if len(policies) == 0 {
		return nil, fmt.Errorf("quota: no window policies configured")
	}
	windows := make(map[domain.Capability]*window, len(policies))
	now := clock.Now()
	for capability, policy := range policies {
		if policy.Limit <= 0 {
			return nil, fmt.Errorf("quota: capability %q has non-positive limit %d", capability, policy.Limit)
		}
		if policy.Window <= 0 {
			return nil, fmt.Errorf("quota: capability %q has non-positive window %s", capability, policy.Window)
		}
		windows[capability] = &window{
			limit:    policy.Limit,
			duration: policy.Window,
			start:    now,
		}
	}
	return &Tracker{clock: clock, windows: windows}, nil
}

// CheckAndReserve reserves cost units of the capability's current window.
// The window is reset-checked first; a denial carries the time remaining
// until the window resets.
func (t *Tracker) CheckAndReserve(capability domain.Capability, cost int) (domain.Admission, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	w, ok := t.windows[capability]
	if !ok {
		return domain.Admission{}, fmt.Errorf("quota: %w: %q", domain.ErrUnknownCapability, capability)
	}

	now := t.clock.Now()
	t.resetIfElapsed(w, now)

	if w.count+cost > w.limit {
		metrics.QuotaDenialsTotal.WithLabelValues(string(capability)).Inc()
		return domain.Admission{
			Admitted:   false,
			RetryAfter: w.start.Add(w.duration).Sub(now),
		}, nil
	}

	w.count += cost
	return domain.Admission{Admitted: true}, nil
}

// Release returns reserved units that were never executed, so a failed or
// abandoned action does not consume budget.
func (t *Tracker) Release(capability domain.Capability, cost int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	w, ok := t.windows[capability]
	if !ok {
		return
	}
	w.count -= cost
	if w.count < 0 {
		w.count = 0
	}
}

// Restore replays the ledger into the windows after a restart. For each
// capability it replays executed records from the last window-length of
// history, recovering the window start from the earliest such record so a
// restart never mints fresh budget. Skips never consumed a unit and are
// ignored. Records from a previous, already-expired window can land in the
// lookback and over-count; the error is on the conservative side.
func (t *Tracker) Restore(ctx context.Context, log domain.InteractionLog) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	for capability, w := range t.windows {
		records, err := log.Query(ctx, capability, now.Add(-w.duration))
		if err != nil {
			return fmt.Errorf("quota: restoring %q: %w", capability, err)
		}

		count := 0
		start := now
		for _, rec := range records {
			if rec.Action == domain.ActionSkipped {
				continue
			}
			if rec.CreatedAt.Before(start) {
				start = rec.CreatedAt
			}
			count++
		}
		if count > w.limit {
			count = w.limit
		}
		w.count = count
		w.start = start
		slog.Debug("Restored quota window",
			"capability", capability, "count", count, "limit", w.limit, "window_start", start)
	}
	return nil
}

// Snapshot reports the remaining budget per capability, sorted by name.
func (t *Tracker) Snapshot() []domain.CapacityStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	statuses := make([]domain.CapacityStatus, 0, len(t.windows))
	for capability, w := range t.windows {
		t.resetIfElapsed(w, now)
		statuses = append(statuses, domain.CapacityStatus{
			Capability: capability,
			Limit:      w.limit,
			Remaining:  w.limit - w.count,
			ResetsIn:   w.start.Add(w.duration).Sub(now),
		})
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Capability < statuses[j].Capability })
	return statuses
}

// resetIfElapsed resets the window when its duration has fully elapsed.
// Caller must hold t.mu.
func (t *Tracker) resetIfElapsed(w *window, now time.Time) {
	if now.Sub(w.start) >= w.duration {
		w.count = 0
		w.start = now
	}
}
