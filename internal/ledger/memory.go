package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/orourkera/getrucky-bot/internal/domain"
	"github.com/orourkera/getrucky-bot/internal/metrics"
)

// MemoryLog is an in-memory interaction log. Records are immutable once
// appended; Query and Summarize return copies.
type MemoryLog struct {
	mu      sync.RWMutex
	clock   clockwork.Clock
	records []domain.InteractionRecord
}

func NewMemoryLog(clock clockwork.Clock) *MemoryLog {
	return &MemoryLog{clock: clock}
}

func (l *MemoryLog) Append(_ context.Context, record domain.InteractionRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = l.clock.Now()
	}
	l.records = append(l.records, record)
	metrics.InteractionsTotal.WithLabelValues(string(record.Action), string(record.Capability)).Inc()
	return nil
}

func (l *MemoryLog) Query(_ context.Context, capability domain.Capability, since time.Time) ([]domain.InteractionRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []domain.InteractionRecord
	for _, r := range l.records {
		if r.Capability == capability && !r.CreatedAt.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (l *MemoryLog) Summarize(_ context.Context, since time.Time) (domain.Summary, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	summary := domain.Summary{
		Since:      since,
		ByAction:   make(map[domain.Action]int),
		ByCategory: make(map[string]int),
		ByReason:   make(map[string]int),
		ByCap:      make(map[domain.Capability]int),
	}
	for _, r := range l.records {
		if r.CreatedAt.Before(since) {
			continue
		}
		summary.Total++
		summary.ByAction[r.Action]++
		summary.ByCap[r.Capability]++
		if r.Category != "" {
			summary.ByCategory[r.Category]++
		}
		if r.Reason != "" {
			summary.ByReason[r.Reason]++
		}
	}
	return summary, nil
}
