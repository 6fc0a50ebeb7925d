package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orourkera/getrucky-bot/internal/domain"
	"github.com/orourkera/getrucky-bot/internal/metrics"
)

// PostgresLog is the durable interaction log backed by a single append-only
// table. No update or delete path exists; retention is handled by external
// backup tooling.
type PostgresLog struct {
	pool *pgxpool.Pool
}

func NewPostgresLog(pool *pgxpool.Pool) *PostgresLog {
	return &PostgresLog{pool: pool}
}

// Connect opens a pgx pool and verifies connectivity.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Database connected", "min_conns", poolCfg.MinConns, "max_conns", poolCfg.MaxConns)
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS interactions (
    id               UUID PRIMARY KEY,
    source_id        TEXT NOT NULL DEFAULT '',
    capability       TEXT NOT NULL,
    category         TEXT NOT NULL DEFAULT '',
    action           TEXT NOT NULL,
    reason           TEXT NOT NULL DEFAULT '',
    polarity         DOUBLE PRECISION NOT NULL DEFAULT 0,
    subjectivity     DOUBLE PRECISION NOT NULL DEFAULT 0,
    is_question      BOOLEAN NOT NULL DEFAULT FALSE,
    mentions_keyword BOOLEAN NOT NULL DEFAULT FALSE,
    has_hashtag      BOOLEAN NOT NULL DEFAULT FALSE,
    created_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_interactions_capability_created
    ON interactions (capability, created_at);
CREATE INDEX IF NOT EXISTS idx_interactions_created
    ON interactions (created_at);
`

// Migrate creates the interactions table and its indexes if missing.
func (l *PostgresLog) Migrate(ctx context.Context) error {
	if _, err := l.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate interactions table: %w", err)
	}
	return nil
}

func (l *PostgresLog) Append(ctx context.Context, record domain.InteractionRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err := l.pool.Exec(ctx, `
		INSERT INTO interactions
			(id, source_id, capability, category, action, reason,
			 polarity, subjectivity, is_question, mentions_keyword, has_hashtag, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		record.ID, record.SourceID, string(record.Capability), record.Category,
		string(record.Action), record.Reason, record.Polarity, record.Subjectivity,
		record.IsQuestion, record.MentionsKeyword, record.HasHashtag, record.CreatedAt,
	)
	if err != nil {
		metrics.LedgerAppendErrors.Inc()
		return fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}

	metrics.InteractionsTotal.WithLabelValues(string(record.Action), string(record.Capability)).Inc()
	return nil
}

func (l *PostgresLog) Query(ctx context.Context, capability domain.Capability, since time.Time) ([]domain.InteractionRecord, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT id, source_id, capability, category, action, reason,
		       polarity, subjectivity, is_question, mentions_keyword, has_hashtag, created_at
		FROM interactions
		WHERE capability = $1 AND created_at >= $2
		ORDER BY created_at`,
		string(capability), since,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer rows.Close()

	var records []domain.InteractionRecord
	for rows.Next() {
		var r domain.InteractionRecord
		var capability, action string
		if err := rows.Scan(&r.ID, &r.SourceID, &capability, &r.Category, &action, &r.Reason,
			&r.Polarity, &r.Subjectivity, &r.IsQuestion, &r.MentionsKeyword, &r.HasHashtag, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		r.Capability = domain.Capability(capability)
		r.Action = domain.Action(action)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read interactions: %w", err)
	}
	return records, nil
}

func (l *PostgresLog) Summarize(ctx context.Context, since time.Time) (domain.Summary, error) {
	summary := domain.Summary{
		Since:      since,
		ByAction:   make(map[domain.Action]int),
		ByCategory: make(map[string]int),
		ByReason:   make(map[string]int),
		ByCap:      make(map[domain.Capability]int),
	}

	rows, err := l.pool.Query(ctx, `
		SELECT action, capability, category, reason, COUNT(*)
		FROM interactions
		WHERE created_at >= $1
		GROUP BY action, capability, category, reason`,
		since,
	)
	if err != nil {
		return summary, fmt.Errorf("failed to summarize interactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var action, capability, category, reason string
		var count int
		if err := rows.Scan(&action, &capability, &category, &reason, &count); err != nil {
			return summary, fmt.Errorf("failed to scan summary row: %w", err)
		}
		summary.Total += count
		summary.ByAction[domain.Action(action)] += count
		summary.ByCap[domain.Capability(capability)] += count
		if category != "" {
			summary.ByCategory[category] += count
		}
		if reason != "" {
			summary.ByReason[reason] += count
		}
	}
	if err := rows.Err(); err != nil {
		return summary, fmt.Errorf("failed to read summary rows: %w", err)
	}
	return summary, nil
}
