// Package metrics defines the Prometheus instruments exported by the bot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Quota metrics
var (
	// QuotaDenialsTotal counts admission denials by capability.
	QuotaDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quota_denials_total",
			Help: "Quota admission denials by capability",
		},
		[]string{"capability"},
	)

	// QuotaRemaining tracks the remaining budget per capability window.
	QuotaRemaining = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "quota_remaining",
			Help: "Remaining budget in the current window by capability",
		},
		[]string{"capability"},
	)
)

// Interaction ledger metrics
var (
	// InteractionsTotal counts recorded interactions by action and capability.
	InteractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interactions_total",
			Help: "Recorded interactions by action and capability",
		},
		[]string{"action", "capability"},
	)

	// LedgerAppendErrors counts failed ledger writes.
	LedgerAppendErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_append_errors_total",
			Help: "Failed interaction log appends",
		},
	)
)

// Response cache metrics
var (
	// CacheHitsTotal counts generation cache hits.
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gencache_hits_total",
			Help: "Generation cache hits",
		},
	)

	// CacheMissesTotal counts generation cache misses.
	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gencache_misses_total",
			Help: "Generation cache misses",
		},
	)

	// CacheEvictions counts entries removed by the eviction sweep.
	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gencache_evictions_total",
			Help: "Expired generation cache entries evicted",
		},
	)

	// CacheSize tracks the current number of cached entries.
	CacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gencache_entries",
			Help: "Current generation cache entries (including expired)",
		},
	)
)

// Generation metrics
var (
	// GenerationFallbacksTotal counts template fallbacks after generation failure.
	GenerationFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "generation_fallbacks_total",
			Help: "Template fallbacks used after text generation failure",
		},
	)

	// GeneratorBreakerState tracks the generator circuit breaker state
	// (0=closed, 1=half-open, 2=open).
	GeneratorBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "generator_breaker_state",
			Help: "Generator circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)
)

// Scheduler metrics
var (
	// TicksTotal counts scheduler ticks by loop.
	TicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_ticks_total",
			Help: "Scheduler ticks by loop",
		},
		[]string{"loop"},
	)

	// RetryAttemptsTotal counts external call retries by capability.
	RetryAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "External call retries by capability",
		},
		[]string{"capability"},
	)

	// SchedulerState tracks the scheduler run state
	// (0=idle, 1=running, 2=stopping, 3=stopped).
	SchedulerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_state",
			Help: "Scheduler run state (0=idle, 1=running, 2=stopping, 3=stopped)",
		},
	)
)

// ModerationFlagsTotal counts outbound texts blocked by the content filter.
var ModerationFlagsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "moderation_flags_total",
		Help: "Outbound texts blocked by the moderation filter",
	},
)
