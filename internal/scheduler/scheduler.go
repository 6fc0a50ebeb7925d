package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/orourkera/getrucky-bot/internal/content"
	"github.com/orourkera/getrucky-bot/internal/domain"
	"github.com/orourkera/getrucky-bot/internal/gencache"
	"github.com/orourkera/getrucky-bot/internal/metrics"
	"github.com/orourkera/getrucky-bot/internal/platform/correlation"
	"github.com/orourkera/getrucky-bot/internal/platform/retry"
	"github.com/orourkera/getrucky-bot/internal/policy"
	"github.com/orourkera/getrucky-bot/internal/sentiment"
)

// State is the scheduler's run state.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Options holds the scheduler's cadences and call policy.
type Options struct {
	BotHandle string

	PostInterval        time.Duration
	MentionPollInterval time.Duration
	SweepInterval       time.Duration

	CallTimeout      time.Duration
	RetryAttempts    int
	BackoffBase      time.Duration
	RateLimitBackoff time.Duration

	SearchTerms   []string
	MinEngagement int
}

// Deps bundles the components the scheduler orchestrates.
type Deps struct {
	Clock      clockwork.Clock
	Quota      domain.QuotaTracker
	Cache      *gencache.Cache
	Selector   *content.Selector
	Prompts    *content.Prompts
	Templates  *content.Templates
	Filter     *content.Filter
	Classifier *sentiment.Classifier
	Policy     *policy.Engine
	Social     domain.SocialClient
	Generator  domain.TextGenerator
	Ledger     domain.InteractionLog
	Rand       *rand.Rand
}

// Scheduler runs the three tick loops against the injected components.
type Scheduler struct {
	deps Deps
	opts Options

	state  atomic.Int32
	cancel context.CancelFunc
	wg     sync.WaitGroup

	fatalCh chan error

	mu      sync.Mutex
	sinceID string
}

func New(deps Deps, opts Options) *Scheduler {
	return &Scheduler{
		deps:    deps,
		opts:    opts,
		fatalCh: make(chan error, 1),
	}
}

// Start launches the three loops. It is an error to start a scheduler that
// is not idle.
func (s *Scheduler) Start() error {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return fmt.Errorf("scheduler: cannot start from state %s", s.State())
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	metrics.SchedulerState.Set(float64(StateRunning))

	s.wg.Add(3)
	go s.loop(ctx, "post", s.opts.PostInterval, s.postTick)
	go s.loop(ctx, "mentions", s.opts.MentionPollInterval, s.mentionTick)
	go s.loop(ctx, "sweep", s.opts.SweepInterval, s.sweepTick)

	slog.Info("Scheduler started",
		"post_interval", s.opts.PostInterval,
		"mention_poll_interval", s.opts.MentionPollInterval,
		"sweep_interval", s.opts.SweepInterval,
	)
	return nil
}

// Stop cancels the loops, waits for the in-flight tick to finish its current
// unit of work, and transitions to Stopped. Safe to call once per Start.
func (s *Scheduler) Stop() {
	if !s.state.CompareAndSwap(int32(StateRunning), int32(StateStopping)) {
		return
	}
	metrics.SchedulerState.Set(float64(StateStopping))
	s.cancel()
	s.wg.Wait()
	s.state.Store(int32(StateStopped))
	metrics.SchedulerState.Set(float64(StateStopped))
	slog.Info("Scheduler stopped")
}

// State reports the current run state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Fatal delivers the first unrecoverable error (ledger storage failure).
// Receiving on it lets the process stop before quota accounting drifts.
func (s *Scheduler) Fatal() <-chan error {
	return s.fatalCh
}

func (s *Scheduler) loop(ctx context.Context, name string, interval time.Duration, tick func(context.Context)) {
	defer s.wg.Done()

	ticker := s.deps.Clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			metrics.TicksTotal.WithLabelValues(name).Inc()
			tick(correlation.WithID(ctx, correlation.NewID()))
		}
	}
}

// record appends to the ledger on a detached context so a shutdown mid-tick
// still commits the outcome. A storage failure is fatal: losing the audit
// trail corrupts quota recovery.
func (s *Scheduler) record(ctx context.Context, rec domain.InteractionRecord) {
	if err := s.deps.Ledger.Append(context.WithoutCancel(ctx), rec); err != nil {
		slog.ErrorContext(ctx, "Interaction log append failed", "error", err, "action", rec.Action)
		select {
		case s.fatalCh <- err:
		default:
		}
		if s.cancel != nil {
			s.cancel()
		}
	}
}

// reserve checks quota admission, recording a skip on denial.
func (s *Scheduler) reserve(ctx context.Context, capability domain.Capability, sourceID string) bool {
	adm, err := s.deps.Quota.CheckAndReserve(capability, 1)
	if err != nil {
		slog.ErrorContext(ctx, "Quota check failed", "capability", capability, "error", err)
		return false
	}
	if !adm.Admitted {
		slog.InfoContext(ctx, "Quota exhausted, skipping",
			"capability", capability, "retry_after", adm.RetryAfter)
		s.record(ctx, domain.InteractionRecord{
			SourceID:   sourceID,
			Capability: capability,
			Action:     domain.ActionSkipped,
			Reason:     domain.ReasonQuotaExhausted,
			CreatedAt:  s.deps.Clock.Now(),
		})
		return false
	}
	return true
}

func (s *Scheduler) retryPolicy(capability domain.Capability) retry.Policy {
	return retry.Policy{
		MaxAttempts:      s.opts.RetryAttempts,
		InitialBackoff:   s.opts.BackoffBase,
		RateLimitBackoff: s.opts.RateLimitBackoff,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			metrics.RetryAttemptsTotal.WithLabelValues(string(capability)).Inc()
			slog.Warn("Retrying external call",
				"capability", capability, "attempt", attempt, "backoff", backoff, "error", err)
		},
	}
}

// call runs one external capability call with per-attempt timeout and
// retry/backoff. The per-attempt context is detached from the loop context
// so a shutdown lets the in-flight attempt finish.
func (s *Scheduler) call(ctx context.Context, capability domain.Capability, op func(context.Context) (string, error)) (string, error) {
	return retry.Do(ctx, s.retryPolicy(capability), classifyPlatform, func() (string, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.CallTimeout)
		defer cancel()
		return op(callCtx)
	})
}

func (s *Scheduler) callVoid(ctx context.Context, capability domain.Capability, op func(context.Context) error) error {
	_, err := s.call(ctx, capability, func(callCtx context.Context) (string, error) {
		return "", op(callCtx)
	})
	return err
}

func classifyPlatform(err error) retry.Action {
	switch {
	case errors.Is(err, domain.ErrRejected):
		return retry.Stop
	case errors.Is(err, domain.ErrRateLimited):
		return retry.After
	default:
		return retry.Retry
	}
}

// skipReason maps a terminal call error to the recorded skip reason.
func skipReason(err error) string {
	if errors.Is(err, domain.ErrRejected) {
		return domain.ReasonRejected
	}
	return domain.ReasonProviderError
}

func (s *Scheduler) lastSeenID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sinceID
}

func (s *Scheduler) markSeen(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinceID = id
}
