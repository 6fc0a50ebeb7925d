// Package generator wraps the external text-generation capability in a
// circuit breaker so a flapping AI provider degrades to template fallback
// instead of being hammered on every tick.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/orourkera/getrucky-bot/internal/domain"
	"github.com/orourkera/getrucky-bot/internal/metrics"
)

const (
	breakerInterval     = time.Minute
	breakerOpenTimeout  = 2 * time.Minute
	breakerTripFailures = 5
)

// Breaker is a domain.TextGenerator that short-circuits calls while the
// provider is failing. An open breaker fails immediately, which the response
// cache surfaces as domain.ErrGenerationFailed for template fallback.
type Breaker struct {
	inner domain.TextGenerator
	cb    *gobreaker.CircuitBreaker
}

func NewBreaker(inner domain.TextGenerator) *Breaker {
	settings := gobreaker.Settings{
		Name:     "text-generator",
		Interval: breakerInterval,
		Timeout:  breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTripFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed",
				"component", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.GeneratorBreakerState.Set(stateToFloat(to))
		},
	}

	return &Breaker{inner: inner, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (b *Breaker) GenerateText(ctx context.Context, prompt string) (string, error) {
	result, err := b.cb.Execute(func() (any, error) {
		return b.inner.GenerateText(ctx, prompt)
	})
	if err != nil {
		return "", fmt.Errorf("text generation: %w", err)
	}
	return result.(string), nil
}

// State returns the breaker's current state, for the status surface.
func (b *Breaker) State() string {
	return b.cb.State().String()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
