package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/orourkera/getrucky-bot/internal/domain"
	"github.com/orourkera/getrucky-bot/internal/metrics"
)

const summaryLookback = 7 * 24 * time.Hour

func (s *Server) handleLiveness(c echo.Context) error {
	uptime := s.clock.Now().Sub(s.startTime).Seconds()
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": uptime,
	})
}

func (s *Server) handleReadiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	checks := []struct {
		name string
		p    pinger
	}{
		{"postgres", s.postgres},
		{"redis", s.redis},
	}
	for _, check := range checks {
		if check.p == nil {
			continue
		}
		if err := check.p.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status":       "unhealthy",
				"failed_check": check.name,
				"error":        err.Error(),
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

// statusDocument is the read-only view consumed by the external health
// collaborator.
type statusDocument struct {
	Scheduler string                  `json:"scheduler"`
	Breaker   string                  `json:"generator_breaker,omitempty"`
	Quota     []domain.CapacityStatus `json:"quota"`
	Summary   domain.Summary          `json:"summary"`
}

func (s *Server) handleStatus(c echo.Context) error {
	snapshot := s.quota.Snapshot()
	for _, st := range snapshot {
		metrics.QuotaRemaining.WithLabelValues(string(st.Capability)).Set(float64(st.Remaining))
	}

	summary, err := s.ledger.Summarize(c.Request().Context(), s.clock.Now().Add(-summaryLookback))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	doc := statusDocument{
		Scheduler: s.scheduler.State().String(),
		Quota:     snapshot,
		Summary:   summary,
	}
	if s.breaker != nil {
		doc.Breaker = s.breaker.State()
	}
	return c.JSON(http.StatusOK, doc)
}
