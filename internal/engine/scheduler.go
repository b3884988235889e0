package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultRefreshInterval is how often the batch token refresh runs.
const DefaultRefreshInterval = 2 * time.Hour

// Scheduler runs the batch token refresh periodically.
type Scheduler struct {
	cron   *cron.Cron
	engine *Engine
	log    *slog.Logger
}

// NewScheduler creates a Scheduler that refreshes expiring tokens every
// interval. A non-positive interval uses DefaultRefreshInterval.
func NewScheduler(
	eng *Engine,
	interval time.Duration,
	log *slog.Logger,
) (*Scheduler, error) {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}

	c := cron.New()

	s := &Scheduler{
		cron:   c,
		engine: eng,
		log:    log,
	}

	if _, err := c.AddFunc(
		"@every "+interval.String(),
		s.runTokenRefresh,
	); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins running scheduled tasks.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started")
	s.cron.Start()
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Scheduler) runTokenRefresh() {
	ctx := context.Background()
	s.log.Info("scheduled token refresh starting")
	if _, err := s.engine.RefreshExpiringTokens(ctx); err != nil {
		s.log.Error("scheduled token refresh failed", "error", err)
	}
}
