package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Run performs the initial load, retrying with exponential backoff until it
// succeeds or ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	// Start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		_, err := s.Reload(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Error("initial dataset load failed", "error", err, "retry_in", backoff)
		if !sleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
}

// StartReloader reloads the dataset on a cron schedule (standard five-field
// syntax or descriptors such as "@hourly"). A failed reload keeps the previous
// dataset. Stop the returned scheduler on shutdown.
func (s *Service) StartReloader(ctx context.Context, schedule string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if _, err := s.Reload(ctx); err != nil {
			s.logger.Error("scheduled reload failed, keeping previous dataset", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("parse reload schedule %q: %w", schedule, err)
	}
	c.Start()
	s.logger.Info("dataset reloader started", "schedule", schedule)
	return c, nil
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
