package delegation

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper drives SweepExpired on a fixed interval. It runs decoupled from
// request handling; overlapping with in-flight creation or revocation is safe
// because the sweep is one conditional UPDATE.
type Sweeper struct {
	service  *Service
	interval time.Duration
	logger   *slog.Logger
}

func NewSweeper(service *Service, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		service:  service,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled. The first sweep happens immediately so a
// restart does not leave overdue rows waiting a full interval.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("delegation sweeper started", "interval", s.interval.String())

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("delegation sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	result, err := s.service.SweepExpired(ctx)
	if err != nil {
		s.logger.Error("delegation sweep failed", "error", err)
		return
	}
	if result.ExpiredCount > 0 {
		s.logger.Info("delegation sweep expired rows",
			"expired_count", result.ExpiredCount,
			"notified_users", len(result.NotifiedUsers))
	}
}
