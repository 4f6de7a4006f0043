// Package scheduler keeps the incident cache warm on a cron schedule, so
// chat replies served right after a quiet stretch still come from a fresh
// snapshot instead of waiting on the upstream feed.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/opsline/opsline/internal/incident"
)

var warmCronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Warmer is the slice of the cache the scheduler drives.
type Warmer interface {
	GetAll(ctx context.Context) []incident.Record
}

type Service struct {
	cache    Warmer
	schedule cron.Schedule
	expr     string
	logger   *slog.Logger
	now      func() time.Time
}

// New parses the cron expression up front so a bad schedule fails at
// startup, not at 3am.
func New(cache Warmer, cronExpr string, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cronExpr = strings.Join(strings.Fields(strings.TrimSpace(cronExpr)), " ")
	if cronExpr == "" {
		cronExpr = "*/4 * * * *"
	}
	schedule, err := warmCronParser.Parse(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("parse warm schedule %q: %w", cronExpr, err)
	}
	return &Service{
		cache:    cache,
		schedule: schedule,
		expr:     cronExpr,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Start warms the cache once immediately, then on every scheduled tick until
// the context is cancelled.
func (s *Service) Start(ctx context.Context) error {
	if s.cache == nil {
		<-ctx.Done()
		return nil
	}
	s.logger.Info("cache warm scheduler started", "schedule", s.expr)
	s.warm(ctx)
	for {
		next := s.schedule.Next(s.now())
		wait := time.Until(next)
		if wait < time.Second {
			wait = time.Second
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("cache warm scheduler stopped")
			return nil
		case <-timer.C:
			s.warm(ctx)
		}
	}
}

func (s *Service) warm(ctx context.Context) {
	started := s.now()
	records := s.cache.GetAll(ctx)
	s.logger.Debug("cache warmed", "records", len(records), "took", time.Since(started).String())
}
