// Package jobs runs periodic maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

type SessionPurger interface {
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

// SessionSweeper deletes expired sessions. It implements cron.Job.
type SessionSweeper struct {
	purger  SessionPurger
	logger  *slog.Logger
	timeout time.Duration
}

func NewSessionSweeper(purger SessionPurger, logger *slog.Logger, timeout time.Duration) *SessionSweeper {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SessionSweeper{
		purger:  purger,
		logger:  logger.With("component", "session_sweeper"),
		timeout: timeout,
	}
}

func (s *SessionSweeper) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.purger.DeleteExpiredSessions(ctx)
	if err != nil {
		s.logger.Error("expired session sweep failed", "err", err)
		return
	}
	if n > 0 {
		s.logger.Info("expired sessions deleted", "count", n)
	}
}

// Schedule returns a stopped cron runner with job registered under spec.
func Schedule(spec string, job cron.Job) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddJob(spec, cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(job)); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", spec, err)
	}
	return c, nil
}
