package workers

import (
	"context"
	"time"

	"github.com/keymaster/keymaster/internal/logger"
	"github.com/keymaster/keymaster/internal/session"
)

// SessionSweeper periodically destroys the vaults of sessions that have
// been idle longer than the configured TTL, covering browsers that never
// log out. Active sessions are never touched.
type SessionSweeper struct {
	registry *session.Registry
	ttl      time.Duration
	interval time.Duration
	logger   *logger.Logger
}

// NewSessionSweeper constructs a sweeper over registry that removes
// sessions idle longer than ttl, checking every interval.
func NewSessionSweeper(registry *session.Registry, ttl, interval time.Duration, logger *logger.Logger) *SessionSweeper {
	return &SessionSweeper{
		registry: registry,
		ttl:      ttl,
		interval: interval,
		logger:   logger,
	}
}

// Run implements [Worker]. It blocks until ctx is cancelled.
func (s *SessionSweeper) Run(ctx context.Context) {
	s.logger.Info().
		Dur("ttl", s.ttl).
		Dur("interval", s.interval).
		Msg("session sweeper started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("session sweeper stopped")
			return
		case <-ticker.C:
			if removed := s.registry.SweepIdle(s.ttl); len(removed) > 0 {
				s.logger.Info().Int("count", len(removed)).Msg("destroyed idle session vaults")
			}
		}
	}
}
