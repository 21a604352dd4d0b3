package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

type expiredSessionDeleter interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type expiredCodeDeleter interface {
	DeleteExpiredCodes(ctx context.Context, now time.Time) (int64, error)
}

// sweeper purges expired session rows and room codes. Reads already ignore expired rows, so the sweep
// only reclaims space.
type sweeper struct {
	sessions expiredSessionDeleter
	codes    expiredCodeDeleter
	now      func() time.Time
}

func (s *sweeper) run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sweep(ctx)
		}
	}
}

func (s *sweeper) sweep(ctx context.Context) {
	now := s.now()
	if n, err := s.sessions.DeleteExpired(ctx, now); err != nil {
		log.Error().Err(err).Msg("worker: sweep sessions")
	} else if n > 0 {
		log.Info().Int64("deleted", n).Msg("worker: expired sessions purged")
	}
	if n, err := s.codes.DeleteExpiredCodes(ctx, now); err != nil {
		log.Error().Err(err).Msg("worker: sweep room codes")
	} else if n > 0 {
		log.Info().Int64("deleted", n).Msg("worker: expired room codes purged")
	}
}
