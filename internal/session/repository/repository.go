package repository

import (
	"context"
	"time"

	"quiz-arena/backend/internal/session/domain"
)

// Repository defines durable persistence for sessions. It is the source of truth; the cache only accelerates reads.
type Repository interface {
	// GetByID returns the session row for id (expired or not), or nil if absent.
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	// ReplaceForUser atomically removes every session of s.UserID and inserts s.
	// It returns the ids of the removed sessions so callers can evict them from the cache.
	ReplaceForUser(ctx context.Context, s *domain.Session) (previous []string, err error)
	// Delete removes the session with id. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes sessions that expired at or before now and returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
