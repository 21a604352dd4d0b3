package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"quiz-arena/backend/internal/db"
	"quiz-arena/backend/internal/session/domain"
)

// ErrUserNotFound is returned by ReplaceForUser when the session's user does not exist.
var ErrUserNotFound = errors.New("session user not found")

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns a session repository backed by the given pool.
func NewPostgresRepository(pool db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: pool}
}

// GetByID returns the session for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	var s domain.Session
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, expires_at, created_at FROM sessions WHERE id = $1`, id,
	).Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, oops.Code("SESSION_GET_FAILED").Wrap(err)
	}
	return &s, nil
}

// ReplaceForUser locks the user row so concurrent logins for the same user serialize, deletes the
// user's existing sessions and inserts s, all in one transaction.
func (r *PostgresRepository) ReplaceForUser(ctx context.Context, s *domain.Session) ([]string, error) {
	var previous []string
	err := db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		var locked string
		if err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, s.UserID).Scan(&locked); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrUserNotFound
			}
			return err
		}
		rows, err := tx.Query(ctx, `DELETE FROM sessions WHERE user_id = $1 RETURNING id`, s.UserID)
		if err != nil {
			return err
		}
		previous, err = pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO sessions (id, user_id, expires_at, created_at) VALUES ($1, $2, $3, $4)`,
			s.ID, s.UserID, s.ExpiresAt, s.CreatedAt,
		)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, oops.Code("SESSION_REPLACE_FAILED").With("user_id", s.UserID).Wrap(err)
	}
	return previous, nil
}

// Delete removes the session with id; a missing row is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return oops.Code("SESSION_DELETE_FAILED").Wrap(err)
	}
	return nil
}

// DeleteExpired removes sessions whose expiry is at or before now.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, oops.Code("SESSION_SWEEP_FAILED").Wrap(err)
	}
	return tag.RowsAffected(), nil
}
