package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"quiz-arena/backend/internal/audit/domain"
	"quiz-arena/backend/internal/db"
)

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns an audit log repository backed by the given pool.
func NewPostgresRepository(pool db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: pool}
}

// Create persists the audit log. The audit log must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO audit_logs (id, user_id, action, resource, ip, metadata, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, nullable(a.UserID), a.Action, a.Resource, a.IP, nullable(a.Metadata), a.CreatedAt,
	)
	if err != nil {
		return oops.Code("AUDIT_CREATE_FAILED").With("action", a.Action).Wrap(err)
	}
	return nil
}

// ListByUser returns audit logs for userID, paginated by limit and offset.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit, offset int32) ([]*domain.AuditLog, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, COALESCE(user_id::text, ''), action, resource, ip, COALESCE(metadata, ''), created_at
		 FROM audit_logs WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, oops.Code("AUDIT_LIST_FAILED").With("user_id", userID).Wrap(err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.AuditLog, error) {
		var a domain.AuditLog
		err := row.Scan(&a.ID, &a.UserID, &a.Action, &a.Resource, &a.IP, &a.Metadata, &a.CreatedAt)
		return &a, err
	})
	if err != nil {
		return nil, oops.Code("AUDIT_LIST_FAILED").With("user_id", userID).Wrap(err)
	}
	return out, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
