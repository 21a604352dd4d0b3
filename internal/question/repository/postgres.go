package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"quiz-arena/backend/internal/db"
	"quiz-arena/backend/internal/question/domain"
)

const questionColumns = `id, content, category_id, created_at, updated_at`

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns a question repository backed by the given pool.
func NewPostgresRepository(pool db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: pool}
}

func (r *PostgresRepository) ListByCategory(ctx context.Context, categoryID string) ([]*domain.Question, error) {
	return r.list(ctx, "QUESTION_LIST_FAILED", categoryID,
		`SELECT `+questionColumns+` FROM questions WHERE category_id = $1 ORDER BY created_at DESC`, categoryID)
}

func (r *PostgresRepository) Random(ctx context.Context, categoryID string, limit int) ([]*domain.Question, error) {
	return r.list(ctx, "QUESTION_RANDOM_FAILED", categoryID,
		`SELECT `+questionColumns+` FROM questions WHERE category_id = $1 ORDER BY random() LIMIT $2`, categoryID, limit)
}

func (r *PostgresRepository) list(ctx context.Context, code, categoryID, sql string, args ...any) ([]*domain.Question, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, oops.Code(code).With("category_id", categoryID).Wrap(err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Question, error) {
		return scanQuestion(row)
	})
	if err != nil {
		return nil, oops.Code(code).With("category_id", categoryID).Wrap(err)
	}
	return out, nil
}

// GetByID returns the question for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Question, error) {
	q, err := scanQuestion(r.db.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, oops.Code("QUESTION_GET_FAILED").With("question_id", id).Wrap(err)
	}
	return q, nil
}

func (r *PostgresRepository) Create(ctx context.Context, q *domain.Question) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO questions (`+questionColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		q.ID, q.Content, q.CategoryID, q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		return oops.Code("QUESTION_CREATE_FAILED").With("category_id", q.CategoryID).Wrap(err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, q *domain.Question) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE questions SET content = $2, category_id = $3, updated_at = $4 WHERE id = $1`,
		q.ID, q.Content, q.CategoryID, q.UpdatedAt,
	)
	if err != nil {
		return false, oops.Code("QUESTION_UPDATE_FAILED").With("question_id", q.ID).Wrap(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return false, oops.Code("QUESTION_DELETE_FAILED").With("question_id", id).Wrap(err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanQuestion(row pgx.Row) (*domain.Question, error) {
	var q domain.Question
	if err := row.Scan(&q.ID, &q.Content, &q.CategoryID, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return nil, err
	}
	return &q, nil
}
