package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"quiz-arena/backend/internal/category/domain"
	"quiz-arena/backend/internal/db"
)

const categoryColumns = `id, name, description, created_at, updated_at`

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns a category repository backed by the given pool.
func NewPostgresRepository(pool db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: pool}
}

func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY created_at DESC`)
	if err != nil {
		return nil, oops.Code("CATEGORY_LIST_FAILED").Wrap(err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Category, error) {
		return scanCategory(row)
	})
	if err != nil {
		return nil, oops.Code("CATEGORY_LIST_FAILED").Wrap(err)
	}
	return out, nil
}

// GetByID returns the category for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	c, err := scanCategory(r.db.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, oops.Code("CATEGORY_GET_FAILED").With("category_id", id).Wrap(err)
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, c *domain.Category) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO categories (`+categoryColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Name, c.Description, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return oops.Code("CATEGORY_CREATE_FAILED").With("category_id", c.ID).Wrap(err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, c *domain.Category) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE categories SET name = $2, description = $3, updated_at = $4 WHERE id = $1`,
		c.ID, c.Name, c.Description, c.UpdatedAt,
	)
	if err != nil {
		return false, oops.Code("CATEGORY_UPDATE_FAILED").With("category_id", c.ID).Wrap(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return false, oops.Code("CATEGORY_DELETE_FAILED").With("category_id", id).Wrap(err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
