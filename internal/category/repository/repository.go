package repository

import (
	"context"

	"quiz-arena/backend/internal/category/domain"
)

// Repository defines persistence for categories.
type Repository interface {
	// List returns all categories, newest first.
	List(ctx context.Context) ([]*domain.Category, error)
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	Create(ctx context.Context, c *domain.Category) error
	// Update overwrites name, description and updated_at; it returns false when no row has c.ID.
	Update(ctx context.Context, c *domain.Category) (bool, error)
	// Delete removes the category and, by cascade, its questions; it returns false when nothing was deleted.
	Delete(ctx context.Context, id string) (bool, error)
}
