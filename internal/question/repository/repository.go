package repository

import (
	"context"

	"quiz-arena/backend/internal/question/domain"
)

// Repository defines persistence for questions.
type Repository interface {
	// ListByCategory returns the category's questions, newest first.
	ListByCategory(ctx context.Context, categoryID string) ([]*domain.Question, error)
	// Random returns up to limit questions of the category in random order.
	Random(ctx context.Context, categoryID string, limit int) ([]*domain.Question, error)
	GetByID(ctx context.Context, id string) (*domain.Question, error)
	Create(ctx context.Context, q *domain.Question) error
	// Update overwrites content, category and updated_at; it returns false when no row has q.ID.
	Update(ctx context.Context, q *domain.Question) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}
