// Package service implements question management and random question draws.
package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	categorydomain "quiz-arena/backend/internal/category/domain"
	"quiz-arena/backend/internal/platform/validation"
	"quiz-arena/backend/internal/question/domain"
	"quiz-arena/backend/internal/question/repository"
)

// Random draw bounds.
const (
	DefaultRandomLimit = 10
	MaxRandomLimit     = 50
)

var (
	ErrNotFound         = errors.New("question not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// Input is the create and update request body.
type Input struct {
	Content    string `json:"content" validate:"required" msg:"Question content is required"`
	CategoryID string `json:"categoryId" validate:"required,uuid" msg:"Invalid category ID"`
}

// CategoryGetter looks up categories.
type CategoryGetter interface {
	GetByID(ctx context.Context, id string) (*categorydomain.Category, error)
}

// Service implements question CRUD.
type Service struct {
	repo       repository.Repository
	categories CategoryGetter
	now        func() time.Time
}

// NewService returns a question Service.
func NewService(repo repository.Repository, categories CategoryGetter) *Service {
	return &Service{repo: repo, categories: categories, now: func() time.Time { return time.Now().UTC() }}
}

// ListByCategory returns the category's questions, newest first. Unknown categories yield an empty list.
func (s *Service) ListByCategory(ctx context.Context, categoryID string) ([]*domain.Question, error) {
	if _, err := uuid.Parse(categoryID); err != nil {
		return []*domain.Question{}, nil
	}
	return nonNil(s.repo.ListByCategory(ctx, categoryID))
}

// Random draws up to limit questions of the category. rawLimit is the path segment; anything that is
// not a positive integer selects DefaultRandomLimit and larger values are capped at MaxRandomLimit.
func (s *Service) Random(ctx context.Context, categoryID, rawLimit string) ([]*domain.Question, error) {
	if _, err := uuid.Parse(categoryID); err != nil {
		return []*domain.Question{}, nil
	}
	return nonNil(s.repo.Random(ctx, categoryID, ParseLimit(rawLimit)))
}

// ParseLimit converts a requested draw size into the effective one.
func ParseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return DefaultRandomLimit
	}
	return min(n, MaxRandomLimit)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Question, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrNotFound
	}
	return q, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Question, error) {
	if err := s.check(ctx, &in); err != nil {
		return nil, err
	}
	now := s.now()
	q := &domain.Question{
		ID:         uuid.New().String(),
		Content:    in.Content,
		CategoryID: in.CategoryID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, q); err != nil {
		return nil, err
	}
	log.Info().Str("question_id", q.ID).Str("category_id", q.CategoryID).Msg("question: created")
	return q, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Question, error) {
	if err := s.check(ctx, &in); err != nil {
		return nil, err
	}
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	q.Content = in.Content
	q.CategoryID = in.CategoryID
	q.UpdatedAt = s.now()
	found, err := s.repo.Update(ctx, q)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return q, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// check validates in and confirms its category exists.
func (s *Service) check(ctx context.Context, in *Input) error {
	in.Content = strings.TrimSpace(in.Content)
	in.CategoryID = strings.TrimSpace(in.CategoryID)
	if err := validation.Struct(in); err != nil {
		return err
	}
	c, err := s.categories.GetByID(ctx, in.CategoryID)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrCategoryNotFound
	}
	return nil
}

func nonNil(qs []*domain.Question, err error) ([]*domain.Question, error) {
	if err != nil {
		return nil, err
	}
	if qs == nil {
		qs = []*domain.Question{}
	}
	return qs, nil
}
