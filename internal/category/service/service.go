// Package service implements category management.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"quiz-arena/backend/internal/category/domain"
	"quiz-arena/backend/internal/category/repository"
	"quiz-arena/backend/internal/platform/validation"
	questiondomain "quiz-arena/backend/internal/question/domain"
)

// ErrNotFound is returned when no category has the requested id.
var ErrNotFound = errors.New("category not found")

// Input is the create and update request body.
type Input struct {
	Name        string  `json:"name" validate:"required" msg:"Category name is required"`
	Description *string `json:"description"`
}

// WithQuestions is a category together with its questions, newest first.
type WithQuestions struct {
	*domain.Category
	Questions []*questiondomain.Question `json:"questions"`
}

// QuestionLister lists the questions of a category.
type QuestionLister interface {
	ListByCategory(ctx context.Context, categoryID string) ([]*questiondomain.Question, error)
}

// Service implements category CRUD.
type Service struct {
	repo      repository.Repository
	questions QuestionLister
	now       func() time.Time
}

// NewService returns a category Service.
func NewService(repo repository.Repository, questions QuestionLister) *Service {
	return &Service{repo: repo, questions: questions, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Service) List(ctx context.Context) ([]*domain.Category, error) {
	return s.repo.List(ctx)
}

// Get returns the category and its questions. Ids that are not UUIDs are reported as not found.
func (s *Service) Get(ctx context.Context, id string) (*WithQuestions, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	qs, err := s.questions.ListByCategory(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if qs == nil {
		qs = []*questiondomain.Question{}
	}
	return &WithQuestions{Category: c, Questions: qs}, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Category, error) {
	in = normalize(in)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	now := s.now()
	c := &domain.Category{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	log.Info().Str("category_id", c.ID).Msg("category: created")
	return c, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Category, error) {
	in = normalize(in)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = in.Name
	c.Description = in.Description
	c.UpdatedAt = s.now()
	found, err := s.repo.Update(ctx, c)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return c, nil
}

// Delete removes the category and its questions.
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
	log.Info().Str("category_id", id).Msg("category: deleted")
	return nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

func normalize(in Input) Input {
	in.Name = strings.TrimSpace(in.Name)
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		if d == "" {
			in.Description = nil
		} else {
			in.Description = &d
		}
	}
	return in
}
