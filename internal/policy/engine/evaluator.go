package engine

import "context"

// Actions checked by the admin gate.
const (
	ActionCategoryWrite = "category.write"
	ActionQuestionWrite = "question.write"
)

// Input is the authorization request: who is asking and for what.
type Input struct {
	UserID string
	Role   string
	Action string
}

// Evaluator decides whether a caller may perform an action.
type Evaluator interface {
	// Allow reports whether the input is permitted. Implementations deny when they cannot decide.
	Allow(ctx context.Context, in Input) (bool, error)
	HealthCheck(ctx context.Context) error
}
