package engine

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/rs/zerolog/log"
)

const allowQuery = "data.quiz.authz.allow"

// Default Rego policy: only administrators may change quiz content.
const defaultRegoPolicy = `package quiz.authz

default allow := false

allow if {
	input.user.role == "ADMIN"
}
`

// OPAEvaluator evaluates the authorization policy with an embedded OPA Rego engine.
type OPAEvaluator struct {
	query rego.PreparedEvalQuery
}

// NewOPAEvaluator compiles policy (the default policy when empty) and prepares the allow query.
func NewOPAEvaluator(ctx context.Context, policy string) (*OPAEvaluator, error) {
	if policy == "" {
		policy = defaultRegoPolicy
	}
	compiler, err := ast.CompileModules(map[string]string{"authz.rego": policy})
	if err != nil {
		return nil, fmt.Errorf("compile policy: %w", err)
	}
	q, err := rego.New(
		rego.Query(allowQuery),
		rego.Compiler(compiler),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare policy query: %w", err)
	}
	return &OPAEvaluator{query: q}, nil
}

// Allow evaluates the policy. Evaluation errors and undefined results deny.
func (e *OPAEvaluator) Allow(ctx context.Context, in Input) (bool, error) {
	rs, err := e.query.Eval(ctx, rego.EvalInput(buildInput(in)))
	if err != nil {
		log.Error().Err(err).Str("action", in.Action).Msg("policy: evaluation failed, denying")
		return false, fmt.Errorf("eval policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, nil
	}
	allowed, _ := rs[0].Expressions[0].Value.(bool)
	return allowed, nil
}

// HealthCheck evaluates the prepared query against a minimal input. Returns nil on success.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	rs, err := e.query.Eval(ctx, rego.EvalInput(buildInput(Input{})))
	if err != nil {
		return fmt.Errorf("eval policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return fmt.Errorf("policy query returned no result")
	}
	return nil
}

func buildInput(in Input) map[string]interface{} {
	return map[string]interface{}{
		"user": map[string]interface{}{
			"id":   in.UserID,
			"role": in.Role,
		},
		"action": in.Action,
	}
}
