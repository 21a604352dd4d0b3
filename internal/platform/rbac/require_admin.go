// Package rbac gates routes on the caller's role using the policy engine.
package rbac

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"quiz-arena/backend/internal/policy/engine"
	"quiz-arena/backend/internal/server/httpx"
	"quiz-arena/backend/internal/server/middleware"
	userdomain "quiz-arena/backend/internal/user/domain"
)

// UserGetter returns a user by id. Used by RequireAdmin to resolve the caller's role.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// PolicyEvaluator decides whether a caller may perform an action.
type PolicyEvaluator interface {
	Allow(ctx context.Context, in engine.Input) (bool, error)
}

// RequireAdmin ensures the caller is authenticated and that the policy allows action for their role.
// Anonymous callers get 401; everyone else the policy denies (including on evaluation errors) gets 403.
func RequireAdmin(users UserGetter, policy PolicyEvaluator, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.UserID(c)
		if userID == "" {
			httpx.Fail(c, http.StatusUnauthorized, "Unauthorized: User not authenticated")
			return
		}
		ctx := c.Request.Context()
		u, err := users.GetByID(ctx, userID)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		if u == nil {
			httpx.Fail(c, http.StatusUnauthorized, "Unauthorized: User not authenticated")
			return
		}
		allowed, err := policy.Allow(ctx, engine.Input{UserID: u.ID, Role: string(u.Role), Action: action})
		if err != nil || !allowed {
			log.Warn().Str("user_id", u.ID).Str("action", action).Msg("rbac: admin access denied")
			httpx.Fail(c, http.StatusForbidden, "Forbidden: Admin access required")
			return
		}
		c.Next()
	}
}
