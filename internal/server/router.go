// Package server assembles the HTTP API: global middleware, probes, metrics and every bounded
// context's routes.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	categoryhandler "quiz-arena/backend/internal/category/handler"
	healthhandler "quiz-arena/backend/internal/health/handler"
	identityhandler "quiz-arena/backend/internal/identity/handler"
	"quiz-arena/backend/internal/metrics"
	"quiz-arena/backend/internal/platform/rbac"
	"quiz-arena/backend/internal/policy/engine"
	questionhandler "quiz-arena/backend/internal/question/handler"
	roomhandler "quiz-arena/backend/internal/room/handler"
	"quiz-arena/backend/internal/server/httpx"
	"quiz-arena/backend/internal/server/middleware"
)

// Options holds the HTTP-facing settings.
type Options struct {
	CORSOrigins    []string
	CookieSecure   bool
	RateLimitRPS   float64
	RateLimitBurst int
}

// Deps holds the services behind the routes. Metrics may be nil to skip /metrics.
type Deps struct {
	Sessions   middleware.SessionResolver
	Auth       identityhandler.AuthService
	Rooms      roomhandler.RoomService
	Categories categoryhandler.CategoryService
	Questions  questionhandler.QuestionService
	Users      rbac.UserGetter
	Policy     rbac.PolicyEvaluator
	Health     *healthhandler.Handler
	Metrics    http.Handler
}

// NewRouter returns the gin engine serving the whole API.
//
// Route map:
//   - /healthz, /readyz, /metrics
//   - /api/auth       → internal/identity/handler
//   - /api/room       → internal/room/handler
//   - /api/categories → internal/category/handler
//   - /api/questions  → internal/question/handler
func NewRouter(opts Options, d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.CustomRecovery(func(c *gin.Context, rec any) {
			log.Error().Interface("panic", rec).Str("path", c.Request.URL.Path).Msg("http: recovered from panic")
			httpx.Fail(c, http.StatusInternalServerError, httpx.MsgInternal)
		}),
		middleware.RequestContext(),
		middleware.Tracing(),
		middleware.Logger(),
		metrics.GinMiddleware(),
	)
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.NoRoute(func(c *gin.Context) {
		httpx.Fail(c, http.StatusNotFound, "Not found")
	})

	if d.Health != nil {
		d.Health.Register(r)
	}
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}

	api := r.Group("/api", middleware.Sessions(d.Sessions, middleware.CookieConfig{Secure: opts.CookieSecure}))
	requireUser := middleware.RequireUser()
	limit := middleware.RateLimit(middleware.NewIPRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst))

	identityhandler.NewHandler(d.Auth).Register(api.Group("/auth"), limit, requireUser)
	roomhandler.NewHandler(d.Rooms).Register(api.Group("/room"), requireUser)
	categoryhandler.NewHandler(d.Categories).Register(api.Group("/categories"),
		requireUser, rbac.RequireAdmin(d.Users, d.Policy, engine.ActionCategoryWrite))
	questionhandler.NewHandler(d.Questions).Register(api.Group("/questions"),
		requireUser, rbac.RequireAdmin(d.Users, d.Policy, engine.ActionQuestionWrite))
	return r
}
