// Package handler serves liveness and readiness probes.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const checkTimeout = 2 * time.Second

// Pinger checks a backing store (Postgres pool, session cache).
type Pinger interface {
	Ping(ctx context.Context) error
}

// PolicyChecker checks that the policy engine can evaluate.
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler answers the probes. Nil dependencies are skipped.
type Handler struct {
	db     Pinger
	cache  Pinger
	policy PolicyChecker
}

// NewHandler returns a health Handler.
func NewHandler(db, cache Pinger, policy PolicyChecker) *Handler {
	return &Handler{db: db, cache: cache, policy: policy}
}

// Register mounts /healthz and /readyz.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/healthz", h.Live)
	r.GET("/readyz", h.Ready)
}

// Live reports that the process is up.
func (h *Handler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready runs every dependency check and answers 503 naming the first failing component.
func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
	defer cancel()

	checks := []struct {
		name string
		run  func(context.Context) error
	}{
		{"database", pingFunc(h.db)},
		{"cache", pingFunc(h.cache)},
		{"policy", policyFunc(h.policy)},
	}
	for _, chk := range checks {
		if chk.run == nil {
			continue
		}
		if err := chk.run(ctx); err != nil {
			log.Warn().Err(err).Str("component", chk.name).Msg("health: not ready")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "component": chk.name})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func pingFunc(p Pinger) func(context.Context) error {
	if p == nil {
		return nil
	}
	return p.Ping
}

func policyFunc(p PolicyChecker) func(context.Context) error {
	if p == nil {
		return nil
	}
	return p.HealthCheck
}
