// Package middleware holds the gin middleware of the HTTP API: request context, session resolution,
// authentication gates, rate limiting, logging and tracing.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	sessionservice "quiz-arena/backend/internal/session/service"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

type contextKey struct{ name string }

var (
	clientIPKey  = contextKey{"client_ip"}
	requestIDKey = contextKey{"request_id"}
)

const stateKey = "session.state"

// WithClientIP returns a context carrying the caller's IP.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIP returns the caller's IP stored by RequestContext, or "" if unset.
func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey).(string)
	return v
}

// RequestID returns the request id stored by RequestContext, or "" if unset.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// RequestContext copies the client IP and a request id (the caller's X-Request-ID or a new uuid) into
// the request context so services, audit and logs can read them.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.New().String()
		}
		c.Header(RequestIDHeader, id)
		ctx := WithClientIP(c.Request.Context(), c.ClientIP())
		ctx = context.WithValue(ctx, requestIDKey, id)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// SessionState returns the session state resolved for this request. Outside the Sessions middleware
// it returns an anonymous state that never commits.
func SessionState(c *gin.Context) *sessionservice.State {
	if v, ok := c.Get(stateKey); ok {
		if st, ok := v.(*sessionservice.State); ok {
			return st
		}
	}
	return &sessionservice.State{}
}

// SetSessionState binds st to the request.
func SetSessionState(c *gin.Context, st *sessionservice.State) {
	c.Set(stateKey, st)
}

// UserID returns the authenticated user id of the request, or "".
func UserID(c *gin.Context) string {
	return SessionState(c).UserID()
}
