// Package handler exposes account registration, login, logout and profile lookup over HTTP.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	identityservice "quiz-arena/backend/internal/identity/service"
	"quiz-arena/backend/internal/server/httpx"
	"quiz-arena/backend/internal/server/middleware"
	sessionservice "quiz-arena/backend/internal/session/service"
	userdomain "quiz-arena/backend/internal/user/domain"
)

// AuthService is the account service used by the handler.
type AuthService interface {
	Register(ctx context.Context, in identityservice.RegisterInput) (*userdomain.User, error)
	Login(ctx context.Context, in identityservice.LoginInput) (*identityservice.LoginResult, error)
	Logout(ctx context.Context, token, userID string) error
	Me(ctx context.Context, userID string) (*userdomain.User, error)
}

// Handler serves /api/auth.
type Handler struct {
	auth AuthService
}

// NewHandler returns an auth Handler.
func NewHandler(auth AuthService) *Handler {
	return &Handler{auth: auth}
}

// Register mounts the auth routes. limit guards register and login; requireUser guards me.
func (h *Handler) Register(r gin.IRouter, limit, requireUser gin.HandlerFunc) {
	r.POST("/register", limit, h.RegisterUser)
	r.POST("/login", limit, h.Login)
	r.GET("/logout", h.Logout)
	r.GET("/me", requireUser, h.Me)
}

func (h *Handler) RegisterUser(c *gin.Context) {
	var in identityservice.RegisterInput
	if !httpx.Bind(c, &in) {
		return
	}
	u, err := h.auth.Register(c.Request.Context(), in)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "User registered successfully", gin.H{"user": u.Profile()})
}

// Login starts a session and hands its token to the session middleware, which sets the cookie.
func (h *Handler) Login(c *gin.Context) {
	var in identityservice.LoginInput
	if !httpx.Bind(c, &in) {
		return
	}
	res, err := h.auth.Login(c.Request.Context(), in)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	middleware.SessionState(c).Establish(res.Token, res.Session.ID, res.User.ID)
	httpx.OK(c, http.StatusOK, "Login successful", gin.H{"user": res.User.Profile()})
}

// Logout ends the session named by the cookie and clears the cookie. An expired cookie still has its
// durable row removed.
func (h *Handler) Logout(c *gin.Context) {
	st := middleware.SessionState(c)
	if err := h.auth.Logout(c.Request.Context(), st.Presented(), st.UserID()); err != nil {
		if errors.Is(err, sessionservice.ErrNoSession) {
			st.Destroy()
		}
		httpx.Error(c, err)
		return
	}
	st.Destroy()
	httpx.OK(c, http.StatusOK, "Logged out successfully", nil)
}

func (h *Handler) Me(c *gin.Context) {
	u, err := h.auth.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "", gin.H{"user": u.Profile()})
}
