// Package handler exposes room creation, code issuance and joining over HTTP.
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	roomservice "quiz-arena/backend/internal/room/service"
	"quiz-arena/backend/internal/server/httpx"
	"quiz-arena/backend/internal/server/middleware"
)

// RoomService is the admission service used by the handler.
type RoomService interface {
	Create(ctx context.Context, userID string, in roomservice.CreateInput) (*roomservice.CreateResult, error)
	GenerateCode(ctx context.Context, userID string, in roomservice.GenerateCodeInput) (*roomservice.CodeResult, error)
	Join(ctx context.Context, userID string, in roomservice.JoinInput) (*roomservice.JoinResult, error)
}

// Handler serves /api/room. Every route requires a session.
type Handler struct {
	rooms RoomService
}

// NewHandler returns a room Handler.
func NewHandler(rooms RoomService) *Handler {
	return &Handler{rooms: rooms}
}

// Register mounts the room routes behind requireUser.
func (h *Handler) Register(r gin.IRouter, requireUser gin.HandlerFunc) {
	g := r.Group("", requireUser)
	g.POST("/create", h.Create)
	g.POST("/generate-code", h.GenerateCode)
	g.POST("/join", h.Join)
}

func (h *Handler) Create(c *gin.Context) {
	var in roomservice.CreateInput
	if !httpx.Bind(c, &in) {
		return
	}
	res, err := h.rooms.Create(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, http.StatusCreated, "Room created successfully!", res)
}

func (h *Handler) GenerateCode(c *gin.Context) {
	var in roomservice.GenerateCodeInput
	if !httpx.Bind(c, &in) {
		return
	}
	res, err := h.rooms.GenerateCode(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "Room code generated", res)
}

func (h *Handler) Join(c *gin.Context) {
	var in roomservice.JoinInput
	if !httpx.Bind(c, &in) {
		return
	}
	res, err := h.rooms.Join(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "Successfully joined the room: "+res.RoomName, res)
}
