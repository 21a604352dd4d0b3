// Package handler exposes questions over HTTP. Reads are public; writes require an administrator.
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"quiz-arena/backend/internal/question/domain"
	questionservice "quiz-arena/backend/internal/question/service"
	"quiz-arena/backend/internal/server/httpx"
)

// QuestionService is the question service used by the handler.
type QuestionService interface {
	ListByCategory(ctx context.Context, categoryID string) ([]*domain.Question, error)
	Random(ctx context.Context, categoryID, rawLimit string) ([]*domain.Question, error)
	Get(ctx context.Context, id string) (*domain.Question, error)
	Create(ctx context.Context, in questionservice.Input) (*domain.Question, error)
	Update(ctx context.Context, id string, in questionservice.Input) (*domain.Question, error)
	Delete(ctx context.Context, id string) error
}

// Handler serves /api/questions.
type Handler struct {
	questions QuestionService
}

// NewHandler returns a question Handler.
func NewHandler(questions QuestionService) *Handler {
	return &Handler{questions: questions}
}

// Register mounts the public routes and, behind admin, the write routes under /admin.
func (h *Handler) Register(r gin.IRouter, admin ...gin.HandlerFunc) {
	r.GET("/category/:categoryId", h.ListByCategory)
	r.GET("/random/:categoryId/:limit", h.Random)
	r.GET("/:id", h.Get)
	g := r.Group("/admin", admin...)
	g.POST("/create", h.Create)
	g.PUT("/update/:id", h.Update)
	g.DELETE("/delete/:id", h.Delete)
}

func (h *Handler) ListByCategory(c *gin.Context) {
	qs, err := h.questions.ListByCategory(c.Request.Context(), c.Param("categoryId"))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "", gin.H{"questions": qs})
}

func (h *Handler) Random(c *gin.Context) {
	qs, err := h.questions.Random(c.Request.Context(), c.Param("categoryId"), c.Param("limit"))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "", gin.H{"questions": qs})
}

func (h *Handler) Get(c *gin.Context) {
	q, err := h.questions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "", gin.H{"question": q})
}

func (h *Handler) Create(c *gin.Context) {
	var in questionservice.Input
	if !httpx.Bind(c, &in) {
		return
	}
	q, err := h.questions.Create(c.Request.Context(), in)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, http.StatusCreated, "Question created successfully", gin.H{"question": q})
}

func (h *Handler) Update(c *gin.Context) {
	var in questionservice.Input
	if !httpx.Bind(c, &in) {
		return
	}
	q, err := h.questions.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "Question updated successfully", gin.H{"question": q})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.questions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "Question deleted successfully", nil)
}
