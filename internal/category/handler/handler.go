// Package handler exposes categories over HTTP. Reads are public; writes require an administrator.
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"quiz-arena/backend/internal/category/domain"
	categoryservice "quiz-arena/backend/internal/category/service"
	"quiz-arena/backend/internal/server/httpx"
)

// CategoryService is the category service used by the handler.
type CategoryService interface {
	List(ctx context.Context) ([]*domain.Category, error)
	Get(ctx context.Context, id string) (*categoryservice.WithQuestions, error)
	Create(ctx context.Context, in categoryservice.Input) (*domain.Category, error)
	Update(ctx context.Context, id string, in categoryservice.Input) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
}

// Handler serves /api/categories.
type Handler struct {
	categories CategoryService
}

// NewHandler returns a category Handler.
func NewHandler(categories CategoryService) *Handler {
	return &Handler{categories: categories}
}

// Register mounts the public routes and, behind admin, the write routes under /admin.
func (h *Handler) Register(r gin.IRouter, admin ...gin.HandlerFunc) {
	r.GET("", h.List)
	r.GET("/:id", h.Get)
	g := r.Group("/admin", admin...)
	g.POST("/create", h.Create)
	g.PUT("/update/:id", h.Update)
	g.DELETE("/delete/:id", h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	list, err := h.categories.List(c.Request.Context())
	if err != nil {
		httpx.Error(c, err)
		return
	}
	if list == nil {
		list = []*domain.Category{}
	}
	httpx.OK(c, http.StatusOK, "", gin.H{"categories": list})
}

func (h *Handler) Get(c *gin.Context) {
	cat, err := h.categories.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "", gin.H{"category": cat})
}

func (h *Handler) Create(c *gin.Context) {
	var in categoryservice.Input
	if !httpx.Bind(c, &in) {
		return
	}
	cat, err := h.categories.Create(c.Request.Context(), in)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, http.StatusCreated, "Category created successfully", gin.H{"category": cat})
}

func (h *Handler) Update(c *gin.Context) {
	var in categoryservice.Input
	if !httpx.Bind(c, &in) {
		return
	}
	cat, err := h.categories.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "Category updated successfully", gin.H{"category": cat})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.categories.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "Category deleted successfully", nil)
}
