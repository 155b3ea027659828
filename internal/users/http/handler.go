package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/valenvalita/project-manager/internal/api/http/respond"
	"github.com/valenvalita/project-manager/internal/pagination"
	"github.com/valenvalita/project-manager/internal/users/domain"
	"github.com/valenvalita/project-manager/internal/users/service"
)

type Handler struct {
	svc    *service.UserService
	logger *zap.Logger
}

func New(svc *service.UserService, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register attaches user routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	for _, root := range []string{"", "/"} {
		rg.POST(root, h.create)
		rg.GET(root, h.list)
	}
	rg.GET("/:id", h.get)
	rg.PATCH("/:id", h.patch)
	rg.DELETE("/:id", h.delete)
}

func (h *Handler) create(c *gin.Context) {
	var req domain.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	u, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *Handler) list(c *gin.Context) {
	var (
		lq domain.ListQuery
		pq pagination.Query
	)
	if err := c.ShouldBindQuery(&lq); err != nil {
		respond.BindError(c, err)
		return
	}
	if err := c.ShouldBindQuery(&pq); err != nil {
		respond.BindError(c, err)
		return
	}

	items, err := h.svc.List(c.Request.Context(), lq.ActiveOnly, pq.Page())
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := respond.PathID(c)
	if !ok {
		return
	}

	u, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) patch(c *gin.Context) {
	id, ok := respond.PathID(c)
	if !ok {
		return
	}

	var req domain.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	u, err := h.svc.Patch(c.Request.Context(), id, &req)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := respond.PathID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
