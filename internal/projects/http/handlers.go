package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/valenvalita/project-manager/internal/api/http/respond"
	"github.com/valenvalita/project-manager/internal/pagination"
	"github.com/valenvalita/project-manager/internal/projects/domain"
)

func (h *Handler) create(c *gin.Context) {
	var req domain.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	p, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *Handler) list(c *gin.Context) {
	var q pagination.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		respond.BindError(c, err)
		return
	}

	items, err := h.svc.List(c.Request.Context(), q.Page())
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) filter(c *gin.Context) {
	var (
		fq domain.FilterQuery
		pq pagination.Query
	)
	if err := c.ShouldBindQuery(&fq); err != nil {
		respond.BindError(c, err)
		return
	}
	if err := c.ShouldBindQuery(&pq); err != nil {
		respond.BindError(c, err)
		return
	}

	items, err := h.svc.Filter(c.Request.Context(), fq.Filter(), pq.Page())
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) stats(c *gin.Context) {
	s, err := h.svc.Stats(c.Request.Context(), h.now())
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := respond.PathID(c)
	if !ok {
		return
	}

	p, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) replace(c *gin.Context) {
	id, ok := respond.PathID(c)
	if !ok {
		return
	}

	var req domain.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	p, err := h.svc.Replace(c.Request.Context(), id, &req)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) patch(c *gin.Context) {
	id, ok := respond.PathID(c)
	if !ok {
		return
	}

	var req domain.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	p, err := h.svc.Patch(c.Request.Context(), id, &req)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
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
