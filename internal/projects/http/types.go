package http

import (
	"time"

	"go.uber.org/zap"

	"github.com/valenvalita/project-manager/internal/projects/service"
)

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	svc    *service.ProjectService
	logger *zap.Logger
	now    func() time.Time
}

func New(svc *service.ProjectService, logger *zap.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}
