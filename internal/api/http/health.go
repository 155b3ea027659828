package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const pingTimeout = time.Second

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
	DB        string    `json:"db"`
}

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	service string
	version string
	db      Pinger
	started time.Time
}

func NewHealthHandler(service, version string, db Pinger) *HealthHandler {
	return &HealthHandler{service: service, version: version, db: db, started: time.Now()}
}

// dbState is "disabled" without a pool, otherwise "up" or "down".
func (h *HealthHandler) dbState(ctx context.Context) string {
	if h.db == nil {
		return "disabled"
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		return "down"
	}
	return "up"
}

// HealthCheck answers 503 while the database is unreachable so probes can drain traffic.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	db := h.dbState(c.Request.Context())

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.service,
		Version:   h.version,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		DB:        db,
	}
	code := http.StatusOK
	if db == "down" {
		resp.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}

// Root answers the liveness probe the frontend uses on GET /.
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Backend ok"})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.Root)
	for _, p := range []string{"/health", "/healthz"} {
		r.GET(p, h.HealthCheck)
	}
}
