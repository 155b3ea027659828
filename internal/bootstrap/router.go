package bootstrap

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httpapi "github.com/valenvalita/project-manager/internal/api/http"
	"github.com/valenvalita/project-manager/internal/api/http/middleware"
	"github.com/valenvalita/project-manager/internal/api/http/respond"
	"github.com/valenvalita/project-manager/internal/metrics"
	projecthttp "github.com/valenvalita/project-manager/internal/projects/http"
	projectservice "github.com/valenvalita/project-manager/internal/projects/service"
	userhttp "github.com/valenvalita/project-manager/internal/users/http"
	userservice "github.com/valenvalita/project-manager/internal/users/service"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	CORSOrigins []string
	Logger      *zap.Logger
	DB          httpapi.Pinger
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	Projects    *projectservice.ProjectService
	Users       *userservice.UserService
}

func BuildRouter(dep RouterDeps) (*gin.Engine, error) {
	respond.UseJSONFieldNames()

	corsHandler, err := middleware.CORS(dep.CORSOrigins)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(dep.Logger))
	r.Use(corsHandler)
	if dep.Metrics != nil {
		r.Use(middleware.Metrics(dep.Metrics))
	}

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB)
	healthHandler.RegisterRoutes(r)

	if dep.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(dep.Gatherer, promhttp.HandlerOpts{})))
	}

	projecthttp.New(dep.Projects, dep.Logger).Register(r.Group("/projects"))
	userhttp.New(dep.Users, dep.Logger).Register(r.Group("/users"))

	return r, nil
}
