package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/valenvalita/project-manager/config"
	"github.com/valenvalita/project-manager/internal/bootstrap"
	"github.com/valenvalita/project-manager/internal/logger"
	"github.com/valenvalita/project-manager/internal/metrics"
	projectrepo "github.com/valenvalita/project-manager/internal/projects/repository"
	projectservice "github.com/valenvalita/project-manager/internal/projects/service"
	"github.com/valenvalita/project-manager/internal/storage/postgres"
	userrepo "github.com/valenvalita/project-manager/internal/users/repository"
	userservice "github.com/valenvalita/project-manager/internal/users/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.App.LogLevel, cfg.App.Environment)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("Server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn := postgres.DSN(&cfg.Database)
	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{
		DSN:      dsn,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return err
	}
	defer pool.Close()
	zl.Info("Connected to PostgreSQL", zap.Int32("max_conns", pool.Config().MaxConns))

	if cfg.Database.Migrate {
		if err := postgres.RunMigrations(dsn, zl); err != nil {
			return err
		}
	}

	db := postgres.SQLDB(pool)
	defer db.Close()

	projects := projectrepo.NewProjectRepository(db, zl)
	users := userrepo.NewUserRepository(db, zl)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router, err := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: cfg.App.ServiceName,
		Version:     cfg.App.Version,
		CORSOrigins: cfg.CORS.Origins(),
		Logger:      zl,
		DB:          pool,
		Metrics:     metrics.New(reg),
		Gatherer:    reg,
		Projects:    projectservice.NewProjectService(projects, users, zl),
		Users:       userservice.NewUserService(users, projects, zl),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("Listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("Shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
