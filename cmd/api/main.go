package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/media-request-service/internal/api/http"
	"github.com/spec-kit/media-request-service/internal/api/http/handlers"
	"github.com/spec-kit/media-request-service/internal/auth"
	"github.com/spec-kit/media-request-service/internal/config"
	"github.com/spec-kit/media-request-service/internal/events"
	"github.com/spec-kit/media-request-service/internal/observability"
	"github.com/spec-kit/media-request-service/internal/persistence"
	"github.com/spec-kit/media-request-service/internal/repository"
	"github.com/spec-kit/media-request-service/internal/service"
	"github.com/spec-kit/media-request-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connection failures degrade to the in-memory store instead of exiting.
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Warn("postgres unavailable; continuing without it", zap.Error(err))
		pg = nil
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.PoolHandle() != nil {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Warn("migrations failed; continuing without postgres", zap.Error(err))
			pg.Close()
			pg = nil
		}
	}

	rdb, err := persistence.NewRedis(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable; continuing without it", zap.Error(err))
		rdb = nil
	}
	defer rdb.Close()

	store := repository.NewStore(repository.Backends{
		Postgres:   pg.PoolHandle(),
		Redis:      rdb.Handle(),
		Configured: cfg.Postgres.Configured() || cfg.Redis.Configured(),
	}, logger)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(dispatcher, notificationService, metrics)

	userService := service.NewUserService(store.Users, logger, cfg.Auth.BcryptCost)
	if err := userService.EnsureDefaultUsers(ctx, cfg.Seed); err != nil {
		logger.Warn("failed to seed default users", zap.Error(err))
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	authService, err := service.NewAuthService(store.Users, tokens, cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to init auth service", zap.Error(err))
	}
	if !cfg.Auth.Enabled {
		logger.Warn("admin authentication disabled")
	}

	mediaRequestService := service.NewMediaRequestService(service.MediaRequestDependencies{
		Requests:   store.MediaRequests,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	dependencies := map[string]handlers.Pinger{}
	if pg.PoolHandle() != nil {
		dependencies[repository.BackendPostgres] = pg
	}
	if rdb.Handle() != nil {
		dependencies[repository.BackendRedis] = rdb
	}

	app := httptransport.NewServer(httptransport.ServerConfig{
		AppName: cfg.App.Name,
		Middlewares: httptransport.MiddlewareConfig{
			Timeout:      cfg.App.RequestTimeout(),
			AllowOrigins: cfg.App.CORSAllowOrigins,
		},
		Routes: httptransport.RouteConfig{
			BasePath:    cfg.App.BasePath,
			AuthEnabled: cfg.Auth.Enabled,
			Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, handlers.HealthDependencies{
				Store:        store,
				Dependencies: dependencies,
				Metrics:      metrics,
				Logger:       logger,
			}),
			MediaRequests:  handlers.NewMediaRequestsHandler(mediaRequestService),
			AdminRequests:  handlers.NewAdminRequestsHandler(mediaRequestService),
			Users:          handlers.NewUsersHandler(userService),
			Auth:           handlers.NewAuthHandler(authService),
			AuthMiddleware: auth.NewAuthMiddleware(tokens, store.Users),
		},
	}, logger, metrics)

	go func() {
		logger.Info("http server starting",
			zap.String("addr", cfg.App.Addr()),
			zap.String("base_path", cfg.App.BasePath),
			zap.String("database", store.Backend))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
