package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/media-request-service/internal/observability"
)

// ServerConfig describes the fiber application to build.
type ServerConfig struct {
	AppName     string
	Middlewares MiddlewareConfig
	Routes      RouteConfig
}

// NewServer builds the fiber app with the middleware chain and routes.
func NewServer(cfg ServerConfig, logger *zap.Logger, metrics *observability.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, logger, metrics, cfg.Middlewares)
	routes := cfg.Routes
	if routes.AllowOrigins == "" {
		routes.AllowOrigins = cfg.Middlewares.AllowOrigins
	}
	RegisterRoutes(app, routes)
	return app
}
