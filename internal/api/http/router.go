package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/media-request-service/internal/api/http/handlers"
	"github.com/spec-kit/media-request-service/internal/auth"
	"github.com/spec-kit/media-request-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	BasePath       string
	AuthEnabled    bool
	AllowOrigins   string
	Health         *handlers.HealthHandler
	MediaRequests  *handlers.MediaRequestsHandler
	AdminRequests  *handlers.AdminRequestsHandler
	Users          *handlers.UsersHandler
	Auth           *handlers.AuthHandler
	AuthMiddleware *auth.AuthMiddleware
}

type methodHandlers map[string][]fiber.Handler

// routeRegistrar registers every method of a path together with its CORS
// preflight and a 405 handler carrying the Allow header.
type routeRegistrar struct {
	preflight fiber.Handler
}

func (r routeRegistrar) register(router fiber.Router, path string, methods methodHandlers) {
	allowed := make([]string, 0, len(methods)+2)
	for _, method := range []string{fiber.MethodGet, fiber.MethodPost, fiber.MethodPut, fiber.MethodDelete} {
		chain, ok := methods[method]
		if !ok {
			continue
		}
		router.Add(method, path, chain...)
		allowed = append(allowed, method)
		if method == fiber.MethodGet {
			router.Add(fiber.MethodHead, path, chain...)
			allowed = append(allowed, fiber.MethodHead)
		}
	}
	router.Add(fiber.MethodOptions, path, r.preflight)
	allowed = append(allowed, fiber.MethodOptions)
	router.All(path, methodNotAllowed(allowed...))
}

// RegisterRoutes wires HTTP routes. Paths not registered here fall through
// to fiber's 404.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	r := routeRegistrar{preflight: preflightHandler(corsOrigins(cfg.AllowOrigins))}
	guard := func(h fiber.Handler, roles ...domain.Role) []fiber.Handler {
		if !cfg.AuthEnabled || cfg.AuthMiddleware == nil {
			return []fiber.Handler{h}
		}
		return []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireRole(roles...), h}
	}
	open := func(h fiber.Handler) []fiber.Handler { return []fiber.Handler{h} }

	r.register(app, "/health/live", methodHandlers{fiber.MethodGet: open(cfg.Health.Live)})
	r.register(app, "/health/ready", methodHandlers{fiber.MethodGet: open(cfg.Health.Ready)})
	r.register(app, "/health/metrics", methodHandlers{fiber.MethodGet: open(cfg.Health.Metrics)})

	api := app.Group(cfg.BasePath)

	r.register(api, "/health", methodHandlers{
		fiber.MethodGet: open(cfg.Health.Health),
	})

	// Ids are optional in the pattern so a missing id reaches validation.
	r.register(api, "/media-requests", methodHandlers{
		fiber.MethodPost: open(cfg.MediaRequests.Submit),
	})
	r.register(api, "/media-requests/track/:trackingId?", methodHandlers{
		fiber.MethodGet: open(cfg.MediaRequests.Track),
	})
	r.register(api, "/media-requests/status/:requestId?", methodHandlers{
		fiber.MethodGet: open(cfg.MediaRequests.Status),
	})
	r.register(api, "/media-requests/cancel/:requestId?", methodHandlers{
		fiber.MethodPut: open(cfg.MediaRequests.Cancel),
	})

	r.register(api, "/auth/login", methodHandlers{
		fiber.MethodPost: open(cfg.Auth.Login),
	})

	r.register(api, "/admin/requests", methodHandlers{
		fiber.MethodGet: guard(cfg.AdminRequests.List, domain.RoleAdmin, domain.RoleEditor),
	})
	r.register(api, "/admin/requests/:requestId/status", methodHandlers{
		fiber.MethodPut: guard(cfg.AdminRequests.UpdateStatus, domain.RoleAdmin, domain.RoleEditor),
	})
	r.register(api, "/admin/requests/:requestId", methodHandlers{
		fiber.MethodDelete: guard(cfg.AdminRequests.Delete, domain.RoleAdmin),
	})

	r.register(api, "/admin/users", methodHandlers{
		fiber.MethodGet:  guard(cfg.Users.List, domain.RoleAdmin),
		fiber.MethodPost: guard(cfg.Users.Create, domain.RoleAdmin),
	})
	r.register(api, "/admin/users/:userId", methodHandlers{
		fiber.MethodDelete: guard(cfg.Users.Delete, domain.RoleAdmin),
	})
}
