package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/media-request-service/internal/observability"
	"github.com/spec-kit/media-request-service/internal/repository"
)

// Pinger is a dependency that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName  string
	version      string
	store        *repository.Store
	dependencies map[string]Pinger
	metrics      *observability.Metrics
	logger       *zap.Logger
}

// HealthDependencies bundles what the health endpoints report on. Only
// configured backends belong in Dependencies.
type HealthDependencies struct {
	Store        *repository.Store
	Dependencies map[string]Pinger
	Metrics      *observability.Metrics
	Logger       *zap.Logger
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, deps HealthDependencies) *HealthHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{
		serviceName:  serviceName,
		version:      version,
		store:        deps.Store,
		dependencies: deps.Dependencies,
		metrics:      deps.Metrics,
		logger:       logger,
	}
}

// Health reports which record store backs the process.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	database := repository.BackendMemory
	state := repository.StateUnconfigured
	if h.store != nil {
		database = h.store.Backend
		state = h.store.State
	}
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"database":  database,
		"state":     state,
	})
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking configured dependencies.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true
	for name, dep := range h.dependencies {
		if err := dep.Ping(ctx); err != nil {
			// Driver errors can carry hosts and credentials; keep them in the log.
			h.logger.Warn("readiness check failed", zap.String("dependency", name), zap.Error(err))
			depStatus[name] = "unavailable"
			ready = false
			continue
		}
		depStatus[name] = "ok"
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"success": false,
		"message": "one or more dependencies unavailable",
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": depStatus,
		},
	})
}

// Metrics exposes the in-memory counters.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(h.metrics.Snapshot())
}
