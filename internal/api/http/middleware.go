package http

import (
	"context"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/spec-kit/media-request-service/internal/observability"
	apperrors "github.com/spec-kit/media-request-service/pkg/util/errorutil"
)

const (
	corsAllowMethods = "GET,POST,PUT,DELETE,OPTIONS"
	corsAllowHeaders = "Origin,Content-Type,Accept,Authorization,X-Requested-With"
	corsMaxAge       = 86400
)

// MiddlewareConfig controls the global middleware chain.
type MiddlewareConfig struct {
	Timeout      time.Duration
	AllowOrigins string
}

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, cfg MiddlewareConfig) {
	allowOrigins := corsOrigins(cfg.AllowOrigins)

	if cfg.Timeout > 0 {
		app.Use(requestTimeoutMiddleware(cfg.Timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
	app.Use(observability.RequestLogger(logger, metrics))
	// Preflight requests are answered by each route's OPTIONS handler with a 200.
	app.Use(cors.New(cors.Config{
		Next:         func(c *fiber.Ctx) bool { return c.Method() == fiber.MethodOptions },
		AllowOrigins: allowOrigins,
		AllowMethods: corsAllowMethods,
		AllowHeaders: corsAllowHeaders,
		MaxAge:       corsMaxAge,
	}))
}

func corsOrigins(configured string) string {
	if origins := strings.TrimSpace(configured); origins != "" {
		return origins
	}
	return "*"
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func preflightHandler(allowOrigins string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)
		switch {
		case allowOrigins == "*":
			c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
		case origin != "" && originAllowed(allowOrigins, origin):
			c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
			c.Vary(fiber.HeaderOrigin)
		}
		c.Set(fiber.HeaderAccessControlAllowMethods, corsAllowMethods)
		if requested := c.Get(fiber.HeaderAccessControlRequestHeaders); requested != "" {
			c.Set(fiber.HeaderAccessControlAllowHeaders, requested)
		} else {
			c.Set(fiber.HeaderAccessControlAllowHeaders, corsAllowHeaders)
		}
		c.Set(fiber.HeaderAccessControlMaxAge, strconv.Itoa(corsMaxAge))
		return c.SendStatus(fiber.StatusOK)
	}
}

func originAllowed(allowOrigins, origin string) bool {
	for _, candidate := range strings.Split(allowOrigins, ",") {
		if strings.EqualFold(strings.TrimSpace(candidate), origin) {
			return true
		}
	}
	return false
}

// methodNotAllowed terminates requests whose path exists under other methods.
func methodNotAllowed(allowed ...string) fiber.Handler {
	allow := strings.Join(allowed, ", ")
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderAllow, allow)
		return apperrors.NewMethodNotAllowed(c.Method())
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := apperrors.ToDomainError(err)
				if metrics != nil {
					metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
				}
				errBody := fiber.Map{
					"code":    domainErr.Code,
					"message": domainErr.Message,
				}
				if len(domainErr.Details) > 0 {
					errBody["details"] = domainErr.Details
				}
				if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
					logger.Error("request failed", zap.String("path", c.Path()), zap.Error(domainErr))
				}
				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(fiber.Map{
					"success": false,
					"message": domainErr.Message,
					"error":   errBody,
				})
				err = nil
			}
		}()
		return c.Next()
	}
}
