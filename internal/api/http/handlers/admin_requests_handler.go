package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/media-request-service/internal/api/dto"
	"github.com/spec-kit/media-request-service/internal/auth"
	"github.com/spec-kit/media-request-service/internal/domain"
	"github.com/spec-kit/media-request-service/internal/service"
	apperrors "github.com/spec-kit/media-request-service/pkg/util/errorutil"
)

// AdminRequestsHandler serves the admin console request endpoints.
type AdminRequestsHandler struct {
	service *service.MediaRequestService
}

// NewAdminRequestsHandler constructs handler.
func NewAdminRequestsHandler(svc *service.MediaRequestService) *AdminRequestsHandler {
	return &AdminRequestsHandler{service: svc}
}

// List GET /admin/requests.
func (h *AdminRequestsHandler) List(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewMediaRequestList(items))
}

// UpdateStatus PUT /admin/requests/:requestId/status.
func (h *AdminRequestsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}

	updated, err := h.service.UpdateStatus(c.UserContext(), c.Params("requestId"), service.StatusUpdateInput{
		Status:   domain.RequestStatus(req.Status),
		Comments: req.ResolvedComments(),
		ActorID:  actorID(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Status updated",
		"request": dto.NewMediaRequestResponse(updated),
	})
}

// Delete DELETE /admin/requests/:requestId.
func (h *AdminRequestsHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("requestId"), actorID(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Media request deleted"})
}

// actorID returns the authenticated user id, or nil when auth is disabled.
func actorID(c *fiber.Ctx) *string {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil
	}
	id := principal.User.ID
	return &id
}
