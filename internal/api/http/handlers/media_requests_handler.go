package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/media-request-service/internal/api/dto"
	"github.com/spec-kit/media-request-service/internal/service"
	apperrors "github.com/spec-kit/media-request-service/pkg/util/errorutil"
)

// MediaRequestsHandler serves the public submission and tracking endpoints.
type MediaRequestsHandler struct {
	service *service.MediaRequestService
}

// NewMediaRequestsHandler constructs handler.
func NewMediaRequestsHandler(svc *service.MediaRequestService) *MediaRequestsHandler {
	return &MediaRequestsHandler{service: svc}
}

// Submit POST /media-requests.
func (h *MediaRequestsHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitMediaRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	req.Normalize()

	created, err := h.service.Submit(c.UserContext(), service.SubmitInput{
		RequesterName:       req.RequesterName,
		Organization:        req.Organization,
		Email:               req.Email,
		Phone:               req.Phone,
		MediaTypes:          req.MediaTypes,
		CoverageType:        req.CoverageType,
		EventName:           req.EventName,
		EventDate:           req.EventDate,
		EventTime:           req.EventTime,
		EventLocation:       req.EventLocation,
		ExpectedAudience:    req.ExpectedAudience,
		SpecialRequirements: req.SpecialRequirements,
		Description:         req.Description,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success":        true,
		"message":        "Media request submitted successfully",
		"trackingNumber": created.TrackingID,
		"request":        dto.NewMediaRequestResponse(created),
	})
}

// Track GET /media-requests/track/:trackingId.
func (h *MediaRequestsHandler) Track(c *fiber.Ctx) error {
	req, err := h.service.Track(c.UserContext(), c.Params("trackingId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "request": dto.NewMediaRequestResponse(req)})
}

// Status GET /media-requests/status/:requestId.
func (h *MediaRequestsHandler) Status(c *fiber.Ctx) error {
	status, err := h.service.Status(c.UserContext(), c.Params("requestId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "status": status})
}

// Cancel PUT /media-requests/cancel/:requestId.
func (h *MediaRequestsHandler) Cancel(c *fiber.Ctx) error {
	var req dto.CancelMediaRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	cancelled, err := h.service.Cancel(c.UserContext(), c.Params("requestId"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Media request cancelled",
		"request": dto.NewMediaRequestResponse(cancelled),
	})
}
