package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/media-request-service/internal/domain"
	"github.com/spec-kit/media-request-service/internal/events"
	"github.com/spec-kit/media-request-service/internal/repository"
	apperrors "github.com/spec-kit/media-request-service/pkg/util/errorutil"
)

const maxTrackingAttempts = 3

// MediaRequestService coordinates the media request workflow.
type MediaRequestService struct {
	requests   repository.MediaRequestRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
	tracking   TrackingGenerator
}

// MediaRequestDependencies bundles collaborators for the service.
type MediaRequestDependencies struct {
	Requests   repository.MediaRequestRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Now        func() time.Time
	Tracking   TrackingGenerator
}

// SubmitInput describes a new media request.
type SubmitInput struct {
	RequesterName       string
	Organization        string
	Email               string
	Phone               string
	MediaTypes          []string
	CoverageType        string
	EventName           string
	EventDate           string
	EventTime           string
	EventLocation       string
	ExpectedAudience    string
	SpecialRequirements string
	Description         string
}

// StatusUpdateInput describes an admin status change. A nil Comments leaves
// the stored comments untouched.
type StatusUpdateInput struct {
	Status   domain.RequestStatus
	Comments *string
	ActorID  *string
}

// NewMediaRequestService constructs the service.
func NewMediaRequestService(deps MediaRequestDependencies) *MediaRequestService {
	svc := &MediaRequestService{
		requests:   deps.Requests,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        deps.Now,
		tracking:   deps.Tracking,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.tracking == nil {
		svc.tracking = GenerateTrackingID
	}
	return svc
}

// Submit validates and stores a new request in pending status.
func (s *MediaRequestService) Submit(ctx context.Context, input SubmitInput) (*domain.MediaRequest, error) {
	if err := validateSubmit(&input); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	req := &domain.MediaRequest{
		ID:                  uuid.NewString(),
		RequesterName:       input.RequesterName,
		Organization:        input.Organization,
		Email:               input.Email,
		Phone:               input.Phone,
		MediaTypes:          input.MediaTypes,
		CoverageType:        input.CoverageType,
		EventName:           input.EventName,
		EventDate:           input.EventDate,
		EventTime:           input.EventTime,
		EventLocation:       input.EventLocation,
		ExpectedAudience:    input.ExpectedAudience,
		SpecialRequirements: input.SpecialRequirements,
		Description:         input.Description,
		Status:              domain.StatusPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if req.MediaTypes == nil {
		req.MediaTypes = []string{}
	}

	var err error
	for attempt := 0; attempt < maxTrackingAttempts; attempt++ {
		req.TrackingID = s.tracking(now)
		err = s.requests.Create(ctx, req)
		if !errors.Is(err, repository.ErrDuplicateKey) {
			break
		}
		s.logger.Warn("tracking id collision; reissuing", zap.String("tracking_id", req.TrackingID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventRequestSubmitted,
		RequestID:  req.ID,
		TrackingID: req.TrackingID,
		Payload: events.RequestSubmittedPayload{
			Organization: req.Organization,
			Email:        req.Email,
			EventName:    req.EventName,
			EventDate:    req.EventDate,
		},
	})
	return req, nil
}

// Track looks a request up by its tracking code.
func (s *MediaRequestService) Track(ctx context.Context, trackingID string) (*domain.MediaRequest, error) {
	trackingID = strings.TrimSpace(trackingID)
	if trackingID == "" {
		return nil, apperrors.NewValidationError("tracking id is required", nil)
	}
	req, err := s.requests.GetByTrackingID(ctx, trackingID)
	if err != nil {
		return nil, mapStoreError(err, "request")
	}
	return req, nil
}

// Get looks a request up by its internal id.
func (s *MediaRequestService) Get(ctx context.Context, requestID string) (*domain.MediaRequest, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return nil, apperrors.NewValidationError("request id is required", nil)
	}
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, mapStoreError(err, "request")
	}
	return req, nil
}

// Status returns only the status of a request.
func (s *MediaRequestService) Status(ctx context.Context, requestID string) (domain.RequestStatus, error) {
	req, err := s.Get(ctx, requestID)
	if err != nil {
		return "", err
	}
	return req.Status, nil
}

// List returns every request, newest first.
func (s *MediaRequestService) List(ctx context.Context) ([]domain.MediaRequest, error) {
	items, err := s.requests.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return items, nil
}

// Cancel marks a request cancelled on behalf of the requester. Terminal
// requests cannot be cancelled.
func (s *MediaRequestService) Cancel(ctx context.Context, requestID, reason string) (*domain.MediaRequest, error) {
	req, err := s.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !domain.CanCancel(req.Status) {
		return nil, apperrors.NewInvalidTransition(string(req.Status), string(domain.StatusCancelled))
	}

	status := domain.StatusCancelled
	now := s.now().UTC()
	reason = strings.TrimSpace(reason)
	updated, err := s.requests.Update(ctx, req.ID, domain.MediaRequestPatch{
		Status:       &status,
		CancelReason: &reason,
		CancelledAt:  &now,
	})
	if err != nil {
		return nil, mapStoreError(err, "request")
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventRequestCancelled,
		RequestID:  updated.ID,
		TrackingID: updated.TrackingID,
		Payload: events.RequestCancelledPayload{
			OldStatus: req.Status,
			Reason:    reason,
		},
	})
	return updated, nil
}

// UpdateStatus applies an admin status change with optional comments.
func (s *MediaRequestService) UpdateStatus(ctx context.Context, requestID string, input StatusUpdateInput) (*domain.MediaRequest, error) {
	next := domain.RequestStatus(strings.ToLower(strings.TrimSpace(string(input.Status))))
	if !next.AdminSettable() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{
			"allowed": []domain.RequestStatus{domain.StatusPending, domain.StatusApproved, domain.StatusRejected, domain.StatusCompleted},
		})
	}

	req, err := s.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(req.Status, next) {
		return nil, apperrors.NewInvalidTransition(string(req.Status), string(next))
	}

	updated, err := s.requests.Update(ctx, req.ID, domain.MediaRequestPatch{
		Status:        &next,
		AdminComments: input.Comments,
	})
	if err != nil {
		return nil, mapStoreError(err, "request")
	}

	comment := ""
	if input.Comments != nil {
		comment = *input.Comments
	}
	s.publishEvent(ctx, events.Event{
		Type:       events.EventRequestStatusChanged,
		RequestID:  updated.ID,
		TrackingID: updated.TrackingID,
		ActorID:    input.ActorID,
		Payload: events.RequestStatusChangedPayload{
			OldStatus: req.Status,
			NewStatus: next,
			Comment:   comment,
		},
	})
	return updated, nil
}

// Delete removes a request permanently.
func (s *MediaRequestService) Delete(ctx context.Context, requestID string, actorID *string) error {
	req, err := s.Get(ctx, requestID)
	if err != nil {
		return err
	}
	deleted, err := s.requests.Delete(ctx, req.ID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if !deleted {
		return apperrors.NewNotFound("request", nil)
	}
	s.publishEvent(ctx, events.Event{
		Type:       events.EventRequestDeleted,
		RequestID:  req.ID,
		TrackingID: req.TrackingID,
		ActorID:    actorID,
	})
	return nil
}

func (s *MediaRequestService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

var acceptedDateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05.000Z07:00"}

func validateSubmit(input *SubmitInput) error {
	input.RequesterName = strings.TrimSpace(input.RequesterName)
	input.Organization = strings.TrimSpace(input.Organization)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	input.CoverageType = strings.TrimSpace(input.CoverageType)
	input.EventName = strings.TrimSpace(input.EventName)
	input.EventDate = strings.TrimSpace(input.EventDate)
	input.EventTime = strings.TrimSpace(input.EventTime)
	input.EventLocation = strings.TrimSpace(input.EventLocation)
	input.Description = strings.TrimSpace(input.Description)
	input.MediaTypes = cleanList(input.MediaTypes)

	details := map[string]any{}
	if input.Organization == "" && input.RequesterName == "" {
		details["organization"] = "organization or requesterName is required"
	}
	if input.Email == "" {
		details["email"] = "email is required"
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		details["email"] = "email is invalid"
	}
	if input.EventDate != "" && !validDate(input.EventDate) {
		details["eventDate"] = "eventDate must be YYYY-MM-DD or RFC3339"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid media request", details)
	}
	return nil
}

func validDate(value string) bool {
	for _, layout := range acceptedDateLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func mapStoreError(err error, resource string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, nil)
	}
	return apperrors.NewInternalError(err)
}
