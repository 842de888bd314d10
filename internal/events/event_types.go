package events

import (
	"time"

	"github.com/spec-kit/media-request-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestSubmitted     EventType = "media_request_submitted"
	EventRequestStatusChanged EventType = "media_request_status_changed"
	EventRequestCancelled     EventType = "media_request_cancelled"
	EventRequestDeleted       EventType = "media_request_deleted"
)

// AllEventTypes lists every event the services publish.
var AllEventTypes = []EventType{
	EventRequestSubmitted,
	EventRequestStatusChanged,
	EventRequestCancelled,
	EventRequestDeleted,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	RequestID  string      `json:"request_id"`
	TrackingID string      `json:"tracking_id"`
	ActorID    *string     `json:"actor_id,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// RequestSubmittedPayload payload.
type RequestSubmittedPayload struct {
	Organization string `json:"organization"`
	Email        string `json:"email"`
	EventName    string `json:"event_name"`
	EventDate    string `json:"event_date"`
}

// RequestStatusChangedPayload payload.
type RequestStatusChangedPayload struct {
	OldStatus domain.RequestStatus `json:"old_status"`
	NewStatus domain.RequestStatus `json:"new_status"`
	Comment   string               `json:"comment,omitempty"`
}

// RequestCancelledPayload payload.
type RequestCancelledPayload struct {
	OldStatus domain.RequestStatus `json:"old_status"`
	Reason    string               `json:"reason,omitempty"`
}
