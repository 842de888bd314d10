package domain

import "time"

// RequestStatus enumerates lifecycle states for media requests.
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
	StatusCompleted RequestStatus = "completed"
	StatusCancelled RequestStatus = "cancelled"
)

// MediaRequest is a request for media coverage of an event.
type MediaRequest struct {
	ID                  string        `json:"id"`
	TrackingID          string        `json:"trackingId"`
	RequesterName       string        `json:"requesterName"`
	Organization        string        `json:"organization"`
	Email               string        `json:"email"`
	Phone               string        `json:"phone"`
	MediaTypes          []string      `json:"mediaTypes"`
	CoverageType        string        `json:"coverageType"`
	EventName           string        `json:"eventName"`
	EventDate           string        `json:"eventDate"`
	EventTime           string        `json:"eventTime"`
	EventLocation       string        `json:"eventLocation"`
	ExpectedAudience    string        `json:"expectedAudience"`
	SpecialRequirements string        `json:"specialRequirements"`
	Description         string        `json:"description"`
	Status              RequestStatus `json:"status"`
	AdminComments       *string       `json:"adminComments"`
	CancelReason        *string       `json:"cancelReason"`
	CancelledAt         *time.Time    `json:"cancelledAt"`
	CreatedAt           time.Time     `json:"createdAt"`
	UpdatedAt           time.Time     `json:"updatedAt"`
}

// Clone returns a deep copy so callers never share slices or pointers with a store.
func (m *MediaRequest) Clone() *MediaRequest {
	if m == nil {
		return nil
	}
	out := *m
	if m.MediaTypes != nil {
		out.MediaTypes = append([]string(nil), m.MediaTypes...)
	}
	if m.AdminComments != nil {
		v := *m.AdminComments
		out.AdminComments = &v
	}
	if m.CancelReason != nil {
		v := *m.CancelReason
		out.CancelReason = &v
	}
	if m.CancelledAt != nil {
		v := *m.CancelledAt
		out.CancelledAt = &v
	}
	return &out
}

// MediaRequestPatch is a shallow partial update; nil fields are left unchanged.
type MediaRequestPatch struct {
	Status        *RequestStatus
	AdminComments *string
	CancelReason  *string
	CancelledAt   *time.Time
}

// Apply merges the patch into the request and stamps UpdatedAt.
func (p MediaRequestPatch) Apply(m *MediaRequest, now time.Time) {
	if p.Status != nil {
		m.Status = *p.Status
	}
	if p.AdminComments != nil {
		v := *p.AdminComments
		m.AdminComments = &v
	}
	if p.CancelReason != nil {
		v := *p.CancelReason
		m.CancelReason = &v
	}
	if p.CancelledAt != nil {
		v := *p.CancelledAt
		m.CancelledAt = &v
	}
	m.UpdatedAt = now
}
