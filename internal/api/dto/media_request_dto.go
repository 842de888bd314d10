package dto

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/spec-kit/media-request-service/internal/domain"
)

// StringList accepts either a JSON array of strings or a single string.
// A single string is split on commas.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	parts := strings.Split(one, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*l = out
	return nil
}

// SubmitMediaRequest payload. Legacy field names are accepted alongside
// the canonical ones.
type SubmitMediaRequest struct {
	RequesterName       string     `json:"requesterName"`
	ContactPerson       string     `json:"contactPerson"`
	Organization        string     `json:"organization"`
	Email               string     `json:"email"`
	Phone               string     `json:"phone"`
	MediaTypes          StringList `json:"mediaTypes"`
	MediaType           StringList `json:"mediaType"`
	CoverageType        string     `json:"coverageType"`
	EventType           string     `json:"eventType"`
	EventName           string     `json:"eventName"`
	EventDate           string     `json:"eventDate"`
	EventTime           string     `json:"eventTime"`
	EventLocation       string     `json:"eventLocation"`
	Location            string     `json:"location"`
	ExpectedAudience    string     `json:"expectedAudience"`
	SpecialRequirements string     `json:"specialRequirements"`
	Description         string     `json:"description"`
}

// Normalize folds legacy aliases into the canonical fields.
func (r *SubmitMediaRequest) Normalize() {
	r.RequesterName = firstNonEmpty(r.RequesterName, r.ContactPerson)
	r.CoverageType = firstNonEmpty(r.CoverageType, r.EventType)
	r.EventLocation = firstNonEmpty(r.EventLocation, r.Location)
	if len(r.MediaTypes) == 0 {
		r.MediaTypes = r.MediaType
	}
}

// CancelMediaRequest payload.
type CancelMediaRequest struct {
	Reason string `json:"reason"`
}

// UpdateStatusRequest payload. Comments may arrive under any of the three
// keys; the first present one wins.
type UpdateStatusRequest struct {
	Status             string  `json:"status"`
	Comments           *string `json:"comments"`
	AdminComments      *string `json:"adminComments"`
	AdminCommentsSnake *string `json:"admin_comments"`
}

// ResolvedComments returns the provided comments or nil when absent.
func (r UpdateStatusRequest) ResolvedComments() *string {
	for _, candidate := range []*string{r.Comments, r.AdminComments, r.AdminCommentsSnake} {
		if candidate != nil {
			return candidate
		}
	}
	return nil
}

// MediaRequestResponse is the public representation of a request.
type MediaRequestResponse struct {
	ID                  string               `json:"id"`
	TrackingID          string               `json:"trackingId"`
	TrackingNumber      string               `json:"trackingNumber"`
	RequesterName       string               `json:"requesterName"`
	Organization        string               `json:"organization"`
	Email               string               `json:"email"`
	Phone               string               `json:"phone"`
	MediaTypes          []string             `json:"mediaTypes"`
	CoverageType        string               `json:"coverageType"`
	EventName           string               `json:"eventName"`
	EventDate           string               `json:"eventDate"`
	EventTime           string               `json:"eventTime"`
	EventLocation       string               `json:"eventLocation"`
	ExpectedAudience    string               `json:"expectedAudience"`
	SpecialRequirements string               `json:"specialRequirements"`
	Description         string               `json:"description"`
	Status              domain.RequestStatus `json:"status"`
	AdminComments       *string              `json:"adminComments"`
	CancelReason        *string              `json:"cancelReason"`
	CancelledAt         *time.Time           `json:"cancelledAt"`
	CreatedAt           time.Time            `json:"createdAt"`
	UpdatedAt           time.Time            `json:"updatedAt"`
}

// NewMediaRequestResponse maps a domain request.
func NewMediaRequestResponse(m *domain.MediaRequest) MediaRequestResponse {
	mediaTypes := m.MediaTypes
	if mediaTypes == nil {
		mediaTypes = []string{}
	}
	return MediaRequestResponse{
		ID:                  m.ID,
		TrackingID:          m.TrackingID,
		TrackingNumber:      m.TrackingID,
		RequesterName:       m.RequesterName,
		Organization:        m.Organization,
		Email:               m.Email,
		Phone:               m.Phone,
		MediaTypes:          mediaTypes,
		CoverageType:        m.CoverageType,
		EventName:           m.EventName,
		EventDate:           m.EventDate,
		EventTime:           m.EventTime,
		EventLocation:       m.EventLocation,
		ExpectedAudience:    m.ExpectedAudience,
		SpecialRequirements: m.SpecialRequirements,
		Description:         m.Description,
		Status:              m.Status,
		AdminComments:       m.AdminComments,
		CancelReason:        m.CancelReason,
		CancelledAt:         m.CancelledAt,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

// NewMediaRequestList maps a slice of domain requests.
func NewMediaRequestList(items []domain.MediaRequest) []MediaRequestResponse {
	out := make([]MediaRequestResponse, 0, len(items))
	for i := range items {
		out = append(out, NewMediaRequestResponse(&items[i]))
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
