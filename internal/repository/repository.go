package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/media-request-service/internal/domain"
)

var (
	// ErrNotFound is returned when a lookup matches no record. It is an
	// absent result, not a failure, and never triggers fallback.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned when a unique key (username, tracking id) is taken.
	ErrDuplicateKey = errors.New("duplicate key")
)

// UserRepository defines persistence access for user accounts.
type UserRepository interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) (bool, error)
}

// MediaRequestRepository defines persistence access for media requests.
type MediaRequestRepository interface {
	List(ctx context.Context) ([]domain.MediaRequest, error)
	GetByID(ctx context.Context, id string) (*domain.MediaRequest, error)
	GetByTrackingID(ctx context.Context, trackingID string) (*domain.MediaRequest, error)
	Create(ctx context.Context, request *domain.MediaRequest) error
	Update(ctx context.Context, id string, patch domain.MediaRequestPatch) (*domain.MediaRequest, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// IsAbsentOrConflict reports errors that are part of the store contract
// rather than backend failures.
func IsAbsentOrConflict(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicateKey)
}
