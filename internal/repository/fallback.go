package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/media-request-service/internal/domain"
)

// Both wrappers below send each call to the durable repository first. When it
// fails with anything but an absent or conflict result, the failure is logged
// and the same call runs once against the in-process store. The fallback is
// per call, so a flaky backend can return different answers across requests.

type fallbackUsers struct {
	primary   UserRepository
	secondary UserRepository
	logger    *zap.Logger
}

// NewFallbackUserRepository wraps primary with a per-call fallback.
func NewFallbackUserRepository(primary, secondary UserRepository, logger *zap.Logger) UserRepository {
	return &fallbackUsers{primary: primary, secondary: secondary, logger: logger}
}

func (f *fallbackUsers) degrade(op string, err error) bool {
	if err == nil || IsAbsentOrConflict(err) {
		return false
	}
	f.logger.Warn("durable user store failed; using in-memory fallback", zap.String("op", op), zap.Error(err))
	return true
}

func (f *fallbackUsers) List(ctx context.Context) ([]domain.User, error) {
	users, err := f.primary.List(ctx)
	if f.degrade("list", err) {
		return f.secondary.List(ctx)
	}
	return users, err
}

func (f *fallbackUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := f.primary.GetByID(ctx, id)
	if f.degrade("get_by_id", err) {
		return f.secondary.GetByID(ctx, id)
	}
	return user, err
}

func (f *fallbackUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := f.primary.GetByUsername(ctx, username)
	if f.degrade("get_by_username", err) {
		return f.secondary.GetByUsername(ctx, username)
	}
	return user, err
}

func (f *fallbackUsers) Create(ctx context.Context, user *domain.User) error {
	err := f.primary.Create(ctx, user)
	if f.degrade("create", err) {
		return f.secondary.Create(ctx, user)
	}
	return err
}

func (f *fallbackUsers) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := f.primary.Delete(ctx, id)
	if f.degrade("delete", err) {
		return f.secondary.Delete(ctx, id)
	}
	return deleted, err
}

type fallbackRequests struct {
	primary   MediaRequestRepository
	secondary MediaRequestRepository
	logger    *zap.Logger
}

// NewFallbackMediaRequestRepository wraps primary with a per-call fallback.
func NewFallbackMediaRequestRepository(primary, secondary MediaRequestRepository, logger *zap.Logger) MediaRequestRepository {
	return &fallbackRequests{primary: primary, secondary: secondary, logger: logger}
}

func (f *fallbackRequests) degrade(op string, err error) bool {
	if err == nil || IsAbsentOrConflict(err) {
		return false
	}
	f.logger.Warn("durable media request store failed; using in-memory fallback", zap.String("op", op), zap.Error(err))
	return true
}

func (f *fallbackRequests) List(ctx context.Context) ([]domain.MediaRequest, error) {
	items, err := f.primary.List(ctx)
	if f.degrade("list", err) {
		return f.secondary.List(ctx)
	}
	return items, err
}

func (f *fallbackRequests) GetByID(ctx context.Context, id string) (*domain.MediaRequest, error) {
	req, err := f.primary.GetByID(ctx, id)
	if f.degrade("get_by_id", err) {
		return f.secondary.GetByID(ctx, id)
	}
	return req, err
}

func (f *fallbackRequests) GetByTrackingID(ctx context.Context, trackingID string) (*domain.MediaRequest, error) {
	req, err := f.primary.GetByTrackingID(ctx, trackingID)
	if f.degrade("get_by_tracking_id", err) {
		return f.secondary.GetByTrackingID(ctx, trackingID)
	}
	return req, err
}

func (f *fallbackRequests) Create(ctx context.Context, req *domain.MediaRequest) error {
	err := f.primary.Create(ctx, req)
	if f.degrade("create", err) {
		return f.secondary.Create(ctx, req)
	}
	return err
}

func (f *fallbackRequests) Update(ctx context.Context, id string, patch domain.MediaRequestPatch) (*domain.MediaRequest, error) {
	req, err := f.primary.Update(ctx, id, patch)
	if f.degrade("update", err) {
		return f.secondary.Update(ctx, id, patch)
	}
	return req, err
}

func (f *fallbackRequests) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := f.primary.Delete(ctx, id)
	if f.degrade("delete", err) {
		return f.secondary.Delete(ctx, id)
	}
	return deleted, err
}
