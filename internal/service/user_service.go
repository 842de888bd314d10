package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/media-request-service/internal/auth"
	"github.com/spec-kit/media-request-service/internal/config"
	"github.com/spec-kit/media-request-service/internal/domain"
	"github.com/spec-kit/media-request-service/internal/repository"
	apperrors "github.com/spec-kit/media-request-service/pkg/util/errorutil"
)

// UserService manages admin console accounts.
type UserService struct {
	users      repository.UserRepository
	logger     *zap.Logger
	bcryptCost int
	now        func() time.Time
}

// CreateUserInput describes a new account.
type CreateUserInput struct {
	Username string
	Password string
	Role     domain.Role
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, logger *zap.Logger, bcryptCost int) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, logger: logger, bcryptCost: bcryptCost, now: time.Now}
}

// List returns all accounts without password material.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// Create validates and stores a new account. Role defaults to user.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	if input.Role == "" {
		input.Role = domain.RoleUser
	}

	details := map[string]any{}
	if input.Username == "" {
		details["username"] = "username is required"
	}
	if input.Password == "" {
		details["password"] = "password is required"
	}
	if !input.Role.Valid() {
		details["role"] = "role must be one of admin, editor, user"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid user", details)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     input.Username,
		PasswordHash: hash,
		Role:         input.Role,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, apperrors.NewDuplicateKey("username already exists", map[string]any{"username": input.Username})
		}
		return nil, apperrors.NewInternalError(err)
	}

	out := *user
	out.PasswordHash = ""
	return &out, nil
}

// Delete removes an account.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return apperrors.NewValidationError("user id is required", nil)
	}
	deleted, err := s.users.Delete(ctx, userID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if !deleted {
		return apperrors.NewNotFound("user", nil)
	}
	return nil
}

// EnsureDefaultUsers seeds the configured admin and editor accounts when
// they are missing. Existing accounts are left untouched.
func (s *UserService) EnsureDefaultUsers(ctx context.Context, cfg config.SeedConfig) error {
	if !cfg.Enabled {
		return nil
	}
	seeds := []CreateUserInput{
		{Username: cfg.AdminUsername, Password: cfg.AdminPassword, Role: domain.RoleAdmin},
		{Username: cfg.EditorUsername, Password: cfg.EditorPassword, Role: domain.RoleEditor},
	}
	for _, seed := range seeds {
		if strings.TrimSpace(seed.Username) == "" || seed.Password == "" {
			continue
		}
		_, err := s.Create(ctx, seed)
		switch {
		case err == nil:
			s.logger.Info("seeded default user", zap.String("username", seed.Username), zap.String("role", string(seed.Role)))
		case apperrors.HasCode(err, apperrors.CodeDuplicateKey):
		default:
			return err
		}
	}
	return nil
}
