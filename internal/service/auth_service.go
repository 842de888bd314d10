package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/media-request-service/internal/auth"
	"github.com/spec-kit/media-request-service/internal/domain"
	"github.com/spec-kit/media-request-service/internal/repository"
	apperrors "github.com/spec-kit/media-request-service/pkg/util/errorutil"
)

// LoginResult carries the authenticated user and the issued token.
type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthService authenticates console users.
type AuthService struct {
	users    repository.UserRepository
	tokenMgr *auth.TokenManager

	// dummyHash is compared against when the username is unknown so both
	// failure paths cost one bcrypt comparison.
	dummyHash string
}

// NewAuthService builds the service.
func NewAuthService(users repository.UserRepository, tokenMgr *auth.TokenManager, bcryptCost int) (*AuthService, error) {
	dummy, err := auth.HashPassword(uuid.NewString(), bcryptCost)
	if err != nil {
		return nil, err
	}
	return &AuthService{users: users, tokenMgr: tokenMgr, dummyHash: dummy}, nil
}

// Login verifies credentials and issues a bearer token. Unknown users and
// wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.NewValidationError("username and password are required", nil)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewInternalError(err)
		}
		_ = auth.ComparePassword(s.dummyHash, password)
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	out := *user
	out.PasswordHash = ""
	return &LoginResult{User: &out, Token: token, ExpiresAt: exp}, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
