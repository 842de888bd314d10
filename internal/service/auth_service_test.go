package service

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/media-request-service/internal/auth"
	"github.com/spec-kit/media-request-service/internal/domain"
	"github.com/spec-kit/media-request-service/internal/repository"
	apperrors "github.com/spec-kit/media-request-service/pkg/util/errorutil"
)

func TestLogin(t *testing.T) {
	repo := repository.NewMemoryStore().Users()
	users := NewUserService(repo, nil, bcrypt.MinCost)
	ctx := context.Background()
	if _, err := users.Create(ctx, CreateUserInput{Username: "admin", Password: "admin123", Role: domain.RoleAdmin}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	tokens := auth.NewTokenManager("secret", time.Hour)
	svc, err := NewAuthService(repo, tokens, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewAuthService failed: %v", err)
	}

	result, err := svc.Login(ctx, "admin", "admin123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.User.Role != domain.RoleAdmin || result.User.PasswordHash != "" {
		t.Errorf("unexpected user in result: %+v", result.User)
	}
	claims, err := tokens.ParseToken(result.Token)
	if err != nil || claims.Subject != result.User.ID {
		t.Errorf("issued token invalid: %+v (%v)", claims, err)
	}

	_, wrongPw := svc.Login(ctx, "admin", "nope")
	_, unknown := svc.Login(ctx, "ghost", "admin123")
	assertCode(t, wrongPw, apperrors.CodeUnauthorized)
	assertCode(t, unknown, apperrors.CodeUnauthorized)
	if wrongPw.Error() != unknown.Error() {
		t.Errorf("login failures must be indistinguishable: %q vs %q", wrongPw, unknown)
	}

	_, err = svc.Login(ctx, "", "")
	assertCode(t, err, apperrors.CodeValidationFailed)
}
