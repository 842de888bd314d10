package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/media-request-service/internal/domain"
	"github.com/spec-kit/media-request-service/internal/repository"
	apperrors "github.com/spec-kit/media-request-service/pkg/util/errorutil"
)

func TestHashAndCompare(t *testing.T) {
	hash, err := HashPassword("admin123", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "admin123" {
		t.Fatal("password stored in plaintext")
	}
	if err := ComparePassword(hash, "admin123"); err != nil {
		t.Errorf("expected match, got %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err == nil {
		t.Error("expected mismatch")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)
	user := &domain.User{ID: "u1", Username: "admin", Role: domain.RoleAdmin}

	token, exp, err := tm.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Error("expiry should be in the future")
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if claims.Subject != "u1" || claims.Role != domain.RoleAdmin || claims.Username != "admin" {
		t.Errorf("unexpected claims: %+v", claims)
	}

	other := NewTokenManager("other-secret", time.Minute)
	if _, err := other.ParseToken(token); err == nil {
		t.Error("token signed with a different secret must be rejected")
	}
}

func newProtectedApp(t *testing.T, roles ...domain.Role) (*fiber.App, *TokenManager, repository.UserRepository) {
	t.Helper()
	users := repository.NewMemoryStore().Users()
	tm := NewTokenManager("secret", time.Minute)
	mw := NewAuthMiddleware(tm, users)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	app.Get("/admin", mw.Handle, RequireRole(roles...), func(c *fiber.Ctx) error {
		principal, _ := PrincipalFromContext(c)
		return c.SendString(principal.User.Username)
	})
	return app, tm, users
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	app, _, _ := newProtectedApp(t, domain.RoleAdmin)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin", nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
}

func TestMiddlewareRoleChecks(t *testing.T) {
	app, tm, users := newProtectedApp(t, domain.RoleAdmin)
	ctx := context.Background()

	admin := &domain.User{Username: "admin", Role: domain.RoleAdmin}
	editor := &domain.User{Username: "editor", Role: domain.RoleEditor}
	_ = users.Create(ctx, admin)
	_ = users.Create(ctx, editor)

	cases := []struct {
		user *domain.User
		want int
	}{
		{admin, http.StatusOK},
		{editor, http.StatusForbidden},
	}
	for _, tc := range cases {
		token, _, err := tm.GenerateToken(tc.user)
		if err != nil {
			t.Fatalf("GenerateToken failed: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.user.Username, tc.want, resp.StatusCode)
		}
	}
}

func TestMiddlewareRejectsDeletedUser(t *testing.T) {
	app, tm, users := newProtectedApp(t)
	ctx := context.Background()

	user := &domain.User{Username: "gone", Role: domain.RoleAdmin}
	_ = users.Create(ctx, user)
	token, _, _ := tm.GenerateToken(user)
	_, _ = users.Delete(ctx, user.ID)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
}
