package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/media-request-service/internal/api/http/handlers"
	"github.com/spec-kit/media-request-service/internal/auth"
	"github.com/spec-kit/media-request-service/internal/config"
	"github.com/spec-kit/media-request-service/internal/events"
	"github.com/spec-kit/media-request-service/internal/observability"
	"github.com/spec-kit/media-request-service/internal/repository"
	"github.com/spec-kit/media-request-service/internal/service"
)

func newTestApp(t *testing.T, authEnabled bool) *fiber.App {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	store := repository.NewStore(repository.Backends{}, logger)

	requests := service.NewMediaRequestService(service.MediaRequestDependencies{
		Requests:   store.MediaRequests,
		Dispatcher: events.NewInMemoryDispatcher(),
		Logger:     logger,
	})
	users := service.NewUserService(store.Users, logger, bcrypt.MinCost)
	if err := users.EnsureDefaultUsers(context.Background(), config.SeedConfig{
		Enabled:        true,
		AdminUsername:  "admin",
		AdminPassword:  "admin123",
		EditorUsername: "editor",
		EditorPassword: "editor123",
	}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	authService, err := service.NewAuthService(store.Users, tokens, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewAuthService failed: %v", err)
	}

	return NewServer(ServerConfig{
		AppName: "media-request-service",
		Routes: RouteConfig{
			BasePath:       "/api",
			AuthEnabled:    authEnabled,
			Health:         handlers.NewHealthHandler("media-request-service", "test", handlers.HealthDependencies{Store: store, Metrics: metrics}),
			MediaRequests:  handlers.NewMediaRequestsHandler(requests),
			AdminRequests:  handlers.NewAdminRequestsHandler(requests),
			Users:          handlers.NewUsersHandler(users),
			Auth:           handlers.NewAuthHandler(authService),
			AuthMiddleware: auth.NewAuthMiddleware(tokens, store.Users),
		},
	}, logger, metrics)
}

func do(t *testing.T, app *fiber.App, method, path string, body any, token string) (*nethttp.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, raw)
		}
	}
	return resp, out
}

func login(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()
	resp, body := do(t, app, nethttp.MethodPost, "/api/auth/login", map[string]string{"username": username, "password": password}, "")
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("login %s: expected 200, got %d", username, resp.StatusCode)
	}
	token, _ := body["token"].(string)
	return token
}

func TestSubmitAndTrackEndToEnd(t *testing.T) {
	app := newTestApp(t, true)

	resp, body := do(t, app, nethttp.MethodPost, "/api/media-requests", map[string]string{
		"organization": "Acme",
		"email":        "a@b.com",
		"eventDate":    "2025-01-01",
		"description":  "Launch",
	}, "")
	if resp.StatusCode != nethttp.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", resp.StatusCode, body)
	}
	tracking, _ := body["trackingNumber"].(string)
	if !regexp.MustCompile(`^REQ-\d+.*`).MatchString(tracking) {
		t.Fatalf("unexpected tracking number %q", tracking)
	}
	created := body["request"].(map[string]any)
	if created["status"] != "pending" {
		t.Errorf("expected pending, got %v", created["status"])
	}

	resp, body = do(t, app, nethttp.MethodGet, "/api/media-requests/track/"+tracking, nil, "")
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("track: expected 200, got %d", resp.StatusCode)
	}
	tracked := body["request"].(map[string]any)
	if tracked["organization"] != "Acme" || tracked["status"] != "pending" {
		t.Errorf("tracked record differs: %v", tracked)
	}

	resp, body = do(t, app, nethttp.MethodGet, "/api/media-requests/status/"+created["id"].(string), nil, "")
	if resp.StatusCode != nethttp.StatusOK || body["status"] != "pending" {
		t.Errorf("status: got %d %v", resp.StatusCode, body)
	}
}

func TestSubmitValidationEnvelope(t *testing.T) {
	app := newTestApp(t, true)

	resp, body := do(t, app, nethttp.MethodPost, "/api/media-requests", map[string]string{"organization": "Acme"}, "")
	if resp.StatusCode != nethttp.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if body["success"] != false {
		t.Errorf("expected success=false, got %v", body["success"])
	}
	errBody, _ := body["error"].(map[string]any)
	if errBody["code"] != "VALIDATION_FAILED" {
		t.Errorf("unexpected error body %v", body)
	}
}

func TestTrackUnknownReturns404(t *testing.T) {
	app := newTestApp(t, true)
	resp, body := do(t, app, nethttp.MethodGet, "/api/media-requests/track/REQ-0-deadbeef", nil, "")
	if resp.StatusCode != nethttp.StatusNotFound || body["success"] != false {
		t.Errorf("expected 404 envelope, got %d %v", resp.StatusCode, body)
	}
}

func TestUnknownPathsReturn404(t *testing.T) {
	app := newTestApp(t, true)

	for _, tc := range []struct{ method, path string }{
		{nethttp.MethodGet, "/nope"},
		{nethttp.MethodGet, "/api/nope"},
		{nethttp.MethodPut, "/api/admin/requests/abc/statusx"},
		{nethttp.MethodGet, "/api/admin/requests/abc/statusx"},
		{nethttp.MethodOptions, "/api/does-not-exist"},
	} {
		resp, body := do(t, app, tc.method, tc.path, nil, "")
		if resp.StatusCode != nethttp.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", tc.method, tc.path, resp.StatusCode)
		}
		if resp.Header.Get("Allow") != "" {
			t.Errorf("%s %s: unexpected Allow header %q", tc.method, tc.path, resp.Header.Get("Allow"))
		}
		if tc.method != nethttp.MethodOptions {
			if errBody, _ := body["error"].(map[string]any); errBody["code"] != "NOT_FOUND" {
				t.Errorf("%s %s: unexpected body %v", tc.method, tc.path, body)
			}
		}
	}
}

func TestEmptyIdentifiersAreValidationErrors(t *testing.T) {
	app := newTestApp(t, true)

	for _, tc := range []struct{ method, path string }{
		{nethttp.MethodGet, "/api/media-requests/track/"},
		{nethttp.MethodGet, "/api/media-requests/track"},
		{nethttp.MethodGet, "/api/media-requests/status/"},
		{nethttp.MethodPut, "/api/media-requests/cancel/"},
	} {
		resp, body := do(t, app, tc.method, tc.path, nil, "")
		if resp.StatusCode != nethttp.StatusBadRequest {
			t.Errorf("%s %s: expected 400, got %d", tc.method, tc.path, resp.StatusCode)
			continue
		}
		if errBody, _ := body["error"].(map[string]any); errBody["code"] != "VALIDATION_FAILED" {
			t.Errorf("%s %s: unexpected body %v", tc.method, tc.path, body)
		}
	}
}

func TestHeadServesGetRoutes(t *testing.T) {
	app := newTestApp(t, true)

	for _, tc := range []struct {
		path string
		want int
	}{
		{"/api/health", nethttp.StatusOK},
		{"/health/live", nethttp.StatusOK},
		{"/api/media-requests/track/REQ-0-deadbeef", nethttp.StatusNotFound},
	} {
		resp, err := app.Test(httptest.NewRequest(nethttp.MethodHead, tc.path, nil), -1)
		if err != nil {
			t.Fatalf("HEAD %s failed: %v", tc.path, err)
		}
		if resp.StatusCode != tc.want {
			t.Errorf("HEAD %s: expected %d, got %d", tc.path, tc.want, resp.StatusCode)
		}
	}

	resp, _ := do(t, app, nethttp.MethodPost, "/api/health", nil, "")
	if allow := resp.Header.Get("Allow"); allow != "GET, HEAD, OPTIONS" {
		t.Errorf("unexpected Allow header %q", allow)
	}
}

func TestCancelEndpoint(t *testing.T) {
	app := newTestApp(t, true)

	resp, _ := do(t, app, nethttp.MethodPut, "/api/media-requests/cancel/missing", map[string]string{"reason": "x"}, "")
	if resp.StatusCode != nethttp.StatusNotFound {
		t.Errorf("expected 404 for unknown request, got %d", resp.StatusCode)
	}

	_, body := do(t, app, nethttp.MethodPost, "/api/media-requests", map[string]string{"organization": "Acme", "email": "a@b.com"}, "")
	id := body["request"].(map[string]any)["id"].(string)

	resp, body = do(t, app, nethttp.MethodPut, "/api/media-requests/cancel/"+id, map[string]string{"reason": "moved"}, "")
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("cancel: expected 200, got %d", resp.StatusCode)
	}
	cancelled := body["request"].(map[string]any)
	if cancelled["status"] != "cancelled" || cancelled["cancelledAt"] == nil {
		t.Errorf("unexpected cancelled record %v", cancelled)
	}

	resp, _ = do(t, app, nethttp.MethodPut, "/api/media-requests/cancel/"+id, nil, "")
	if resp.StatusCode != nethttp.StatusConflict {
		t.Errorf("second cancel: expected 409, got %d", resp.StatusCode)
	}
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	app := newTestApp(t, true)

	resp, _ := do(t, app, nethttp.MethodGet, "/api/admin/requests", nil, "")
	if resp.StatusCode != nethttp.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}

	editor := login(t, app, "editor", "editor123")
	resp, _ = do(t, app, nethttp.MethodGet, "/api/admin/requests", nil, editor)
	if resp.StatusCode != nethttp.StatusOK {
		t.Errorf("editor list: expected 200, got %d", resp.StatusCode)
	}
	resp, _ = do(t, app, nethttp.MethodGet, "/api/admin/users", nil, editor)
	if resp.StatusCode != nethttp.StatusForbidden {
		t.Errorf("editor users: expected 403, got %d", resp.StatusCode)
	}
}

func TestAdminStatusWorkflow(t *testing.T) {
	app := newTestApp(t, true)
	admin := login(t, app, "admin", "admin123")

	_, body := do(t, app, nethttp.MethodPost, "/api/media-requests", map[string]string{"organization": "Acme", "email": "a@b.com"}, "")
	id := body["request"].(map[string]any)["id"].(string)

	resp, body := do(t, app, nethttp.MethodPut, "/api/admin/requests/"+id+"/status", map[string]string{"status": "approved", "comments": "ok"}, admin)
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("approve: expected 200, got %d %v", resp.StatusCode, body)
	}
	updated := body["request"].(map[string]any)
	if updated["status"] != "approved" || updated["adminComments"] != "ok" || updated["organization"] != "Acme" {
		t.Errorf("unexpected update %v", updated)
	}

	resp, _ = do(t, app, nethttp.MethodPut, "/api/admin/requests/"+id+"/status", map[string]string{"status": "pending"}, admin)
	if resp.StatusCode != nethttp.StatusConflict {
		t.Errorf("approved -> pending: expected 409, got %d", resp.StatusCode)
	}
	resp, _ = do(t, app, nethttp.MethodPut, "/api/admin/requests/"+id+"/status", map[string]string{"status": "bogus"}, admin)
	if resp.StatusCode != nethttp.StatusBadRequest {
		t.Errorf("bogus status: expected 400, got %d", resp.StatusCode)
	}

	resp, _ = do(t, app, nethttp.MethodDelete, "/api/admin/requests/"+id, nil, admin)
	if resp.StatusCode != nethttp.StatusOK {
		t.Errorf("delete: expected 200, got %d", resp.StatusCode)
	}
	resp, _ = do(t, app, nethttp.MethodDelete, "/api/admin/requests/"+id, nil, admin)
	if resp.StatusCode != nethttp.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", resp.StatusCode)
	}
}

func TestAdminUsers(t *testing.T) {
	app := newTestApp(t, true)
	admin := login(t, app, "admin", "admin123")

	newUser := map[string]string{"username": "reporter", "password": "pw"}
	resp, body := do(t, app, nethttp.MethodPost, "/api/admin/users", newUser, admin)
	if resp.StatusCode != nethttp.StatusCreated {
		t.Fatalf("create: expected 201, got %d %v", resp.StatusCode, body)
	}
	created := body["user"].(map[string]any)
	if created["role"] != "user" {
		t.Errorf("expected default role user, got %v", created["role"])
	}

	resp, body = do(t, app, nethttp.MethodPost, "/api/admin/users", newUser, admin)
	if resp.StatusCode != nethttp.StatusBadRequest {
		t.Errorf("duplicate: expected 400, got %d", resp.StatusCode)
	}
	if errBody, _ := body["error"].(map[string]any); errBody["code"] != "DUPLICATE_KEY" {
		t.Errorf("duplicate: unexpected body %v", body)
	}

	req := httptest.NewRequest(nethttp.MethodGet, "/api/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	listResp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var users []map[string]any
	if err := json.NewDecoder(listResp.Body).Decode(&users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 3 {
		t.Errorf("expected 3 users, got %d", len(users))
	}
	for _, u := range users {
		if _, ok := u["password"]; ok {
			t.Errorf("user %v exposes password", u["username"])
		}
		if _, ok := u["passwordHash"]; ok {
			t.Errorf("user %v exposes password hash", u["username"])
		}
	}

	resp, _ = do(t, app, nethttp.MethodDelete, "/api/admin/users/"+created["id"].(string), nil, admin)
	if resp.StatusCode != nethttp.StatusOK {
		t.Errorf("delete: expected 200, got %d", resp.StatusCode)
	}
	resp, _ = do(t, app, nethttp.MethodDelete, "/api/admin/users/"+created["id"].(string), nil, admin)
	if resp.StatusCode != nethttp.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", resp.StatusCode)
	}
}

func TestLoginFailuresAreGeneric(t *testing.T) {
	app := newTestApp(t, true)

	wrong, wrongBody := do(t, app, nethttp.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "nope"}, "")
	unknown, unknownBody := do(t, app, nethttp.MethodPost, "/api/auth/login", map[string]string{"username": "ghost", "password": "nope"}, "")
	if wrong.StatusCode != nethttp.StatusUnauthorized || unknown.StatusCode != nethttp.StatusUnauthorized {
		t.Fatalf("expected 401s, got %d and %d", wrong.StatusCode, unknown.StatusCode)
	}
	if wrongBody["message"] != unknownBody["message"] {
		t.Errorf("messages differ: %v vs %v", wrongBody["message"], unknownBody["message"])
	}

	resp, body := do(t, app, nethttp.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "admin123"}, "")
	if resp.StatusCode != nethttp.StatusOK || body["success"] != true {
		t.Fatalf("login: got %d %v", resp.StatusCode, body)
	}
	user := body["user"].(map[string]any)
	if user["username"] != "admin" || user["role"] != "admin" || user["id"] == "" {
		t.Errorf("unexpected user %v", user)
	}
}

func TestAuthDisabledOpensAdminRoutes(t *testing.T) {
	app := newTestApp(t, false)
	resp, _ := do(t, app, nethttp.MethodGet, "/api/admin/requests", nil, "")
	if resp.StatusCode != nethttp.StatusOK {
		t.Errorf("expected 200 with auth disabled, got %d", resp.StatusCode)
	}
}

func TestOptionsPreflight(t *testing.T) {
	app := newTestApp(t, true)

	for _, path := range []string{"/api/media-requests", "/api/admin/users/abc", "/api/media-requests/track/REQ-1", "/health/ready"} {
		req := httptest.NewRequest(nethttp.MethodOptions, path, nil)
		req.Header.Set("Origin", "http://example.com")
		req.Header.Set("Access-Control-Request-Method", "POST")
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("OPTIONS %s failed: %v", path, err)
		}
		if resp.StatusCode != nethttp.StatusOK {
			t.Errorf("OPTIONS %s: expected 200, got %d", path, resp.StatusCode)
		}
		if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
			t.Errorf("OPTIONS %s: missing allow-origin header", path)
		}
		if resp.Header.Get("Access-Control-Allow-Methods") == "" {
			t.Errorf("OPTIONS %s: missing allow-methods header", path)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	app := newTestApp(t, true)

	resp, body := do(t, app, nethttp.MethodDelete, "/api/media-requests", nil, "")
	if resp.StatusCode != nethttp.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
	if allow := resp.Header.Get("Allow"); allow != "POST, OPTIONS" {
		t.Errorf("unexpected Allow header %q", allow)
	}
	if errBody, _ := body["error"].(map[string]any); errBody["code"] != "METHOD_NOT_ALLOWED" {
		t.Errorf("unexpected body %v", body)
	}

	resp, _ = do(t, app, nethttp.MethodPatch, "/api/admin/users", nil, "")
	if resp.StatusCode != nethttp.StatusMethodNotAllowed {
		t.Errorf("PATCH admin/users: expected 405, got %d", resp.StatusCode)
	}
	if allow := resp.Header.Get("Allow"); allow != "GET, HEAD, POST, OPTIONS" {
		t.Errorf("unexpected Allow header %q", allow)
	}
}

func TestHealthEndpoints(t *testing.T) {
	app := newTestApp(t, true)

	resp, body := do(t, app, nethttp.MethodGet, "/api/health", nil, "")
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("health: expected 200, got %d", resp.StatusCode)
	}
	if body["database"] != "memory" || body["state"] != "unconfigured" || body["timestamp"] == nil {
		t.Errorf("unexpected health body %v", body)
	}

	for _, path := range []string{"/health/live", "/health/ready", "/health/metrics"} {
		resp, _ := do(t, app, nethttp.MethodGet, path, nil, "")
		if resp.StatusCode != nethttp.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, resp.StatusCode)
		}
	}
}
