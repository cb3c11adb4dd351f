package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/octobees/customer360/api/internal/auth"
	"github.com/octobees/customer360/api/internal/config"
	"github.com/octobees/customer360/api/internal/connection"
	"github.com/octobees/customer360/api/internal/handler"
	"github.com/octobees/customer360/api/internal/lusha"
	"github.com/octobees/customer360/api/internal/service"
)

func newTestServer(t *testing.T) (*echo.Echo, *auth.JWTManager) {
	t.Helper()
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	t.Cleanup(provider.Close)

	manager := connection.NewManager(func(apiKey string) *lusha.Client {
		return lusha.NewClient(apiKey, lusha.WithBaseURL(provider.URL))
	}, "")
	jwtManager := auth.NewJWTManager("secret", time.Hour)
	cfg := &config.Config{RateLimitEnrich: config.RateLimitConfig{Requests: 1, Interval: time.Minute}}

	e := echo.New()
	Register(e, cfg, jwtManager, Handlers{
		Auth:       handler.NewAuthHandler(service.NewAuthService("admin", "", jwtManager), 3600),
		Connection: handler.NewConnectionHandler(manager),
		Enrichment: handler.NewEnrichmentHandler(service.NewEnrichmentService(manager, nil)),
	})
	return e, jwtManager
}

func serve(e *echo.Echo, method, target, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRegister_PublicAndSecuredRoutes(t *testing.T) {
	e, jwtManager := newTestServer(t)

	if rec := serve(e, http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected healthz 200, got %d", rec.Code)
	}
	if rec := serve(e, http.MethodGet, "/connection", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	admin, err := jwtManager.GenerateToken("admin", auth.RoleAdmin)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if rec := serve(e, http.MethodGet, "/connection", admin, ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
	if rec := serve(e, http.MethodPost, "/enrich/person", admin, `{"email":"ada@acme.com"}`); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 while unconnected, got %d", rec.Code)
	}
	if rec := serve(e, http.MethodPost, "/prospects/search", admin, `{}`); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected spending routes to share one budget, got %d", rec.Code)
	}
	if rec := serve(e, http.MethodGet, "/records/persons", admin, ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without storage, got %d", rec.Code)
	}

	viewer, err := jwtManager.GenerateToken("viewer", "viewer")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if rec := serve(e, http.MethodGet, "/records/persons", viewer, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", rec.Code)
	}
}

func TestRegister_ConnectionLifecycle(t *testing.T) {
	e, jwtManager := newTestServer(t)
	token, err := jwtManager.GenerateToken("admin", auth.RoleAdmin)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	rec := serve(e, http.MethodPut, "/connection/api-key", token, `{"api_key":"live-key-1234"}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"connected":true`) {
		t.Fatalf("expected connection, got %d %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "live-key-1234") || !strings.Contains(rec.Body.String(), "1234") {
		t.Fatalf("expected masked key in %s", rec.Body.String())
	}

	rec = serve(e, http.MethodDelete, "/connection", token, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"phase":"unconnected"`) {
		t.Fatalf("unexpected disconnect response: %d %s", rec.Code, rec.Body.String())
	}
	if rec := serve(e, http.MethodDelete, "/connection/error", token, ""); rec.Code != http.StatusOK {
		t.Fatalf("expected clear error 200, got %d", rec.Code)
	}
}
