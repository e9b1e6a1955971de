package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/careaxis/hms/internal/platform/rbac"
	"github.com/careaxis/hms/internal/platform/session"
	"github.com/careaxis/hms/internal/platform/token"
)

func newTestMiddleware(t *testing.T) (*Middleware, *token.Service, *MemoryRevocationStore) {
	t.Helper()
	tokens := token.NewService("access-secret", "refresh-secret", "verify-secret")
	revoked := NewMemoryRevocationStore()
	t.Cleanup(revoked.Close)
	return NewMiddleware(tokens, revoked, nil), tokens, revoked
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func runRequest(t *testing.T, h echo.HandlerFunc, req *http.Request) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, h(c)
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T: %v", err, err)
	}
	return he.Code
}

func TestAuthenticate_BearerToken(t *testing.T) {
	mw, tokens, _ := newTestMiddleware(t)

	signed, err := tokens.Sign(token.KindAccess, token.Payload{Role: "staff", Email: "n@h.test"}, "user-1")
	if err != nil {
		t.Fatal(err)
	}

	var gotID, gotRole string
	h := mw.Authenticate()(func(c echo.Context) error {
		gotID = UserIDFromContext(c.Request().Context())
		gotRole = RoleFromContext(c.Request().Context())
		return okHandler(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/staff/patients", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	if _, err := runRequest(t, h, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotID != "user-1" || gotRole != "staff" {
		t.Errorf("identity = (%q, %q)", gotID, gotRole)
	}
}

func TestAuthenticate_MissingCredentials(t *testing.T) {
	mw, _, _ := newTestMiddleware(t)
	h := mw.Authenticate()(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/staff/patients", nil)
	_, err := runRequest(t, h, req)
	if httpStatus(t, err) != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestAuthenticate_ExpiredTokenIs401Not500(t *testing.T) {
	mw, _, _ := newTestMiddleware(t)
	h := mw.Authenticate()(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/staff/patients", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	_, err := runRequest(t, h, req)
	if httpStatus(t, err) != http.StatusUnauthorized {
		t.Errorf("expected 401 for garbage token, got %v", err)
	}
}

func TestAuthenticate_RefreshCookieFallback(t *testing.T) {
	mw, tokens, _ := newTestMiddleware(t)

	refresh, err := tokens.Sign(token.KindRefresh, token.Payload{Role: "patient"}, "user-7")
	if err != nil {
		t.Fatal(err)
	}

	var gotRole string
	h := mw.Authenticate()(func(c echo.Context) error {
		gotRole = RoleFromContext(c.Request().Context())
		return okHandler(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/patient/records", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: refresh})
	if _, err := runRequest(t, h, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotRole != "patient" {
		t.Errorf("role = %q, want patient", gotRole)
	}
}

func TestAuthenticate_RevokedRefreshCookie(t *testing.T) {
	mw, tokens, revoked := newTestMiddleware(t)

	refresh, err := tokens.Sign(token.KindRefresh, token.Payload{Role: "patient"}, "user-7")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := tokens.Verify(token.KindRefresh, refresh)
	if err != nil {
		t.Fatal(err)
	}
	revoked.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time)

	h := mw.Authenticate()(okHandler)
	req := httptest.NewRequest(http.MethodGet, "/patient/records", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: refresh})
	_, err = runRequest(t, h, req)
	if httpStatus(t, err) != http.StatusUnauthorized {
		t.Errorf("expected 401 for revoked token, got %v", err)
	}
}

func TestAuthenticate_AccessTokenInCookieRejected(t *testing.T) {
	mw, tokens, _ := newTestMiddleware(t)

	// An access token stuffed into the refresh cookie must not authenticate.
	access, err := tokens.Sign(token.KindAccess, token.Payload{Role: "staff"}, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	h := mw.Authenticate()(okHandler)
	req := httptest.NewRequest(http.MethodGet, "/staff/patients", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: access})
	_, err = runRequest(t, h, req)
	if httpStatus(t, err) != http.StatusUnauthorized {
		t.Errorf("expected 401 for cross-kind token, got %v", err)
	}
}

func TestRoleGate_Outcomes(t *testing.T) {
	mw, _, _ := newTestMiddleware(t)

	tests := []struct {
		role       string
		path       string
		wantStatus int // 0 = allowed
	}{
		{"administrative", "/admin/users", 0},
		{"staff", "/admin/users", http.StatusForbidden},
		{"patient", "/admin/users", http.StatusForbidden},
		{"staff", "/staff/appointments", 0},
		{"patient", "/patient/records", 0},
		{"", "/admin/users", http.StatusUnauthorized},
		{"partner", "/staff/x", http.StatusForbidden},
		{"partner", "/open", 0},
	}

	for _, tt := range tests {
		h := mw.RoleGate()(okHandler)
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		if tt.role != "" {
			req = req.WithContext(WithIdentity(req.Context(), "u1", tt.role, ""))
		}
		_, err := runRequest(t, h, req)
		if tt.wantStatus == 0 {
			if err != nil {
				t.Errorf("role=%q path=%q: unexpected error %v", tt.role, tt.path, err)
			}
			continue
		}
		if httpStatus(t, err) != tt.wantStatus {
			t.Errorf("role=%q path=%q: got %v, want %d", tt.role, tt.path, err, tt.wantStatus)
		}
	}
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(rbac.RoleStaff)(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req = req.WithContext(WithIdentity(req.Context(), "u1", "staff", ""))
	if _, err := runRequest(t, h, req); err != nil {
		t.Errorf("staff should pass: %v", err)
	}

	// Administrative passes every RequireRole gate.
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req = req.WithContext(WithIdentity(req.Context(), "u1", "administrative", ""))
	if _, err := runRequest(t, h, req); err != nil {
		t.Errorf("administrative should pass: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req = req.WithContext(WithIdentity(req.Context(), "u1", "patient", ""))
	_, err := runRequest(t, h, req)
	if httpStatus(t, err) != http.StatusForbidden {
		t.Errorf("patient should be forbidden, got %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	_, err = runRequest(t, h, req)
	if httpStatus(t, err) != http.StatusUnauthorized {
		t.Errorf("anonymous should be 401, got %v", err)
	}
}

func TestMemoryRevocationStore(t *testing.T) {
	s := NewMemoryRevocationStore()
	defer s.Close()
	ctx := context.Background()

	if s.IsRevoked(ctx, "jti-1") {
		t.Error("fresh store should not report revocations")
	}
	s.Revoke(ctx, "jti-1", time.Now().Add(time.Hour))
	if !s.IsRevoked(ctx, "jti-1") {
		t.Error("expected jti-1 revoked")
	}

	// A revocation whose token already expired is moot.
	s.Revoke(ctx, "jti-2", time.Now().Add(-time.Minute))
	if s.IsRevoked(ctx, "jti-2") {
		t.Error("expired revocation should not matter")
	}

	s.cleanup()
	s.mu.RLock()
	_, stillThere := s.entries["jti-2"]
	s.mu.RUnlock()
	if stillThere {
		t.Error("cleanup should drop expired entries")
	}
}

func TestRedisRevocationStore_SharedClientSurvivesClose(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	s := NewRedisRevocationStore(client)
	ctx := context.Background()

	// Empty JTIs and already-expired tokens never reach the backend.
	s.Revoke(ctx, "", time.Now().Add(time.Hour))
	s.Revoke(ctx, "jti-1", time.Now().Add(-time.Minute))

	// The client is shared with the rate limiter; closing the store must
	// leave it open for the other consumer.
	s.Close()
	if err := client.Ping(ctx).Err(); errors.Is(err, redis.ErrClosed) {
		t.Error("closing the store should not close the shared client")
	}
}
