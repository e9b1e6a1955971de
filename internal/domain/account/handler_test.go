package account

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/careaxis/hms/internal/platform/rbac"
	"github.com/careaxis/hms/internal/platform/session"
)

func newTestHandler(t *testing.T) (*Handler, *Service) {
	t.Helper()
	svc, _, _, _ := newTestService(t)
	return NewHandler(svc), svc
}

func postJSON(t *testing.T, h echo.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		e.HTTPErrorHandler(err, e.NewContext(req, rec))
	}
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (bool, string, map[string]interface{}) {
	t.Helper()
	var env struct {
		Success bool                   `json:"success"`
		Message string                 `json:"message"`
		Data    map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
	}
	return env.Success, env.Message, env.Data
}

func refreshCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

func TestLoginHandler_Success(t *testing.T) {
	h, svc := newTestHandler(t)
	registerTestUser(t, svc, rbac.RoleStaff, "staff@clinic.test")

	rec := postJSON(t, h.Login, "/auth/login", `{"email":"staff@clinic.test","password":"correct horse battery"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	success, _, data := decodeEnvelope(t, rec)
	if !success {
		t.Error("expected success envelope")
	}
	user, ok := data["user"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected data.user object, got %v", data)
	}
	if user["role"] != rbac.RoleStaff || user["email"] != "staff@clinic.test" {
		t.Errorf("unexpected identity: %v", user)
	}
	if _, ok := user["firstName"]; !ok {
		t.Error("identity must carry firstName")
	}
	if data["accessToken"] == "" {
		t.Error("expected access token in body")
	}

	cookie := refreshCookie(rec)
	if cookie == nil {
		t.Fatal("expected refresh cookie to be set")
	}
	if !cookie.HttpOnly {
		t.Error("refresh cookie must be HTTP-only")
	}
	if cookie.Value == data["accessToken"] {
		t.Error("cookie must carry the refresh token, not the access token")
	}
}

func TestLoginHandler_BadCredentials(t *testing.T) {
	h, svc := newTestHandler(t)
	registerTestUser(t, svc, rbac.RoleStaff, "staff@clinic.test")

	rec := postJSON(t, h.Login, "/auth/login", `{"email":"staff@clinic.test","password":"nope nope nope"}`)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	success, _, _ := decodeEnvelope(t, rec)
	if success {
		t.Error("expected failure envelope")
	}
	if refreshCookie(rec) != nil {
		t.Error("no cookie on failed login")
	}
}

func TestLoginHandler_MissingFields(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := postJSON(t, h.Login, "/auth/login", `{"email":"staff@clinic.test"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRefreshHandler_RotatesCookie(t *testing.T) {
	h, svc := newTestHandler(t)
	registerTestUser(t, svc, rbac.RoleStaff, "staff@clinic.test")

	login := postJSON(t, h.Login, "/auth/login", `{"email":"staff@clinic.test","password":"correct horse battery"}`)
	cookie := refreshCookie(login)
	if cookie == nil {
		t.Fatal("login must set cookie")
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	if err := h.Refresh(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rotated := refreshCookie(rec)
	if rotated == nil {
		t.Fatal("refresh must set a new cookie")
	}
	if rotated.Value == cookie.Value {
		t.Error("refresh must rotate the cookie value")
	}
}

func TestRefreshHandler_NoCookie(t *testing.T) {
	h, _ := newTestHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	rec := httptest.NewRecorder()
	if err := h.Refresh(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLogoutHandler_AlwaysSucceeds(t *testing.T) {
	h, _ := newTestHandler(t)

	// No session at all: still a 200 and an expired cookie.
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	if err := h.Logout(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Logout() error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cleared := refreshCookie(rec)
	if cleared == nil {
		t.Fatal("logout must write an expired refresh cookie")
	}
	if cleared.Value != "" {
		t.Error("cleared cookie must carry no token")
	}
}

func TestLogoutHandler_RevokesSession(t *testing.T) {
	h, svc := newTestHandler(t)
	registerTestUser(t, svc, rbac.RoleStaff, "staff@clinic.test")

	login := postJSON(t, h.Login, "/auth/login", `{"email":"staff@clinic.test","password":"correct horse battery"}`)
	cookie := refreshCookie(login)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	if err := h.Logout(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Logout() error: %v", err)
	}

	// The revoked token can no longer refresh.
	req = httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	if err := h.Refresh(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestConfirmEmailVerificationHandler_BadToken(t *testing.T) {
	h, _ := newTestHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/auth/verify-email/confirm?token=garbage", nil)
	rec := httptest.NewRecorder()
	if err := h.ConfirmEmailVerification(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCreateUserHandler(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := postJSON(t, h.CreateUser, "/admin/users",
		`{"role":"patient","email":"new@clinic.test","firstName":"New","lastName":"Patient","password":"long enough pass"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Duplicate email conflicts.
	rec = postJSON(t, h.CreateUser, "/admin/users",
		`{"role":"patient","email":"new@clinic.test","firstName":"New","lastName":"Patient","password":"long enough pass"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}
