package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func newContext(req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRead_MissingCookie(t *testing.T) {
	c, _ := newContext(httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := Read(c)
	if !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestRead_EmptyCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: ""})
	c, _ := newContext(req)
	if _, err := Read(c); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession for empty cookie, got %v", err)
	}
}

func TestWriteThenRead(t *testing.T) {
	c, rec := newContext(httptest.NewRequest(http.MethodGet, "/", nil))
	Write(c, "refresh-token-value", time.Hour)

	res := rec.Result()
	cookies := res.Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	ck := cookies[0]
	if ck.Name != CookieName || ck.Value != "refresh-token-value" {
		t.Errorf("unexpected cookie %q=%q", ck.Name, ck.Value)
	}
	if !ck.HttpOnly {
		t.Error("cookie must be HTTP-only")
	}

	// Echo the cookie back on a new request.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(ck)
	c2, _ := newContext(req)
	got, err := Read(c2)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != "refresh-token-value" {
		t.Errorf("Read = %q", got)
	}
}

func TestClear(t *testing.T) {
	c, rec := newContext(httptest.NewRequest(http.MethodGet, "/", nil))
	Clear(c)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	if cookies[0].Value != "" || cookies[0].MaxAge != -1 {
		t.Errorf("expected expired empty cookie, got value=%q maxage=%d",
			cookies[0].Value, cookies[0].MaxAge)
	}
}
