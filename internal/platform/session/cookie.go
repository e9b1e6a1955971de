// Package session reads and writes the opaque refresh-token cookie used to
// re-establish identity on protected resource requests.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// CookieName is the fixed name of the refresh-token cookie.
const CookieName = "refreshToken"

// ErrNoSession indicates the request carries no refresh-token cookie. It
// means "not logged in", not a server failure; privileged handlers convert
// it to a uniform not-logged-in response rather than an error.
var ErrNoSession = errors.New("no session cookie")

// Write sets the HTTP-only refresh-token cookie on the response.
func Write(c echo.Context, tok string, ttl time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    tok,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   c.Scheme() == "https",
	})
}

// Read extracts the refresh token from the request's cookie jar. An absent
// or empty cookie yields ErrNoSession.
func Read(c echo.Context) (string, error) {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", ErrNoSession
	}
	return cookie.Value, nil
}

// Clear expires the refresh-token cookie.
func Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
