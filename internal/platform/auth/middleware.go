package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/careaxis/hms/internal/platform/rbac"
	"github.com/careaxis/hms/internal/platform/session"
	"github.com/careaxis/hms/internal/platform/token"
)

// Middleware authenticates requests and gates them by role.
type Middleware struct {
	tokens  *token.Service
	revoked RevocationStore
	skipper func(echo.Context) bool
}

// NewMiddleware builds the authentication middleware. skipper marks paths
// that bypass authentication entirely (health, login, static assets); it may
// be nil.
func NewMiddleware(tokens *token.Service, revoked RevocationStore, skipper func(echo.Context) bool) *Middleware {
	return &Middleware{tokens: tokens, revoked: revoked, skipper: skipper}
}

// Authenticate resolves the caller's identity from a Bearer access token,
// falling back to the refresh-token cookie. Invalid and expired tokens yield
// 401, since they mean "unauthenticated", never a server fault. A missing signing
// secret is a configuration fault and surfaces as 500.
func (m *Middleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m.skipper != nil && m.skipper(c) {
				return next(c)
			}

			claims, err := m.resolve(c)
			if err != nil {
				if errors.Is(err, token.ErrMissingSecret) {
					return echo.NewHTTPError(http.StatusInternalServerError, "authentication misconfigured")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "not logged in")
			}

			c.SetRequest(c.Request().WithContext(
				WithIdentity(c.Request().Context(), claims.Subject, rbac.NormalizeRole(claims.Role), claims.Email)))
			return next(c)
		}
	}
}

// resolve extracts and verifies credentials: Authorization header first,
// refresh cookie second.
func (m *Middleware) resolve(c echo.Context) (*token.Claims, error) {
	if authHeader := c.Request().Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return nil, token.ErrInvalidToken
		}
		return m.tokens.Verify(token.KindAccess, parts[1])
	}

	tok, err := session.Read(c)
	if err != nil {
		return nil, token.ErrInvalidToken
	}
	claims, err := m.tokens.Verify(token.KindRefresh, tok)
	if err != nil {
		return nil, err
	}
	if m.revoked != nil && m.revoked.IsRevoked(c.Request().Context(), claims.ID) {
		return nil, token.ErrInvalidToken
	}
	return claims, nil
}

// RoleGate enforces the shared prefix table against the caller's role. The
// two denial outcomes stay distinct: no identity yields 401, a wrong role
// yields 403.
func (m *Middleware) RoleGate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m.skipper != nil && m.skipper(c) {
				return next(c)
			}

			role := RoleFromContext(c.Request().Context())
			switch rbac.Decide(role, c.Request().URL.Path) {
			case rbac.Allowed:
				return next(c)
			case rbac.Forbidden:
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
			default:
				return echo.NewHTTPError(http.StatusUnauthorized, "not logged in")
			}
		}
	}
}

// RequireRole returns middleware admitting only the listed roles. The
// administrative role is admitted everywhere.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := RoleFromContext(c.Request().Context())
			if role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "not logged in")
			}
			if role == rbac.RoleAdministrative {
				return next(c)
			}
			for _, required := range roles {
				if role == required {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				"required role: "+strings.Join(roles, " or "))
		}
	}
}
