package account

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careaxis/hms/internal/platform/session"
	"github.com/careaxis/hms/internal/platform/token"
	"github.com/careaxis/hms/pkg/pagination"
	"github.com/careaxis/hms/pkg/respond"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the public auth surface and the admin-only user
// administration surface. The admin group arrives already role-gated.
func (h *Handler) RegisterRoutes(public, admin *echo.Group) {
	public.POST("/auth/login", h.Login)
	public.POST("/auth/refresh", h.Refresh)
	public.POST("/auth/logout", h.Logout)
	public.POST("/auth/verify-email/request", h.RequestEmailVerification)
	public.GET("/auth/verify-email/confirm", h.ConfirmEmailVerification)

	admin.POST("/users", h.CreateUser)
	admin.GET("/users", h.ListUsers)
	admin.GET("/users/:id", h.GetUser)
	admin.PUT("/users/:id", h.UpdateUser)
	admin.DELETE("/users/:id", h.DeleteUser)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates credentials, sets the refresh cookie, and returns the
// identity wrapped in the response envelope under data.user. The access token
// travels in the body; the refresh token only ever travels in the cookie.
func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return respond.Fail(c, http.StatusBadRequest, "email and password are required")
	}

	u, pair, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, token.ErrMissingSecret) {
			return respond.Fail(c, http.StatusInternalServerError, "authentication unavailable")
		}
		return respond.Fail(c, http.StatusUnauthorized, "invalid email or password")
	}

	session.Write(c, pair.Refresh, token.RefreshTTL)
	return respond.OK(c, http.StatusOK, "login successful", map[string]interface{}{
		"user":        u.Public(),
		"accessToken": pair.Access,
	})
}

// Refresh rotates the session: the old refresh token is revoked and a new
// cookie is written.
func (h *Handler) Refresh(c echo.Context) error {
	tok, err := session.Read(c)
	if err != nil {
		return respond.Fail(c, http.StatusUnauthorized, "no session")
	}

	u, pair, err := h.svc.Refresh(c.Request().Context(), tok)
	if err != nil {
		if errors.Is(err, token.ErrMissingSecret) {
			return respond.Fail(c, http.StatusInternalServerError, "authentication unavailable")
		}
		session.Clear(c)
		return respond.Fail(c, http.StatusUnauthorized, "session expired")
	}

	session.Write(c, pair.Refresh, token.RefreshTTL)
	return respond.OK(c, http.StatusOK, "session refreshed", map[string]interface{}{
		"user":        u.Public(),
		"accessToken": pair.Access,
	})
}

// Logout always clears the cookie and always reports success. A logout with
// no usable session still leaves the client logged out.
func (h *Handler) Logout(c echo.Context) error {
	if tok, err := session.Read(c); err == nil {
		h.svc.Logout(c.Request().Context(), tok)
	}
	session.Clear(c)
	return respond.OK(c, http.StatusOK, "logged out", nil)
}

type verifyRequest struct {
	Email string `json:"email"`
}

func (h *Handler) RequestEmailVerification(c echo.Context) error {
	var req verifyRequest
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return respond.Fail(c, http.StatusBadRequest, "email is required")
	}
	if err := h.svc.RequestEmailVerification(c.Request().Context(), req.Email); err != nil {
		if errors.Is(err, token.ErrMissingSecret) {
			return respond.Fail(c, http.StatusInternalServerError, "verification unavailable")
		}
		return respond.Fail(c, http.StatusInternalServerError, "could not send verification email")
	}
	// Same response whether or not the address exists.
	return respond.OK(c, http.StatusOK, "verification email sent if the address is registered", nil)
}

func (h *Handler) ConfirmEmailVerification(c echo.Context) error {
	tok := c.QueryParam("token")
	if tok == "" {
		return respond.Fail(c, http.StatusBadRequest, "token is required")
	}
	if err := h.svc.ConfirmEmailVerification(c.Request().Context(), tok); err != nil {
		if errors.Is(err, token.ErrMissingSecret) {
			return respond.Fail(c, http.StatusInternalServerError, "verification unavailable")
		}
		return respond.Fail(c, http.StatusUnauthorized, "invalid or expired verification link")
	}
	return respond.OK(c, http.StatusOK, "email verified", nil)
}

// -- Admin user management --

type createUserRequest struct {
	Role      string `json:"role"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

func (h *Handler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid request body")
	}
	u := &User{
		Role:      req.Role,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := h.svc.Register(c.Request().Context(), u, req.Password); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return respond.Fail(c, http.StatusConflict, err.Error())
		}
		return respond.Fail(c, http.StatusBadRequest, err.Error())
	}
	return respond.OK(c, http.StatusCreated, "user created", u.Public())
}

func (h *Handler) GetUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid id")
	}
	u, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return respond.Fail(c, http.StatusNotFound, "user not found")
	}
	return respond.OK(c, http.StatusOK, "", u)
}

func (h *Handler) ListUsers(c echo.Context) error {
	pg := pagination.FromContext(c)
	users, total, err := h.svc.ListUsers(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return respond.Fail(c, http.StatusInternalServerError, err.Error())
	}
	return respond.OK(c, http.StatusOK, "", pagination.NewResponse(users, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid id")
	}
	var u User
	if err := c.Bind(&u); err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid request body")
	}
	u.ID = id
	if err := h.svc.UpdateUser(c.Request().Context(), &u); err != nil {
		return respond.Fail(c, http.StatusBadRequest, err.Error())
	}
	return respond.OK(c, http.StatusOK, "user updated", u.Public())
}

func (h *Handler) DeleteUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteUser(c.Request().Context(), id); err != nil {
		return respond.Fail(c, http.StatusInternalServerError, err.Error())
	}
	return respond.OK(c, http.StatusOK, "user deleted", nil)
}
