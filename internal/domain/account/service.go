package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/careaxis/hms/internal/platform/auth"
	"github.com/careaxis/hms/internal/platform/notification"
	"github.com/careaxis/hms/internal/platform/password"
	"github.com/careaxis/hms/internal/platform/rbac"
	"github.com/careaxis/hms/internal/platform/token"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// responses cannot be used to probe for registered addresses.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrEmailTaken = errors.New("email already registered")
)

// TokenPair is what a successful login or refresh hands back.
type TokenPair struct {
	Access  string
	Refresh string
}

type Service struct {
	users   UserRepository
	tokens  *token.Service
	revoked auth.RevocationStore
	mailer  *notification.Service
	baseURL string
	log     zerolog.Logger
}

func NewService(users UserRepository, tokens *token.Service, revoked auth.RevocationStore,
	mailer *notification.Service, baseURL string, log zerolog.Logger) *Service {
	return &Service{
		users:   users,
		tokens:  tokens,
		revoked: revoked,
		mailer:  mailer,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log.With().Str("component", "account").Logger(),
	}
}

func validRole(role string) bool {
	switch role {
	case rbac.RoleAdministrative, rbac.RoleStaff, rbac.RolePatient, rbac.RolePartner:
		return true
	}
	return false
}

// Register creates a user account with a hashed password.
func (s *Service) Register(ctx context.Context, u *User, plainPassword string) error {
	if u.Email == "" {
		return fmt.Errorf("email is required")
	}
	if u.FirstName == "" || u.LastName == "" {
		return fmt.Errorf("firstName and lastName are required")
	}
	if len(plainPassword) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	u.Role = rbac.NormalizeRole(u.Role)
	if !validRole(u.Role) {
		return fmt.Errorf("unknown role %q", u.Role)
	}

	if existing, err := s.users.GetByEmail(ctx, u.Email); err == nil && existing != nil {
		return ErrEmailTaken
	}

	hash, err := password.Hash(plainPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash
	return s.users.Create(ctx, u)
}

// Login verifies credentials and mints an access/refresh token pair.
func (s *Service) Login(ctx context.Context, email, plainPassword string) (*User, *TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !password.Verify(plainPassword, u.PasswordHash) {
		if err := s.users.RecordFailedLogin(ctx, u.ID); err != nil {
			s.log.Warn().Err(err).Str("user_id", u.ID.String()).Msg("record failed login")
		}
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(u)
	if err != nil {
		return nil, nil, err
	}
	if err := s.users.RecordLogin(ctx, u.ID); err != nil {
		s.log.Warn().Err(err).Str("user_id", u.ID.String()).Msg("record login")
	}
	return u, pair, nil
}

// Refresh rotates a refresh token: it verifies the presented token, revokes
// its JTI so it cannot be replayed, and issues a fresh pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*User, *TokenPair, error) {
	claims, err := s.tokens.Verify(token.KindRefresh, refreshToken)
	if err != nil {
		return nil, nil, err
	}
	if s.revoked != nil && s.revoked.IsRevoked(ctx, claims.ID) {
		return nil, nil, token.ErrInvalidToken
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, nil, token.ErrInvalidToken
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, nil, token.ErrInvalidToken
	}

	pair, err := s.issuePair(u)
	if err != nil {
		return nil, nil, err
	}
	if s.revoked != nil && claims.ExpiresAt != nil {
		s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
	}
	return u, pair, nil
}

// Logout revokes the presented refresh token. It never fails: an invalid or
// already-expired token simply has nothing left to revoke.
func (s *Service) Logout(ctx context.Context, refreshToken string) {
	claims, err := s.tokens.Verify(token.KindRefresh, refreshToken)
	if err != nil || s.revoked == nil || claims.ExpiresAt == nil {
		return
	}
	s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

func (s *Service) issuePair(u *User) (*TokenPair, error) {
	payload := token.Payload{Role: u.Role, Email: u.Email}
	access, err := s.tokens.Sign(token.KindAccess, payload, u.ID.String())
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.Sign(token.KindRefresh, payload, u.ID.String())
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// RequestEmailVerification mints a short-lived verification token and mails
// the confirmation link to the account's address.
func (s *Service) RequestEmailVerification(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// Do not reveal whether the address is registered.
		return nil
	}
	if u.EmailVerified {
		return nil
	}

	tok, err := s.tokens.Sign(token.KindVerify, token.Payload{Email: u.Email}, u.ID.String())
	if err != nil {
		return err
	}

	link := s.baseURL + "/auth/verify-email/confirm?token=" + tok
	if s.mailer == nil {
		return nil
	}
	_, err = s.mailer.SendTemplate(ctx, notification.TemplateEmailVerification, u.Email, map[string]string{
		"first_name": u.FirstName,
		"verify_url": link,
	})
	return err
}

// ConfirmEmailVerification validates a verification token and marks the
// account's email as verified.
func (s *Service) ConfirmEmailVerification(ctx context.Context, tokenStr string) error {
	claims, err := s.tokens.Verify(token.KindVerify, tokenStr)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return token.ErrInvalidToken
	}
	return s.users.SetEmailVerified(ctx, id)
}

// GetUser and the rest are thin pass-throughs used by the admin surface.

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.List(ctx, limit, offset)
}

func (s *Service) UpdateUser(ctx context.Context, u *User) error {
	if u.Email == "" {
		return fmt.Errorf("email is required")
	}
	u.Role = rbac.NormalizeRole(u.Role)
	if !validRole(u.Role) {
		return fmt.Errorf("unknown role %q", u.Role)
	}
	return s.users.Update(ctx, u)
}

func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.users.Delete(ctx, id)
}

// CreateAdmin provisions an administrative account, used by the CLI.
func (s *Service) CreateAdmin(ctx context.Context, email, firstName, lastName, plainPassword string) (*User, error) {
	u := &User{
		Role:          rbac.RoleAdministrative,
		Email:         email,
		FirstName:     firstName,
		LastName:      lastName,
		EmailVerified: true,
	}
	if err := s.Register(ctx, u, plainPassword); err != nil {
		return nil, err
	}
	return u, nil
}
