// Package token signs and verifies the three token classes used by the HMS
// API: short-lived access tokens, longer-lived refresh tokens carried in a
// cookie, and single-purpose verification tokens for out-of-band confirmation
// flows. Each kind is bound to its own HMAC secret and audience so a token
// minted for one purpose can never validate against another kind's verifier.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind identifies a token class.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
	KindVerify  Kind = "verify"
)

// Lifetimes per token kind.
const (
	AccessTTL  = 15 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour
	VerifyTTL  = 10 * time.Minute
)

// Issuer is fixed for every token the service mints and is matched exactly
// on verification.
const Issuer = "hms-api"

// Leeway tolerated on exp/iat checks to absorb clock skew between nodes.
const Leeway = 5 * time.Second

var (
	// ErrInvalidToken is returned by Verify for any token that is expired,
	// malformed, mis-signed, or signed for a different kind. Callers treat
	// it as "unauthenticated", never as a server fault.
	ErrInvalidToken = errors.New("invalid token")

	// ErrMissingSecret indicates the signing secret for a kind is not
	// configured. This is a configuration fault, not a per-request failure.
	ErrMissingSecret = errors.New("token secret not configured")
)

// audience returns the fixed audience string for a kind.
func audience(kind Kind) string {
	return "hms:" + string(kind)
}

func ttl(kind Kind) time.Duration {
	switch kind {
	case KindRefresh:
		return RefreshTTL
	case KindVerify:
		return VerifyTTL
	default:
		return AccessTTL
	}
}

// Claims carries the registered claims plus the identity payload embedded in
// every HMS token.
type Claims struct {
	jwt.RegisteredClaims
	Role  string            `json:"role,omitempty"`
	Email string            `json:"email,omitempty"`
	Data  map[string]string `json:"data,omitempty"`
}

// Payload is the caller-supplied portion of a token's claims.
type Payload struct {
	Role  string
	Email string
	Data  map[string]string
}

// Service signs and verifies tokens. Secrets are distinct per kind.
type Service struct {
	secrets map[Kind][]byte
}

// NewService builds a Service from the per-kind secrets. Empty secrets are
// permitted here (development convenience); Sign and Verify fail loudly when
// the relevant secret is actually needed.
func NewService(accessSecret, refreshSecret, verifySecret string) *Service {
	return &Service{
		secrets: map[Kind][]byte{
			KindAccess:  []byte(accessSecret),
			KindRefresh: []byte(refreshSecret),
			KindVerify:  []byte(verifySecret),
		},
	}
}

func (s *Service) secret(kind Kind) ([]byte, error) {
	sec, ok := s.secrets[kind]
	if !ok || len(sec) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingSecret, kind)
	}
	return sec, nil
}

// Sign mints a token of the given kind for subject with the supplied payload.
// The returned token carries a unique JTI for revocation tracking.
func (s *Service) Sign(kind Kind, payload Payload, subject string) (string, error) {
	sec, err := s.secret(kind)
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{audience(kind)},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl(kind))),
		},
		Role:  payload.Role,
		Email: payload.Email,
		Data:  payload.Data,
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(sec)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Verify parses and validates a token of the given kind. Expired, malformed,
// mis-signed, and cross-kind tokens all yield ErrInvalidToken; only a missing
// secret produces a different error. Verify never panics on garbage input.
func (s *Service) Verify(kind Kind, tokenStr string) (*Claims, error) {
	sec, err := s.secret(kind)
	if err != nil {
		return nil, err
	}

	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return sec, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(audience(kind)),
		jwt.WithLeeway(Leeway),
		jwt.WithIssuedAt(),
	)
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
