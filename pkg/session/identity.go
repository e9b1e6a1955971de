// Package session is the client-side session kit consumed by the
// server-rendered frontend: it holds the authenticated user's identity, keeps
// it persisted across reloads, and guards navigation into role-scoped
// sections. There are no ambient singletons; the navigation pipeline is
// handed an explicit Store/Guard pair.
package session

import (
	"encoding/json"
	"errors"

	"github.com/careaxis/hms/internal/platform/rbac"
)

// StorageKey is the fixed key the identity is persisted under.
const StorageKey = "auth"

// Identity is the authenticated user as held client-side.
type Identity struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// ErrNoIdentity indicates a stored entry that does not decode to a usable
// identity (missing, unparsable, or lacking a role).
var ErrNoIdentity = errors.New("no stored identity")

// storedEntry is the wrapped persistence shape, `{"user": {...}}`.
type storedEntry struct {
	User *Identity `json:"user"`
}

// DecodeStored decodes a persisted auth entry. Two shapes are accepted
// explicitly, the wrapped `{"user": {...}}` form and a bare identity,
// rather than inferring structure at runtime. An entry without a role is
// rejected.
func DecodeStored(data []byte) (*Identity, error) {
	var wrapped storedEntry
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.User != nil && wrapped.User.Role != "" {
		return wrapped.User, nil
	}

	var bare Identity
	if err := json.Unmarshal(data, &bare); err == nil && bare.Role != "" {
		return &bare, nil
	}

	return nil, ErrNoIdentity
}

// EncodeStored marshals an identity in the wrapped form used for new writes.
func EncodeStored(id *Identity) ([]byte, error) {
	return json.Marshal(storedEntry{User: id})
}

// NormalizedRole returns the identity's role in canonical form.
func (id *Identity) NormalizedRole() string {
	return rbac.NormalizeRole(id.Role)
}
