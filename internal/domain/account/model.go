package account

import (
	"time"

	"github.com/google/uuid"
)

// User maps to the app_user table.
type User struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	Role             string     `db:"role" json:"role"`
	Email            string     `db:"email" json:"email"`
	FirstName        string     `db:"first_name" json:"firstName"`
	LastName         string     `db:"last_name" json:"lastName"`
	PasswordHash     string     `db:"password_hash" json:"-"`
	EmailVerified    bool       `db:"email_verified" json:"emailVerified"`
	FailedLoginCount int        `db:"failed_login_count" json:"-"`
	LastLoginAt      *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updatedAt"`
}

// PublicView is the identity shape returned to clients after authentication.
// The client persists it verbatim, so the field names are part of the wire
// contract.
type PublicView struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (u *User) Public() PublicView {
	return PublicView{
		ID:        u.ID.String(),
		Role:      u.Role,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
