package staff

import (
	"time"

	"github.com/google/uuid"
)

// Job roles, distinct from the access-control roles.
const (
	JobPhysician    = "physician"
	JobNurse        = "nurse"
	JobTechnician   = "technician"
	JobPharmacist   = "pharmacist"
	JobReceptionist = "receptionist"
)

var validJobs = map[string]bool{
	JobPhysician:    true,
	JobNurse:        true,
	JobTechnician:   true,
	JobPharmacist:   true,
	JobReceptionist: true,
}

// Member maps to the staff_member table. UserID links the personnel record
// to a login account when one exists.
type Member struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	UserID        *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	FirstName     string     `db:"first_name" json:"first_name"`
	LastName      string     `db:"last_name" json:"last_name"`
	Job           string     `db:"job" json:"job"`
	Specialty     *string    `db:"specialty" json:"specialty,omitempty"`
	LicenseNumber *string    `db:"license_number" json:"license_number,omitempty"`
	Phone         *string    `db:"phone" json:"phone,omitempty"`
	Email         *string    `db:"email" json:"email,omitempty"`
	Active        bool       `db:"active" json:"active"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Shift maps to the shift table.
type Shift struct {
	ID        uuid.UUID `db:"id" json:"id"`
	StaffID   uuid.UUID `db:"staff_id" json:"staff_id"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
	Ward      *string   `db:"ward" json:"ward,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
