package pharmacy

import (
	"time"

	"github.com/google/uuid"
)

// Medication is a catalog entry, not stock.
type Medication struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Generic   *string   `db:"generic_name" json:"generic_name,omitempty"`
	Form      string    `db:"form" json:"form"` // tablet, capsule, injection, syrup
	Strength  *string   `db:"strength" json:"strength,omitempty"`
	Code      *string   `db:"code" json:"code,omitempty"` // NDC or local code
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// InventoryLot is a received batch of a medication with its own expiry.
type InventoryLot struct {
	ID           uuid.UUID `db:"id" json:"id"`
	MedicationID uuid.UUID `db:"medication_id" json:"medication_id"`
	LotNumber    string    `db:"lot_number" json:"lot_number"`
	Quantity     int       `db:"quantity" json:"quantity"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	ReceivedAt   time.Time `db:"received_at" json:"received_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
