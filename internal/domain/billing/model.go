package billing

import (
	"time"

	"github.com/google/uuid"
)

// Invoice statuses.
const (
	StatusDraft   = "draft"
	StatusIssued  = "issued"
	StatusPaid    = "paid"
	StatusVoid    = "void"
	StatusPastDue = "past-due"
)

var validStatuses = map[string]bool{
	StatusDraft:   true,
	StatusIssued:  true,
	StatusPaid:    true,
	StatusVoid:    true,
	StatusPastDue: true,
}

// Invoice maps to the invoice table. Amounts are integer cents; totals are
// stored as submitted, never recomputed server-side.
type Invoice struct {
	ID         uuid.UUID     `db:"id" json:"id"`
	Number     string        `db:"number" json:"number"`
	PatientID  uuid.UUID     `db:"patient_id" json:"patient_id"`
	Status     string        `db:"status" json:"status"`
	TotalCents int64         `db:"total_cents" json:"total_cents"`
	Currency   string        `db:"currency" json:"currency"`
	IssuedAt   *time.Time    `db:"issued_at" json:"issued_at,omitempty"`
	DueAt      *time.Time    `db:"due_at" json:"due_at,omitempty"`
	Items      []InvoiceItem `db:"-" json:"items,omitempty"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at" json:"updated_at"`
}

// InvoiceItem maps to the invoice_item table.
type InvoiceItem struct {
	ID          uuid.UUID `db:"id" json:"id"`
	InvoiceID   uuid.UUID `db:"invoice_id" json:"invoice_id"`
	Description string    `db:"description" json:"description"`
	Quantity    int       `db:"quantity" json:"quantity"`
	UnitCents   int64     `db:"unit_cents" json:"unit_cents"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// InsurancePolicy maps to the insurance_policy table. The policy number is
// stored encrypted and never serialized to clients.
type InsurancePolicy struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	PatientID    uuid.UUID  `db:"patient_id" json:"patient_id"`
	Provider     string     `db:"provider" json:"provider"`
	PolicyNumber *string    `db:"policy_number_encrypted" json:"-"`
	GroupNumber  *string    `db:"group_number" json:"group_number,omitempty"`
	ValidFrom    *time.Time `db:"valid_from" json:"valid_from,omitempty"`
	ValidTo      *time.Time `db:"valid_to" json:"valid_to,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
