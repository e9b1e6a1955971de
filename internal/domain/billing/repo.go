package billing

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error)
	UpdateInvoice(ctx context.Context, inv *Invoice) error
	DeleteInvoice(ctx context.Context, id uuid.UUID) error
	ListInvoices(ctx context.Context, patientID uuid.UUID, status string, limit, offset int) ([]*Invoice, int, error)

	AddPolicy(ctx context.Context, p *InsurancePolicy) error
	GetPolicy(ctx context.Context, id uuid.UUID) (*InsurancePolicy, error)
	UpdatePolicy(ctx context.Context, p *InsurancePolicy) error
	DeletePolicy(ctx context.Context, id uuid.UUID) error
	PoliciesByPatient(ctx context.Context, patientID uuid.UUID) ([]*InsurancePolicy, error)
}
