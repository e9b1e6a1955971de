package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByMRN(ctx context.Context, mrn string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, nameFilter string, limit, offset int) ([]*Patient, int, error)

	AddContact(ctx context.Context, c *EmergencyContact) error
	GetContacts(ctx context.Context, patientID uuid.UUID) ([]*EmergencyContact, error)
	RemoveContact(ctx context.Context, id uuid.UUID) error
}
