package pharmacy

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, m *Medication) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medication, error)
	Update(ctx context.Context, m *Medication) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, nameFilter string, limit, offset int) ([]*Medication, int, error)

	AddLot(ctx context.Context, l *InventoryLot) error
	UpdateLot(ctx context.Context, l *InventoryLot) error
	RemoveLot(ctx context.Context, id uuid.UUID) error
	LotsByMedication(ctx context.Context, medicationID uuid.UUID) ([]*InventoryLot, error)
}
