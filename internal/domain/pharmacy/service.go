package pharmacy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	meds Repository
}

func NewService(meds Repository) *Service {
	return &Service{meds: meds}
}

func (s *Service) Create(ctx context.Context, m *Medication) error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	if m.Form == "" {
		return fmt.Errorf("form is required")
	}
	m.Active = true
	return s.meds.Create(ctx, m)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Medication, error) {
	return s.meds.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, m *Medication) error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.meds.Update(ctx, m)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.meds.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, nameFilter string, limit, offset int) ([]*Medication, int, error) {
	return s.meds.List(ctx, nameFilter, limit, offset)
}

func (s *Service) AddLot(ctx context.Context, l *InventoryLot) error {
	if l.MedicationID == uuid.Nil {
		return fmt.Errorf("medication_id is required")
	}
	if l.LotNumber == "" {
		return fmt.Errorf("lot_number is required")
	}
	if l.Quantity < 0 {
		return fmt.Errorf("quantity cannot be negative")
	}
	if l.ExpiresAt.IsZero() {
		return fmt.Errorf("expires_at is required")
	}
	if l.ReceivedAt.IsZero() {
		l.ReceivedAt = time.Now()
	}
	return s.meds.AddLot(ctx, l)
}

func (s *Service) UpdateLot(ctx context.Context, l *InventoryLot) error {
	if l.Quantity < 0 {
		return fmt.Errorf("quantity cannot be negative")
	}
	return s.meds.UpdateLot(ctx, l)
}

func (s *Service) RemoveLot(ctx context.Context, id uuid.UUID) error {
	return s.meds.RemoveLot(ctx, id)
}

func (s *Service) LotsByMedication(ctx context.Context, medicationID uuid.UUID) ([]*InventoryLot, error) {
	return s.meds.LotsByMedication(ctx, medicationID)
}
