package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter narrows appointment listings. Zero values are ignored.
type Filter struct {
	PatientID      uuid.UUID
	PractitionerID uuid.UUID
	Day            time.Time
	Status         string
}

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error)

	AddSlot(ctx context.Context, s *ScheduleSlot) error
	GetSlots(ctx context.Context, practitionerID uuid.UUID) ([]*ScheduleSlot, error)
	RemoveSlot(ctx context.Context, id uuid.UUID) error
}
