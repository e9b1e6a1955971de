package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	appointments Repository
}

func NewService(appointments Repository) *Service {
	return &Service{appointments: appointments}
}

func (s *Service) Create(ctx context.Context, a *Appointment) error {
	if a.PatientID == uuid.Nil || a.PractitionerID == uuid.Nil {
		return fmt.Errorf("patient_id and practitioner_id are required")
	}
	if a.StartTime.IsZero() || a.EndTime.IsZero() {
		return fmt.Errorf("start_time and end_time are required")
	}
	if !a.EndTime.After(a.StartTime) {
		return fmt.Errorf("end_time must be after start_time")
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if !validStatuses[a.Status] {
		return fmt.Errorf("unknown status %q", a.Status)
	}
	return s.appointments.Create(ctx, a)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, a *Appointment) error {
	if !a.EndTime.After(a.StartTime) {
		return fmt.Errorf("end_time must be after start_time")
	}
	if !validStatuses[a.Status] {
		return fmt.Errorf("unknown status %q", a.Status)
	}
	return s.appointments.Update(ctx, a)
}

// UpdateStatus transitions an appointment without touching the rest of the
// record.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Appointment, error) {
	if !validStatuses[status] {
		return nil, fmt.Errorf("unknown status %q", status)
	}
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Status = status
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.appointments.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.List(ctx, f, limit, offset)
}

func (s *Service) AddSlot(ctx context.Context, slot *ScheduleSlot) error {
	if slot.PractitionerID == uuid.Nil {
		return fmt.Errorf("practitioner_id is required")
	}
	if slot.Weekday < 0 || slot.Weekday > 6 {
		return fmt.Errorf("weekday must be 0 through 6")
	}
	if slot.StartTime == "" || slot.EndTime == "" {
		return fmt.Errorf("start_time and end_time are required")
	}
	return s.appointments.AddSlot(ctx, slot)
}

func (s *Service) GetSlots(ctx context.Context, practitionerID uuid.UUID) ([]*ScheduleSlot, error) {
	return s.appointments.GetSlots(ctx, practitionerID)
}

func (s *Service) RemoveSlot(ctx context.Context, id uuid.UUID) error {
	return s.appointments.RemoveSlot(ctx, id)
}
