package staff

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	staff Repository
}

func NewService(staff Repository) *Service {
	return &Service{staff: staff}
}

func (s *Service) Create(ctx context.Context, m *Member) error {
	if err := validateMember(m); err != nil {
		return err
	}
	m.Active = true
	return s.staff.Create(ctx, m)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Member, error) {
	return s.staff.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, m *Member) error {
	if err := validateMember(m); err != nil {
		return err
	}
	return s.staff.Update(ctx, m)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.staff.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, job string, limit, offset int) ([]*Member, int, error) {
	if job != "" && !validJobs[job] {
		return nil, 0, fmt.Errorf("unknown job %q", job)
	}
	return s.staff.List(ctx, job, limit, offset)
}

func validateMember(m *Member) error {
	if m.FirstName == "" || m.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	if !validJobs[m.Job] {
		return fmt.Errorf("unknown job %q", m.Job)
	}
	return nil
}

func (s *Service) AddShift(ctx context.Context, sh *Shift) error {
	if sh.StaffID == uuid.Nil {
		return fmt.Errorf("staff_id is required")
	}
	if sh.StartTime.IsZero() || sh.EndTime.IsZero() {
		return fmt.Errorf("start_time and end_time are required")
	}
	if !sh.EndTime.After(sh.StartTime) {
		return fmt.Errorf("end_time must be after start_time")
	}
	if _, err := s.staff.GetByID(ctx, sh.StaffID); err != nil {
		return fmt.Errorf("staff member not found")
	}
	return s.staff.AddShift(ctx, sh)
}

func (s *Service) RemoveShift(ctx context.Context, id uuid.UUID) error {
	return s.staff.RemoveShift(ctx, id)
}

func (s *Service) ShiftsByStaff(ctx context.Context, staffID uuid.UUID) ([]*Shift, error) {
	return s.staff.ShiftsByStaff(ctx, staffID)
}

func (s *Service) ShiftsByDay(ctx context.Context, day time.Time) ([]*Shift, error) {
	return s.staff.ShiftsByDay(ctx, day)
}
