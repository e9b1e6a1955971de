package staff

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, m *Member) error
	GetByID(ctx context.Context, id uuid.UUID) (*Member, error)
	Update(ctx context.Context, m *Member) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, job string, limit, offset int) ([]*Member, int, error)

	AddShift(ctx context.Context, s *Shift) error
	RemoveShift(ctx context.Context, id uuid.UUID) error
	ShiftsByStaff(ctx context.Context, staffID uuid.UUID) ([]*Shift, error)
	ShiftsByDay(ctx context.Context, day time.Time) ([]*Shift, error)
}
