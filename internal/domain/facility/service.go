package facility

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	facilities Repository
}

func NewService(facilities Repository) *Service {
	return &Service{facilities: facilities}
}

func (s *Service) Create(ctx context.Context, f *Facility) error {
	if f.Name == "" {
		return fmt.Errorf("name is required")
	}
	if f.Kind == "" {
		return fmt.Errorf("kind is required")
	}
	f.Active = true
	return s.facilities.Create(ctx, f)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Facility, error) {
	return s.facilities.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, f *Facility) error {
	if f.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.facilities.Update(ctx, f)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.facilities.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Facility, int, error) {
	return s.facilities.List(ctx, limit, offset)
}

func (s *Service) CreateRoom(ctx context.Context, r *Room) error {
	if r.FacilityID == uuid.Nil {
		return fmt.Errorf("facility_id is required")
	}
	if r.Number == "" {
		return fmt.Errorf("number is required")
	}
	if r.Capacity < 1 {
		return fmt.Errorf("capacity must be at least 1")
	}
	if r.Status == "" {
		r.Status = RoomAvailable
	}
	if !validRoomStatuses[r.Status] {
		return fmt.Errorf("unknown room status %q", r.Status)
	}
	return s.facilities.CreateRoom(ctx, r)
}

func (s *Service) GetRoom(ctx context.Context, id uuid.UUID) (*Room, error) {
	return s.facilities.GetRoom(ctx, id)
}

func (s *Service) UpdateRoom(ctx context.Context, r *Room) error {
	if !validRoomStatuses[r.Status] {
		return fmt.Errorf("unknown room status %q", r.Status)
	}
	return s.facilities.UpdateRoom(ctx, r)
}

func (s *Service) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	return s.facilities.DeleteRoom(ctx, id)
}

func (s *Service) RoomsByFacility(ctx context.Context, facilityID uuid.UUID) ([]*Room, error) {
	return s.facilities.RoomsByFacility(ctx, facilityID)
}
