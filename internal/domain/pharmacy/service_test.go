package pharmacy

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	meds map[uuid.UUID]*Medication
	lots map[uuid.UUID]*InventoryLot
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		meds: make(map[uuid.UUID]*Medication),
		lots: make(map[uuid.UUID]*InventoryLot),
	}
}

func (m *mockRepo) Create(_ context.Context, med *Medication) error {
	med.ID = uuid.New()
	m.meds[med.ID] = med
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Medication, error) {
	med, ok := m.meds[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return med, nil
}

func (m *mockRepo) Update(_ context.Context, med *Medication) error {
	m.meds[med.ID] = med
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.meds, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, nameFilter string, limit, offset int) ([]*Medication, int, error) {
	var result []*Medication
	for _, med := range m.meds {
		if nameFilter != "" && !strings.Contains(strings.ToLower(med.Name), strings.ToLower(nameFilter)) {
			continue
		}
		result = append(result, med)
	}
	return result, len(result), nil
}

func (m *mockRepo) AddLot(_ context.Context, l *InventoryLot) error {
	l.ID = uuid.New()
	m.lots[l.ID] = l
	return nil
}

func (m *mockRepo) UpdateLot(_ context.Context, l *InventoryLot) error {
	m.lots[l.ID] = l
	return nil
}

func (m *mockRepo) RemoveLot(_ context.Context, id uuid.UUID) error {
	delete(m.lots, id)
	return nil
}

func (m *mockRepo) LotsByMedication(_ context.Context, medicationID uuid.UUID) ([]*InventoryLot, error) {
	var result []*InventoryLot
	for _, l := range m.lots {
		if l.MedicationID == medicationID {
			result = append(result, l)
		}
	}
	return result, nil
}

func TestCreateMedication(t *testing.T) {
	svc := NewService(newMockRepo())

	m := &Medication{Name: "Amoxicillin", Form: "capsule"}
	if err := svc.Create(context.Background(), m); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if !m.Active {
		t.Error("new catalog entries start active")
	}

	if err := svc.Create(context.Background(), &Medication{Form: "tablet"}); err == nil {
		t.Error("expected error for missing name")
	}
	if err := svc.Create(context.Background(), &Medication{Name: "Ibuprofen"}); err == nil {
		t.Error("expected error for missing form")
	}
}

func TestInventoryLots(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	m := &Medication{Name: "Amoxicillin", Form: "capsule"}
	if err := svc.Create(ctx, m); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	lot := &InventoryLot{
		MedicationID: m.ID,
		LotNumber:    "LOT-2026-001",
		Quantity:     500,
		ExpiresAt:    time.Now().AddDate(1, 0, 0),
	}
	if err := svc.AddLot(ctx, lot); err != nil {
		t.Fatalf("AddLot() error: %v", err)
	}
	if lot.ReceivedAt.IsZero() {
		t.Error("received_at defaults to now")
	}

	if err := svc.AddLot(ctx, &InventoryLot{MedicationID: m.ID, LotNumber: "L2", Quantity: -1, ExpiresAt: time.Now()}); err == nil {
		t.Error("expected error for negative quantity")
	}
	if err := svc.AddLot(ctx, &InventoryLot{MedicationID: m.ID, LotNumber: "L3", Quantity: 1}); err == nil {
		t.Error("expected error for missing expiry")
	}

	lots, err := svc.LotsByMedication(ctx, m.ID)
	if err != nil {
		t.Fatalf("LotsByMedication() error: %v", err)
	}
	if len(lots) != 1 {
		t.Fatalf("expected 1 lot, got %d", len(lots))
	}
}
