package patient

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	patients map[uuid.UUID]*Patient
	contacts map[uuid.UUID]*EmergencyContact
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		patients: make(map[uuid.UUID]*Patient),
		contacts: make(map[uuid.UUID]*EmergencyContact),
	}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockRepo) GetByMRN(_ context.Context, mrn string) (*Patient, error) {
	for _, p := range m.patients {
		if p.MRN == mrn {
			return p, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.patients, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, nameFilter string, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.patients {
		if nameFilter != "" &&
			!strings.Contains(strings.ToLower(p.FirstName), strings.ToLower(nameFilter)) &&
			!strings.Contains(strings.ToLower(p.LastName), strings.ToLower(nameFilter)) {
			continue
		}
		result = append(result, p)
	}
	return result, len(result), nil
}

func (m *mockRepo) AddContact(_ context.Context, c *EmergencyContact) error {
	c.ID = uuid.New()
	m.contacts[c.ID] = c
	return nil
}

func (m *mockRepo) GetContacts(_ context.Context, patientID uuid.UUID) ([]*EmergencyContact, error) {
	var result []*EmergencyContact
	for _, c := range m.contacts {
		if c.PatientID == patientID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *mockRepo) RemoveContact(_ context.Context, id uuid.UUID) error {
	delete(m.contacts, id)
	return nil
}

func TestCreatePatient(t *testing.T) {
	svc := NewService(newMockRepo())

	p := &Patient{MRN: "MRN-001", FirstName: "June", LastName: "Osei"}
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if !p.Active {
		t.Error("new patients start active")
	}
	if p.ID == uuid.Nil {
		t.Error("expected id to be assigned")
	}
}

func TestCreatePatient_Validation(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	if err := svc.Create(ctx, &Patient{MRN: "MRN-001", FirstName: "June"}); err == nil {
		t.Error("expected error for missing last name")
	}
	if err := svc.Create(ctx, &Patient{FirstName: "June", LastName: "Osei"}); err == nil {
		t.Error("expected error for missing MRN")
	}
}

func TestListPatients_NameFilter(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	for _, name := range []struct{ first, last string }{
		{"June", "Osei"}, {"Marta", "Lindqvist"}, {"Junius", "Okoro"},
	} {
		p := &Patient{MRN: "MRN-" + name.last, FirstName: name.first, LastName: name.last}
		if err := svc.Create(ctx, p); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	}

	got, total, err := svc.List(ctx, "jun", 20, 0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if total != 2 || len(got) != 2 {
		t.Errorf("expected 2 matches for 'jun', got %d", total)
	}
}

func TestEmergencyContacts(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p := &Patient{MRN: "MRN-001", FirstName: "June", LastName: "Osei"}
	if err := svc.Create(ctx, p); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	contact := &EmergencyContact{PatientID: p.ID, Name: "Kwame Osei", Relationship: "spouse", Phone: "555-0100"}
	if err := svc.AddContact(ctx, contact); err != nil {
		t.Fatalf("AddContact() error: %v", err)
	}

	contacts, err := svc.GetContacts(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetContacts() error: %v", err)
	}
	if len(contacts) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(contacts))
	}

	if err := svc.AddContact(ctx, &EmergencyContact{PatientID: uuid.Nil, Name: "X", Phone: "1"}); err == nil {
		t.Error("expected error for missing patient_id")
	}
	if err := svc.AddContact(ctx, &EmergencyContact{PatientID: p.ID}); err == nil {
		t.Error("expected error for missing name and phone")
	}
}
