package billing

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/careaxis/hms/internal/platform/notification"
)

type mockRepo struct {
	invoices map[uuid.UUID]*Invoice
	policies map[uuid.UUID]*InsurancePolicy
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		invoices: make(map[uuid.UUID]*Invoice),
		policies: make(map[uuid.UUID]*InsurancePolicy),
	}
}

func (m *mockRepo) CreateInvoice(_ context.Context, inv *Invoice) error {
	inv.ID = uuid.New()
	m.invoices[inv.ID] = inv
	return nil
}

func (m *mockRepo) GetInvoice(_ context.Context, id uuid.UUID) (*Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return inv, nil
}

func (m *mockRepo) UpdateInvoice(_ context.Context, inv *Invoice) error {
	m.invoices[inv.ID] = inv
	return nil
}

func (m *mockRepo) DeleteInvoice(_ context.Context, id uuid.UUID) error {
	delete(m.invoices, id)
	return nil
}

func (m *mockRepo) ListInvoices(_ context.Context, patientID uuid.UUID, status string, limit, offset int) ([]*Invoice, int, error) {
	var result []*Invoice
	for _, inv := range m.invoices {
		if patientID != uuid.Nil && inv.PatientID != patientID {
			continue
		}
		if status != "" && inv.Status != status {
			continue
		}
		result = append(result, inv)
	}
	return result, len(result), nil
}

func (m *mockRepo) AddPolicy(_ context.Context, p *InsurancePolicy) error {
	p.ID = uuid.New()
	m.policies[p.ID] = p
	return nil
}

func (m *mockRepo) GetPolicy(_ context.Context, id uuid.UUID) (*InsurancePolicy, error) {
	p, ok := m.policies[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockRepo) UpdatePolicy(_ context.Context, p *InsurancePolicy) error {
	m.policies[p.ID] = p
	return nil
}

func (m *mockRepo) DeletePolicy(_ context.Context, id uuid.UUID) error {
	delete(m.policies, id)
	return nil
}

func (m *mockRepo) PoliciesByPatient(_ context.Context, patientID uuid.UUID) ([]*InsurancePolicy, error) {
	var result []*InsurancePolicy
	for _, p := range m.policies {
		if p.PatientID == patientID {
			result = append(result, p)
		}
	}
	return result, nil
}

type captureEmailSender struct {
	to []string
}

func (f *captureEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	f.to = append(f.to, to)
	return nil
}

func newTestService() (*Service, *mockRepo, *captureEmailSender) {
	repo := newMockRepo()
	email := &captureEmailSender{}
	mailer := notification.NewService(notification.NewTemplateEngine(), email, nil, zerolog.Nop())
	return NewService(repo, mailer, zerolog.Nop()), repo, email
}

func TestCreateInvoice_Defaults(t *testing.T) {
	svc, _, _ := newTestService()

	inv := &Invoice{Number: "INV-1001", PatientID: uuid.New(), TotalCents: 12550}
	if err := svc.CreateInvoice(context.Background(), inv); err != nil {
		t.Fatalf("CreateInvoice() error: %v", err)
	}
	if inv.Status != StatusDraft {
		t.Errorf("expected draft, got %s", inv.Status)
	}
	if inv.Currency != "USD" {
		t.Errorf("expected USD default, got %s", inv.Currency)
	}
}

func TestCreateInvoice_TotalStoredAsSubmitted(t *testing.T) {
	svc, repo, _ := newTestService()

	// Items sum to 200 but the submitted total is 150; the total wins.
	inv := &Invoice{
		Number:     "INV-1002",
		PatientID:  uuid.New(),
		TotalCents: 150,
		Items: []InvoiceItem{
			{Description: "Consultation", Quantity: 1, UnitCents: 200},
		},
	}
	if err := svc.CreateInvoice(context.Background(), inv); err != nil {
		t.Fatalf("CreateInvoice() error: %v", err)
	}
	if repo.invoices[inv.ID].TotalCents != 150 {
		t.Errorf("total must be stored as submitted, got %d", repo.invoices[inv.ID].TotalCents)
	}
}

func TestCreateInvoice_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if err := svc.CreateInvoice(ctx, &Invoice{PatientID: uuid.New()}); err == nil {
		t.Error("expected error for missing number")
	}
	if err := svc.CreateInvoice(ctx, &Invoice{Number: "X", PatientID: uuid.New(), TotalCents: -5}); err == nil {
		t.Error("expected error for negative total")
	}
	if err := svc.CreateInvoice(ctx, &Invoice{
		Number: "X", PatientID: uuid.New(),
		Items: []InvoiceItem{{Description: "", Quantity: 1}},
	}); err == nil {
		t.Error("expected error for item without description")
	}
}

func TestIssueInvoice(t *testing.T) {
	svc, repo, email := newTestService()
	ctx := context.Background()

	inv := &Invoice{Number: "INV-1003", PatientID: uuid.New(), TotalCents: 5000}
	if err := svc.CreateInvoice(ctx, inv); err != nil {
		t.Fatalf("CreateInvoice() error: %v", err)
	}

	issued, err := svc.IssueInvoice(ctx, inv.ID, "pat@clinic.test", "June Osei", "Riverside Clinic")
	if err != nil {
		t.Fatalf("IssueInvoice() error: %v", err)
	}
	if issued.Status != StatusIssued || issued.IssuedAt == nil {
		t.Error("expected issued status with timestamp")
	}
	if len(email.to) != 1 {
		t.Errorf("expected invoice notice, got %d mails", len(email.to))
	}
	if repo.invoices[inv.ID].Status != StatusIssued {
		t.Error("status not persisted")
	}

	// Only drafts can be issued.
	if _, err := svc.IssueInvoice(ctx, inv.ID, "pat@clinic.test", "June Osei", "Riverside Clinic"); err == nil {
		t.Error("expected error issuing a non-draft invoice")
	}
}

func TestPolicies(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	patientID := uuid.New()

	num := "POL-889911"
	p := &InsurancePolicy{PatientID: patientID, Provider: "Acme Health", PolicyNumber: &num}
	if err := svc.AddPolicy(ctx, p); err != nil {
		t.Fatalf("AddPolicy() error: %v", err)
	}

	if err := svc.AddPolicy(ctx, &InsurancePolicy{PatientID: patientID, Provider: "Acme Health"}); err == nil {
		t.Error("expected error for missing policy number")
	}

	policies, err := svc.PoliciesByPatient(ctx, patientID)
	if err != nil {
		t.Fatalf("PoliciesByPatient() error: %v", err)
	}
	if len(policies) != 1 {
		t.Fatalf("expected 1 policy, got %d", len(policies))
	}
}
