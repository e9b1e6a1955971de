package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/careaxis/hms/internal/platform/notification"
)

type Service struct {
	billing Repository
	mailer  *notification.Service
	log     zerolog.Logger
}

// NewService builds the billing service. The mailer is optional; with nil no
// invoice notices go out.
func NewService(billing Repository, mailer *notification.Service, log zerolog.Logger) *Service {
	return &Service{
		billing: billing,
		mailer:  mailer,
		log:     log.With().Str("component", "billing").Logger(),
	}
}

func (s *Service) CreateInvoice(ctx context.Context, inv *Invoice) error {
	if inv.Number == "" {
		return fmt.Errorf("number is required")
	}
	if inv.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if inv.TotalCents < 0 {
		return fmt.Errorf("total_cents cannot be negative")
	}
	if inv.Status == "" {
		inv.Status = StatusDraft
	}
	if !validStatuses[inv.Status] {
		return fmt.Errorf("unknown status %q", inv.Status)
	}
	if inv.Currency == "" {
		inv.Currency = "USD"
	}
	for i := range inv.Items {
		if inv.Items[i].Description == "" {
			return fmt.Errorf("item %d: description is required", i)
		}
		if inv.Items[i].Quantity < 1 {
			return fmt.Errorf("item %d: quantity must be at least 1", i)
		}
	}
	return s.billing.CreateInvoice(ctx, inv)
}

func (s *Service) GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.billing.GetInvoice(ctx, id)
}

func (s *Service) UpdateInvoice(ctx context.Context, inv *Invoice) error {
	if !validStatuses[inv.Status] {
		return fmt.Errorf("unknown status %q", inv.Status)
	}
	if inv.TotalCents < 0 {
		return fmt.Errorf("total_cents cannot be negative")
	}
	return s.billing.UpdateInvoice(ctx, inv)
}

// IssueInvoice transitions a draft to issued, stamps the issue time, and
// sends the invoice notice. A mail failure does not fail the issue.
func (s *Service) IssueInvoice(ctx context.Context, id uuid.UUID, recipientEmail, patientName, facility string) (*Invoice, error) {
	inv, err := s.billing.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != StatusDraft {
		return nil, fmt.Errorf("only draft invoices can be issued")
	}
	now := time.Now()
	inv.Status = StatusIssued
	inv.IssuedAt = &now
	if err := s.billing.UpdateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	if s.mailer != nil && recipientEmail != "" {
		_, err := s.mailer.SendTemplate(ctx, notification.TemplateInvoiceIssued, recipientEmail, map[string]string{
			"invoice_number": inv.Number,
			"patient_name":   patientName,
			"facility":       facility,
			"amount":         fmt.Sprintf("%s %.2f", inv.Currency, float64(inv.TotalCents)/100),
		})
		if err != nil {
			s.log.Warn().Err(err).Str("invoice", inv.Number).Msg("invoice notice not delivered")
		}
	}
	return inv, nil
}

func (s *Service) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	return s.billing.DeleteInvoice(ctx, id)
}

func (s *Service) ListInvoices(ctx context.Context, patientID uuid.UUID, status string, limit, offset int) ([]*Invoice, int, error) {
	if status != "" && !validStatuses[status] {
		return nil, 0, fmt.Errorf("unknown status %q", status)
	}
	return s.billing.ListInvoices(ctx, patientID, status, limit, offset)
}

func (s *Service) AddPolicy(ctx context.Context, p *InsurancePolicy) error {
	if p.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if p.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if p.PolicyNumber == nil || *p.PolicyNumber == "" {
		return fmt.Errorf("policy_number is required")
	}
	return s.billing.AddPolicy(ctx, p)
}

func (s *Service) GetPolicy(ctx context.Context, id uuid.UUID) (*InsurancePolicy, error) {
	return s.billing.GetPolicy(ctx, id)
}

func (s *Service) UpdatePolicy(ctx context.Context, p *InsurancePolicy) error {
	if p.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	return s.billing.UpdatePolicy(ctx, p)
}

func (s *Service) DeletePolicy(ctx context.Context, id uuid.UUID) error {
	return s.billing.DeletePolicy(ctx, id)
}

func (s *Service) PoliciesByPatient(ctx context.Context, patientID uuid.UUID) ([]*InsurancePolicy, error) {
	return s.billing.PoliciesByPatient(ctx, patientID)
}
