// Package notification is the mail-relay collaborator: template rendering
// and delivery of email/SMS notifications (appointment reminders, email
// verification, billing notices) with bounded retry.
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Type is the delivery channel.
type Type string

const (
	TypeEmail Type = "email"
	TypeSMS   Type = "sms"
)

// Notification statuses.
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrMissingRecipient = errors.New("recipient is required")
)

// Built-in template IDs.
const (
	TemplateAppointmentReminder = "appointment-reminder"
	TemplateEmailVerification   = "email-verification"
	TemplateInvoiceIssued       = "invoice-issued"
)

// Notification is a single outbound message.
type Notification struct {
	ID           string            `json:"id"`
	Type         Type              `json:"type"`
	Recipient    string            `json:"recipient"`
	Subject      string            `json:"subject,omitempty"`
	Body         string            `json:"body"`
	TemplateID   string            `json:"template_id,omitempty"`
	TemplateData map[string]string `json:"template_data,omitempty"`
	Status       string            `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	SentAt       *time.Time        `json:"sent_at,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// EmailSender delivers email messages.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSSender delivers SMS messages.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// ---------------------------------------------------------------------------
// Templates
// ---------------------------------------------------------------------------

// Template is a reusable notification template with {{placeholder}} fields.
type Template struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Type    Type   `json:"type"`
}

// TemplateEngine stores templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates an engine with the built-in hospital templates.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]*Template)}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:      "appointment-reminder",
			Name:    "Appointment Reminder",
			Subject: "Appointment reminder for {{patient_name}}",
			Body:    "Dear {{patient_name}}, this is a reminder of your appointment on {{date}} at {{time}} with {{practitioner}}.",
			Type:    TypeEmail,
		},
		{
			ID:      "email-verification",
			Name:    "Email Verification",
			Subject: "Verify your email address",
			Body:    "Hello {{first_name}}, please confirm your email address by visiting {{verify_url}}. The link expires in 10 minutes.",
			Type:    TypeEmail,
		},
		{
			ID:      "invoice-issued",
			Name:    "Invoice Issued",
			Subject: "Invoice {{invoice_number}} from {{facility}}",
			Body:    "Dear {{patient_name}}, invoice {{invoice_number}} for {{amount}} has been issued. Please review it in your patient portal.",
			Type:    TypeEmail,
		},
	}
	for i := range builtIn {
		e.templates[builtIn[i].ID] = &builtIn[i]
	}
}

// Register adds or replaces a template.
func (e *TemplateEngine) Register(t *Template) {
	e.mu.Lock()
	e.templates[t.ID] = t
	e.mu.Unlock()
}

// Render substitutes {{key}} placeholders in the template's subject and body.
// Unknown placeholders are left in place so missing data is visible.
func (e *TemplateEngine) Render(id string, data map[string]string) (subject, body string, err error) {
	e.mu.RLock()
	t, ok := e.templates[id]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return substitute(t.Subject, data), substitute(t.Body, data), nil
}

func substitute(s string, data map[string]string) string {
	for k, v := range data {
		s = strings.ReplaceAll(s, "{{"+k+"}}", v)
	}
	return s
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// maxAttempts bounds delivery retries per notification.
const maxAttempts = 3

// Service renders and dispatches notifications, recording outcomes in an
// in-memory outbox for inspection.
type Service struct {
	mu      sync.RWMutex
	outbox  map[string]*Notification
	engine  *TemplateEngine
	email   EmailSender
	sms     SMSSender
	log     zerolog.Logger
	backoff time.Duration
}

func NewService(engine *TemplateEngine, email EmailSender, sms SMSSender, log zerolog.Logger) *Service {
	return &Service{
		outbox:  make(map[string]*Notification),
		engine:  engine,
		email:   email,
		sms:     sms,
		log:     log,
		backoff: 500 * time.Millisecond,
	}
}

// SendTemplate renders template id with data and delivers it to recipient.
// The returned notification records the final status; delivery errors are
// captured there, not panicked.
func (s *Service) SendTemplate(ctx context.Context, id, recipient string, data map[string]string) (*Notification, error) {
	if strings.TrimSpace(recipient) == "" {
		return nil, ErrMissingRecipient
	}
	subject, body, err := s.engine.Render(id, data)
	if err != nil {
		return nil, err
	}

	n := &Notification{
		ID:           uuid.NewString(),
		Type:         TypeEmail,
		Recipient:    recipient,
		Subject:      subject,
		Body:         body,
		TemplateID:   id,
		TemplateData: data,
		Status:       StatusPending,
		CreatedAt:    time.Now(),
	}
	s.record(n)

	if err := s.deliver(ctx, n); err != nil {
		return n, err
	}
	return n, nil
}

// Send delivers an ad-hoc notification without a template.
func (s *Service) Send(ctx context.Context, n *Notification) error {
	if strings.TrimSpace(n.Recipient) == "" {
		return ErrMissingRecipient
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.Status = StatusPending
	n.CreatedAt = time.Now()
	s.record(n)
	return s.deliver(ctx, n)
}

func (s *Service) deliver(ctx context.Context, n *Notification) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		switch n.Type {
		case TypeSMS:
			lastErr = s.sms.SendSMS(ctx, n.Recipient, n.Body)
		default:
			lastErr = s.email.SendEmail(ctx, n.Recipient, n.Subject, n.Body)
		}
		if lastErr == nil {
			now := time.Now()
			s.update(n.ID, func(n *Notification) {
				n.Status = StatusSent
				n.SentAt = &now
			})
			return nil
		}

		s.log.Warn().Err(lastErr).
			Str("notification_id", n.ID).
			Int("attempt", attempt).
			Msg("notification delivery failed")

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
				attempt = maxAttempts
			case <-time.After(s.backoff * time.Duration(attempt)):
			}
		}
	}

	s.update(n.ID, func(n *Notification) {
		n.Status = StatusFailed
		n.Error = lastErr.Error()
	})
	return fmt.Errorf("deliver notification %s: %w", n.ID, lastErr)
}

func (s *Service) record(n *Notification) {
	s.mu.Lock()
	s.outbox[n.ID] = n
	s.mu.Unlock()
}

func (s *Service) update(id string, fn func(*Notification)) {
	s.mu.Lock()
	if n, ok := s.outbox[id]; ok {
		fn(n)
	}
	s.mu.Unlock()
}

// Get returns a recorded notification by ID.
func (s *Service) Get(id string) (*Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.outbox[id]
	return n, ok
}
