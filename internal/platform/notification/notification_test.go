package notification

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

type fakeEmailSender struct {
	mu       sync.Mutex
	sent     []string
	failures int
}

func (f *fakeEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("relay unavailable")
	}
	f.sent = append(f.sent, to+"|"+subject+"|"+body)
	return nil
}

func newTestService(email *fakeEmailSender) *Service {
	svc := NewService(NewTemplateEngine(), email, NopSender{}, zerolog.Nop())
	svc.backoff = 0
	return svc
}

func TestRender_BuiltInTemplates(t *testing.T) {
	e := NewTemplateEngine()

	subject, body, err := e.Render("appointment-reminder", map[string]string{
		"patient_name": "Ada Smith",
		"date":         "2024-03-01",
		"time":         "09:30",
		"practitioner": "Dr. Osei",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(subject, "Ada Smith") {
		t.Errorf("subject = %q", subject)
	}
	if !strings.Contains(body, "Dr. Osei") || strings.Contains(body, "{{") {
		t.Errorf("body = %q", body)
	}
}

func TestRender_UnknownTemplate(t *testing.T) {
	e := NewTemplateEngine()
	if _, _, err := e.Render("no-such", nil); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestRender_UnknownPlaceholderStaysVisible(t *testing.T) {
	e := NewTemplateEngine()
	_, body, err := e.Render("email-verification", map[string]string{"first_name": "Ada"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(body, "{{verify_url}}") {
		t.Errorf("missing data should stay visible, body = %q", body)
	}
}

func TestSendTemplate_Success(t *testing.T) {
	email := &fakeEmailSender{}
	svc := newTestService(email)

	n, err := svc.SendTemplate(context.Background(), "email-verification", "ada@h.test",
		map[string]string{"first_name": "Ada", "verify_url": "http://x/verify?t=abc"})
	if err != nil {
		t.Fatalf("SendTemplate: %v", err)
	}
	if n.Status != StatusSent || n.SentAt == nil {
		t.Errorf("notification = %+v", n)
	}
	if len(email.sent) != 1 {
		t.Fatalf("sent = %v", email.sent)
	}
}

func TestSendTemplate_RetriesThenSucceeds(t *testing.T) {
	email := &fakeEmailSender{failures: 2}
	svc := newTestService(email)

	n, err := svc.SendTemplate(context.Background(), "email-verification", "ada@h.test",
		map[string]string{"first_name": "Ada"})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if n.Status != StatusSent {
		t.Errorf("status = %q", n.Status)
	}
}

func TestSendTemplate_ExhaustedRetriesFail(t *testing.T) {
	email := &fakeEmailSender{failures: 10}
	svc := newTestService(email)

	n, err := svc.SendTemplate(context.Background(), "email-verification", "ada@h.test", nil)
	if err == nil {
		t.Fatal("expected delivery error")
	}
	if n.Status != StatusFailed || n.Error == "" {
		t.Errorf("notification = %+v", n)
	}
	got, ok := svc.Get(n.ID)
	if !ok || got.Status != StatusFailed {
		t.Errorf("outbox entry = %+v, ok=%v", got, ok)
	}
}

func TestSendTemplate_MissingRecipient(t *testing.T) {
	svc := newTestService(&fakeEmailSender{})
	if _, err := svc.SendTemplate(context.Background(), "email-verification", "  ", nil); !errors.Is(err, ErrMissingRecipient) {
		t.Errorf("expected ErrMissingRecipient, got %v", err)
	}
}
