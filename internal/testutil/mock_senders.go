package testutil

import (
	"context"
	"sync"

	"github.com/feesync/feesync/internal/email"
	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/messaging"
)

// MockEmailSender implements email.Sender and records what was sent
type MockEmailSender struct {
	mu       sync.Mutex
	Disabled bool
	// FailFor makes sends to these addresses fail
	FailFor map[string]bool
	sent    []email.SendEmailRequest
}

func NewMockEmailSender() *MockEmailSender {
	return &MockEmailSender{FailFor: map[string]bool{}}
}

func (m *MockEmailSender) IsEnabled() bool {
	return !m.Disabled
}

func (m *MockEmailSender) SendEmail(ctx context.Context, req email.SendEmailRequest) (*email.SendEmailResponse, error) {
	if m.Disabled {
		return nil, ierr.NewError("email is disabled").
			WithHint("Email is not configured").
			Mark(ierr.ErrValidation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailFor[req.ToAddress] {
		return nil, ierr.NewErrorf("delivery to %s failed", req.ToAddress).
			WithHint("Failed to send email").
			Mark(ierr.ErrHTTPClient)
	}
	m.sent = append(m.sent, req)
	return &email.SendEmailResponse{MessageID: "msg_" + req.ToAddress, Success: true}, nil
}

func (m *MockEmailSender) SendTemplate(ctx context.Context, toName, toAddress string, tmpl email.Template, data map[string]interface{}) (*email.SendEmailResponse, error) {
	subject, text, html := tmpl.Render(data)
	return m.SendEmail(ctx, email.SendEmailRequest{
		ToName:    toName,
		ToAddress: toAddress,
		Subject:   subject,
		Text:      text,
		HTML:      html,
	})
}

// Sent returns the delivered emails
func (m *MockEmailSender) Sent() []email.SendEmailRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]email.SendEmailRequest(nil), m.sent...)
}

// MockMessagingSender implements messaging.Sender and records what was sent
type MockMessagingSender struct {
	mu       sync.Mutex
	Disabled bool
	FailFor  map[string]bool
	sent     []MockMessage
}

// MockMessage is one recorded text message
type MockMessage struct {
	To   string
	Body string
}

func NewMockMessagingSender() *MockMessagingSender {
	return &MockMessagingSender{FailFor: map[string]bool{}}
}

func (m *MockMessagingSender) IsEnabled() bool {
	return !m.Disabled
}

func (m *MockMessagingSender) Send(ctx context.Context, phone, body string) (*messaging.Result, error) {
	if m.Disabled {
		return nil, ierr.NewError("messaging is disabled").
			WithHint("WhatsApp and SMS are not configured").
			Mark(ierr.ErrValidation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailFor[phone] {
		return nil, ierr.NewErrorf("delivery to %s failed", phone).
			WithHint("Failed to send whatsapp message").
			Mark(ierr.ErrHTTPClient)
	}
	m.sent = append(m.sent, MockMessage{To: phone, Body: body})
	return &messaging.Result{Channel: messaging.ChannelWhatsApp, SID: "SM" + phone, To: phone}, nil
}

// Sent returns the delivered messages
func (m *MockMessagingSender) Sent() []MockMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockMessage(nil), m.sent...)
}
