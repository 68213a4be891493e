package email

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/feesync/feesync/internal/config"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	defaultHost  = "https://api.sendgrid.com"
	sendEndpoint = "/v3/mail/send"
)

// EmailClient represents a SendGrid client wrapper
type EmailClient struct {
	apiKey  string
	host    string
	from    *sgmail.Email
	enabled bool
}

// NewEmailClient creates a new email client. Without an API key or sender
// address the client is disabled and every send fails.
func NewEmailClient(cfg *config.Configuration) *EmailClient {
	return NewEmailClientWithHost(cfg, defaultHost)
}

// NewEmailClientWithHost points the client at another API host
func NewEmailClientWithHost(cfg *config.Configuration, host string) *EmailClient {
	sg := cfg.SendGrid
	if sg.APIKey == "" || sg.FromEmail == "" {
		return &EmailClient{enabled: false}
	}

	return &EmailClient{
		apiKey:  sg.APIKey,
		host:    strings.TrimSuffix(host, "/"),
		from:    sgmail.NewEmail(sg.FromName, sg.FromEmail),
		enabled: true,
	}
}

// IsEnabled returns whether the email client is enabled
func (c *EmailClient) IsEnabled() bool {
	return c.enabled
}

// GetFromAddress returns the default from address
func (c *EmailClient) GetFromAddress() string {
	if c.from == nil {
		return ""
	}
	return c.from.Address
}

// SendEmail sends one message with plain text and HTML parts and returns the message id
func (c *EmailClient) SendEmail(ctx context.Context, toName, to, subject, htmlContent, textContent string) (string, error) {
	if !c.enabled {
		return "", fmt.Errorf("email client is disabled")
	}

	p := sgmail.NewPersonalization()
	p.AddTos(sgmail.NewEmail(toName, to))
	p.Subject = subject

	m := sgmail.NewV3Mail()
	m.SetFrom(c.from)
	m.AddPersonalizations(p)
	if textContent != "" {
		m.AddContent(sgmail.NewContent("text/plain", textContent))
	}
	if htmlContent != "" {
		m.AddContent(sgmail.NewContent("text/html", htmlContent))
	}

	req := sendgrid.GetRequest(c.apiKey, sendEndpoint, c.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("sendgrid returned status %d: %s", res.StatusCode, res.Body)
	}

	if ids := res.Headers["X-Message-Id"]; len(ids) > 0 {
		return ids[0], nil
	}
	return "", nil
}
