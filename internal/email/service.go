package email

import (
	"context"

	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/logger"
)

// Sender delivers rendered emails
type Sender interface {
	IsEnabled() bool
	SendEmail(ctx context.Context, req SendEmailRequest) (*SendEmailResponse, error)
	SendTemplate(ctx context.Context, toName, toAddress string, tmpl Template, data map[string]interface{}) (*SendEmailResponse, error)
}

// Email handles email operations
type Email struct {
	client *EmailClient
	logger *logger.Logger
}

func NewEmail(client *EmailClient, logger *logger.Logger) Sender {
	return &Email{
		client: client,
		logger: logger,
	}
}

func (s *Email) IsEnabled() bool {
	return s.client.IsEnabled()
}

// SendEmail sends one message. A disabled client is reported as a validation error.
func (s *Email) SendEmail(ctx context.Context, req SendEmailRequest) (*SendEmailResponse, error) {
	if !s.client.IsEnabled() {
		s.logger.Warnw("email client is disabled, skipping email send",
			"to", req.ToAddress,
			"subject", req.Subject,
		)
		return &SendEmailResponse{Success: false, Error: "email client is disabled"},
			ierr.NewError("email client is disabled").
				WithHint("Email is not configured. Set SENDGRID_API_KEY and SENDGRID_FROM_EMAIL.").
				Mark(ierr.ErrValidation)
	}
	if req.ToAddress == "" {
		return &SendEmailResponse{Success: false, Error: "missing recipient"},
			ierr.NewError("missing recipient address").
				WithHint("Recipient has no email address").
				Mark(ierr.ErrValidation)
	}

	messageID, err := s.client.SendEmail(ctx, req.ToName, req.ToAddress, req.Subject, req.HTML, req.Text)
	if err != nil {
		s.logger.Errorw("failed to send email",
			"error", err,
			"to", req.ToAddress,
			"subject", req.Subject,
		)
		return &SendEmailResponse{Success: false, Error: err.Error()},
			ierr.WithError(err).
				WithHint("Failed to send email").
				Mark(ierr.ErrHTTPClient)
	}

	s.logger.Infow("email sent successfully",
		"message_id", messageID,
		"to", req.ToAddress,
		"subject", req.Subject,
	)

	return &SendEmailResponse{
		MessageID: messageID,
		Success:   true,
	}, nil
}

func (s *Email) SendTemplate(ctx context.Context, toName, toAddress string, tmpl Template, data map[string]interface{}) (*SendEmailResponse, error) {
	subject, text, html := tmpl.Render(data)

	s.logger.Debugw("preparing to send templated email",
		"to", toAddress,
		"template", tmpl.Name,
	)

	return s.SendEmail(ctx, SendEmailRequest{
		ToName:    toName,
		ToAddress: toAddress,
		Subject:   subject,
		Text:      text,
		HTML:      html,
	})
}
