package messaging

import (
	"context"
	"strings"

	"github.com/feesync/feesync/internal/config"
	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/logger"
	"github.com/samber/lo"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Channel is the transport a message went out on
type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
	ChannelSMS      Channel = "sms"
)

// Result identifies a delivered message
type Result struct {
	Channel Channel `json:"channel"`
	SID     string  `json:"sid"`
	To      string  `json:"to"`
}

// Sender delivers short text messages
type Sender interface {
	IsEnabled() bool
	// Send tries WhatsApp first and falls back to SMS when WhatsApp fails
	Send(ctx context.Context, phone, body string) (*Result, error)
}

// messageCreator is the part of the Twilio API this package uses
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

type Client struct {
	api                messageCreator
	whatsAppFrom       string
	smsFrom            string
	defaultCountryCode string
	logger             *logger.Logger
}

func NewClient(cfg *config.Configuration, logger *logger.Logger) Sender {
	var api messageCreator
	if cfg.Twilio.AccountSID != "" && cfg.Twilio.AuthToken != "" {
		rest := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.Twilio.AccountSID,
			Password: cfg.Twilio.AuthToken,
		})
		api = rest.Api
	}
	return newClient(api, cfg, logger)
}

func newClient(api messageCreator, cfg *config.Configuration, logger *logger.Logger) *Client {
	return &Client{
		api:                api,
		whatsAppFrom:       strings.TrimSpace(cfg.Twilio.WhatsAppNumber),
		smsFrom:            strings.TrimSpace(cfg.Twilio.PhoneNumber),
		defaultCountryCode: cfg.Reminder.DefaultCountryCode,
		logger:             logger,
	}
}

func (c *Client) IsEnabled() bool {
	return c.api != nil && (c.whatsAppFrom != "" || c.smsFrom != "")
}

func (c *Client) Send(ctx context.Context, phone, body string) (*Result, error) {
	if !c.IsEnabled() {
		return nil, ierr.NewError("messaging is disabled").
			WithHint("WhatsApp and SMS are not configured. Set the TWILIO_* variables.").
			Mark(ierr.ErrValidation)
	}

	to, err := NormalizePhone(phone, c.defaultCountryCode)
	if err != nil {
		return nil, err
	}

	if c.whatsAppFrom != "" {
		sid, err := c.create(ChannelWhatsApp, "whatsapp:"+to, "whatsapp:"+strings.TrimPrefix(c.whatsAppFrom, "whatsapp:"), body)
		if err == nil {
			return &Result{Channel: ChannelWhatsApp, SID: sid, To: to}, nil
		}
		c.logger.Warnw("whatsapp send failed, falling back to sms",
			"to", to,
			"error", err,
		)
		if c.smsFrom == "" {
			return nil, sendError(err, ChannelWhatsApp, to)
		}
	}

	sid, err := c.create(ChannelSMS, to, c.smsFrom, body)
	if err != nil {
		return nil, sendError(err, ChannelSMS, to)
	}
	return &Result{Channel: ChannelSMS, SID: sid, To: to}, nil
}

func (c *Client) create(channel Channel, to, from, body string) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(body)

	resp, err := c.api.CreateMessage(params)
	if err != nil {
		return "", err
	}

	sid := lo.FromPtr(resp.Sid)
	c.logger.Infow("message sent", "channel", channel, "to", to, "sid", sid)
	return sid, nil
}

func sendError(err error, channel Channel, to string) error {
	return ierr.WithError(err).
		WithHintf("Failed to send %s message", channel).
		WithReportableDetails(map[string]any{
			"channel": channel,
			"to":      to,
		}).
		Mark(ierr.ErrHTTPClient)
}
