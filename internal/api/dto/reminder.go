package dto

import (
	"github.com/feesync/feesync/internal/types"
	"github.com/feesync/feesync/internal/validator"
)

type UnpaidStudentsRequest struct {
	// Month defaults to the current month
	Month string `json:"month,omitempty" validate:"omitempty,yyyymm"`
}

func (r *UnpaidStudentsRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type UnpaidStudent struct {
	ContactID   string  `json:"contact_id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone,omitempty"`
	Course      string  `json:"course,omitempty"`
	Batch       string  `json:"batch,omitempty"`
	Outstanding float64 `json:"outstanding"`
}

type UnpaidStudentsResponse struct {
	Month    string          `json:"month"`
	Count    int             `json:"count"`
	Students []UnpaidStudent `json:"students"`
}

type SendReminderRequest struct {
	CustomerID string                `json:"customer_id" validate:"required"`
	Month      string                `json:"month,omitempty" validate:"omitempty,yyyymm"`
	Channel    types.ReminderChannel `json:"channel,omitempty" validate:"omitempty,oneof=email whatsapp both"`
}

func (r *SendReminderRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type SendBulkRemindersRequest struct {
	// CustomerIDs defaults to every student unpaid for the month
	CustomerIDs []string              `json:"customer_ids,omitempty"`
	Month       string                `json:"month,omitempty" validate:"omitempty,yyyymm"`
	Channel     types.ReminderChannel `json:"channel,omitempty" validate:"omitempty,oneof=email whatsapp both"`
}

func (r *SendBulkRemindersRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ChannelResult is the outcome of one delivery attempt
type ChannelResult struct {
	Success   bool   `json:"success"`
	Via       string `json:"via,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

type SendReminderResponse struct {
	CustomerID string         `json:"customer_id"`
	Name       string         `json:"name,omitempty"`
	Success    bool           `json:"success"`
	Error      string         `json:"error,omitempty"`
	Email      *ChannelResult `json:"email,omitempty"`
	WhatsApp   *ChannelResult `json:"whatsapp,omitempty"`
}

type SendBulkRemindersResponse struct {
	Month      string                  `json:"month"`
	Channel    types.ReminderChannel   `json:"channel"`
	Total      int                     `json:"total"`
	Successful int                     `json:"successful"`
	Failed     int                     `json:"failed"`
	Results    []*SendReminderResponse `json:"results"`
}
