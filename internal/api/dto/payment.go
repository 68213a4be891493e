package dto

import (
	"context"
	"strings"

	"github.com/feesync/feesync/internal/domain/payment"
	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/types"
	"github.com/feesync/feesync/internal/validator"
)

// CreatePaymentRequest records a payment taken outside the provider
type CreatePaymentRequest struct {
	PaymentID       string   `json:"payment_id,omitempty" validate:"omitempty,max=64"`
	PaymentNumber   string   `json:"payment_number,omitempty"`
	CustomerID      string   `json:"customer_id" validate:"required"`
	Amount          float64  `json:"amount" validate:"required,gt=0"`
	Date            string   `json:"date" validate:"required"`
	PaymentMode     string   `json:"payment_mode,omitempty"`
	ReferenceNumber string   `json:"reference_number,omitempty"`
	Description     string   `json:"description,omitempty"`
	InvoiceNumbers  []string `json:"invoice_numbers,omitempty"`
	CurrencyCode    string   `json:"currency_code,omitempty" validate:"omitempty,len=3"`
}

func (r *CreatePaymentRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return validatePaymentDate(r.Date)
}

func validatePaymentDate(date string) error {
	if strings.TrimSpace(date) == "" {
		return ierr.NewError("date cannot be empty").
			WithHint("Provide the payment date as YYYY-MM-DD").
			Mark(ierr.ErrValidation)
	}
	_, err := types.ParseDate(date)
	return err
}

// ToPayment builds the payment; customerName comes from the mirrored customer
func (r *CreatePaymentRequest) ToPayment(ctx context.Context, customerName string) (*payment.Payment, error) {
	date, err := types.ParseDate(r.Date)
	if err != nil {
		return nil, err
	}
	paymentID := strings.TrimSpace(r.PaymentID)
	if paymentID == "" {
		paymentID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT)
	}
	mode := r.PaymentMode
	if mode == "" {
		mode = "cash"
	}
	return &payment.Payment{
		PaymentID:       paymentID,
		PaymentNumber:   r.PaymentNumber,
		CustomerID:      r.CustomerID,
		CustomerName:    customerName,
		Amount:          r.Amount,
		Date:            date,
		PaymentMode:     mode,
		ReferenceNumber: r.ReferenceNumber,
		Description:     r.Description,
		InvoiceNumbers:  r.InvoiceNumbers,
		CurrencyCode:    r.CurrencyCode,
		Source:          types.SourceManual,
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}, nil
}

// UpdatePaymentRequest is a partial update; nil fields are left untouched
type UpdatePaymentRequest struct {
	Amount          *float64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
	Date            *string  `json:"date,omitempty"`
	PaymentMode     *string  `json:"payment_mode,omitempty"`
	ReferenceNumber *string  `json:"reference_number,omitempty"`
	Description     *string  `json:"description,omitempty"`
}

func (r *UpdatePaymentRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.Date != nil {
		return validatePaymentDate(*r.Date)
	}
	return nil
}

func (r *UpdatePaymentRequest) Apply(ctx context.Context, p *payment.Payment) error {
	if r.Amount != nil {
		p.Amount = *r.Amount
	}
	if r.Date != nil {
		date, err := types.ParseDate(*r.Date)
		if err != nil {
			return err
		}
		p.Date = date
	}
	if r.PaymentMode != nil {
		p.PaymentMode = *r.PaymentMode
	}
	if r.ReferenceNumber != nil {
		p.ReferenceNumber = *r.ReferenceNumber
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	p.Touch(ctx)
	return nil
}

type PaymentResponse struct {
	*payment.Payment
}

type ListPaymentsResponse = types.ListResponse[*PaymentResponse]
