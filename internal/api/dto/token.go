package dto

import (
	"time"

	"github.com/feesync/feesync/internal/types"
	"github.com/feesync/feesync/internal/validator"
)

// TokenStatusResponse reports the provider grant without exposing it
type TokenStatusResponse struct {
	Valid            bool             `json:"valid"`
	State            types.TokenState `json:"state"`
	OrganizationID   string           `json:"organization_id,omitempty"`
	LastRefreshed    *time.Time       `json:"last_refreshed,omitempty"`
	ExpiresAt        *time.Time       `json:"expires_at,omitempty"`
	ExpiresInSeconds int64            `json:"expires_in_seconds"`
	NextRefreshAt    *time.Time       `json:"next_refresh_at,omitempty"`
	LastError        string           `json:"last_error,omitempty"`
}

type AuthURLResponse struct {
	URL string `json:"url"`
}

// ZohoInvoicesRequest lists one customer's invoices straight from the provider
type ZohoInvoicesRequest struct {
	CustomerID string `form:"customer_id" validate:"required"`
}

func (r *ZohoInvoicesRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ZohoPaymentsRequest bounds a provider payment listing, both dates inclusive.
// An empty request lists the current month.
type ZohoPaymentsRequest struct {
	DateStart string `form:"date_start" validate:"omitempty,datetime=2006-01-02"`
	DateEnd   string `form:"date_end" validate:"omitempty,datetime=2006-01-02"`
}

func (r *ZohoPaymentsRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ZohoListResponse wraps an unmodified provider listing
type ZohoListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func NewZohoListResponse[T any](items []T) *ZohoListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return &ZohoListResponse[T]{Items: items, Count: len(items)}
}
