package dto

import (
	"time"

	"github.com/feesync/feesync/internal/aggregation"
	"github.com/feesync/feesync/internal/validator"
)

type DashboardKPIsResponse struct {
	aggregation.KPIs
	GeneratedAt time.Time `json:"generated_at"`
}

type OutstandingResponse struct {
	CustomerID   string  `json:"customer_id"`
	CustomerName string  `json:"customer_name"`
	Outstanding  float64 `json:"outstanding"`
	CurrencyCode string  `json:"currency_code,omitempty"`
}

type MonthlyPaidRequest struct {
	CustomerID string `form:"customer_id" validate:"required"`
	Month      string `form:"month" validate:"omitempty,yyyymm"`
}

func (r *MonthlyPaidRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type MonthlyPaidResponse struct {
	CustomerID string  `json:"customer_id"`
	Month      string  `json:"month"`
	Amount     float64 `json:"amount"`
}
