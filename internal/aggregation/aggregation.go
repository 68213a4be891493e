// Package aggregation derives balances and dashboard figures from mirrored
// invoices and payments. Every function is pure; sums are computed with
// decimals and converted back to float64 at the boundary.
package aggregation

import (
	"math"
	"time"

	"github.com/feesync/feesync/internal/domain/customer"
	"github.com/feesync/feesync/internal/domain/invoice"
	"github.com/feesync/feesync/internal/domain/payment"
	"github.com/feesync/feesync/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// KPIs are the headline figures of the admin dashboard
type KPIs struct {
	TotalStudents   int     `json:"total_students"`
	Month           string  `json:"month"`
	PaidThisMonth   int     `json:"students_paid_this_month"`
	AmountThisMonth float64 `json:"amount_paid_this_month"`
	PreviousMonth   string  `json:"previous_month"`
	PaidLastMonth   int     `json:"students_paid_last_month"`
	AmountLastMonth float64 `json:"amount_paid_last_month"`
}

// toDecimal treats NaN and infinities as zero
func toDecimal(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// clamp floors a balance at zero for display
func clamp(d decimal.Decimal) float64 {
	if !d.IsPositive() {
		return 0
	}
	return toFloat(d)
}

// Outstanding is the invoiced total minus the paid total of one customer, never below zero.
func Outstanding(invoices []*invoice.Invoice, payments []*payment.Payment, customerID string) float64 {
	balance := decimal.Zero
	for _, inv := range invoices {
		if inv != nil && inv.CustomerID == customerID {
			balance = balance.Add(toDecimal(inv.Total))
		}
	}
	for _, p := range payments {
		if p != nil && p.CustomerID == customerID {
			balance = balance.Sub(toDecimal(p.Amount))
		}
	}
	return clamp(balance)
}

// OutstandingByCustomer computes Outstanding for every customer seen in either list
func OutstandingByCustomer(invoices []*invoice.Invoice, payments []*payment.Payment) map[string]float64 {
	balances := make(map[string]decimal.Decimal)
	for _, inv := range invoices {
		if inv == nil {
			continue
		}
		balances[inv.CustomerID] = balances[inv.CustomerID].Add(toDecimal(inv.Total))
	}
	for _, p := range payments {
		if p == nil {
			continue
		}
		balances[p.CustomerID] = balances[p.CustomerID].Sub(toDecimal(p.Amount))
	}
	return lo.MapValues(balances, func(d decimal.Decimal, _ string) float64 {
		return clamp(d)
	})
}

// MonthlyPaid sums the payments of one customer dated within month
func MonthlyPaid(payments []*payment.Payment, customerID string, month types.Month) float64 {
	total := decimal.Zero
	for _, p := range payments {
		if p != nil && p.CustomerID == customerID && month.Contains(p.Date) {
			total = total.Add(toDecimal(p.Amount))
		}
	}
	return toFloat(total)
}

// paidByCustomer groups the payments dated within month by customer
func paidByCustomer(payments []*payment.Payment, month types.Month) map[string]decimal.Decimal {
	paid := make(map[string]decimal.Decimal)
	for _, p := range payments {
		if p != nil && month.Contains(p.Date) {
			paid[p.CustomerID] = paid[p.CustomerID].Add(toDecimal(p.Amount))
		}
	}
	return paid
}

// UnpaidForMonth returns the customers with an email address who paid nothing in month.
// The order of the result is not defined.
func UnpaidForMonth(customers []*customer.Customer, payments []*payment.Payment, month types.Month) []*customer.Customer {
	paid := paidByCustomer(payments, month)
	return lo.Filter(customers, func(c *customer.Customer, _ int) bool {
		if c == nil || !c.HasEmail() {
			return false
		}
		return !paid[c.ContactID].IsPositive()
	})
}

// DashboardKPIs scans every payment once per month of interest
func DashboardKPIs(customers []*customer.Customer, payments []*payment.Payment, now time.Time) KPIs {
	current := types.MonthOf(now)
	previous := current.Previous()

	paidNow, amountNow := monthTotals(payments, current)
	paidPrev, amountPrev := monthTotals(payments, previous)

	return KPIs{
		TotalStudents:   len(lo.Compact(customers)),
		Month:           current.String(),
		PaidThisMonth:   paidNow,
		AmountThisMonth: amountNow,
		PreviousMonth:   previous.String(),
		PaidLastMonth:   paidPrev,
		AmountLastMonth: amountPrev,
	}
}

// monthTotals returns how many customers paid a positive amount in month and the amount paid
func monthTotals(payments []*payment.Payment, month types.Month) (int, float64) {
	paid := paidByCustomer(payments, month)

	students := 0
	total := decimal.Zero
	for _, amount := range paid {
		if amount.IsPositive() {
			students++
		}
		total = total.Add(amount)
	}
	return students, toFloat(total)
}
