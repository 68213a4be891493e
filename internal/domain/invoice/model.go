package invoice

import (
	"time"

	"github.com/feesync/feesync/internal/types"
)

// Invoice is a provider invoice. Invoices are never created or edited locally.
type Invoice struct {
	InvoiceID     string     `bson:"invoice_id" json:"invoice_id"`
	InvoiceNumber string     `bson:"invoice_number" json:"invoice_number"`
	CustomerID    string     `bson:"customer_id" json:"customer_id"`
	CustomerName  string     `bson:"customer_name" json:"customer_name"`
	Status        string     `bson:"status" json:"status"`
	Date          time.Time  `bson:"date" json:"date"`
	DueDate       *time.Time `bson:"due_date,omitempty" json:"due_date,omitempty"`
	Total         float64    `bson:"total" json:"total"`
	Balance       float64    `bson:"balance" json:"balance"`
	CurrencyCode  string     `bson:"currency_code,omitempty" json:"currency_code,omitempty"`
	ReferenceNo   string     `bson:"reference_number,omitempty" json:"reference_number,omitempty"`
	LineItems     []LineItem `bson:"line_items,omitempty" json:"line_items,omitempty"`

	types.BaseModel `bson:",inline"`
}

// LineItem is one provider line item, stored with every field the provider sent
type LineItem map[string]any
