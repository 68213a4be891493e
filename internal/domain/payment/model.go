package payment

import (
	"time"

	"github.com/feesync/feesync/internal/types"
)

// Payment is a customer payment. Provider payments are replaced on every sync;
// manual ones are entered by admins between syncs.
type Payment struct {
	PaymentID       string       `bson:"payment_id" json:"payment_id"`
	PaymentNumber   string       `bson:"payment_number,omitempty" json:"payment_number,omitempty"`
	CustomerID      string       `bson:"customer_id" json:"customer_id"`
	CustomerName    string       `bson:"customer_name" json:"customer_name"`
	Amount          float64      `bson:"amount" json:"amount"`
	Date            time.Time    `bson:"date" json:"date"`
	PaymentMode     string       `bson:"payment_mode,omitempty" json:"payment_mode,omitempty"`
	ReferenceNumber string       `bson:"reference_number,omitempty" json:"reference_number,omitempty"`
	Description     string       `bson:"description,omitempty" json:"description,omitempty"`
	InvoiceNumbers  []string     `bson:"invoice_numbers,omitempty" json:"invoice_numbers,omitempty"`
	CurrencyCode    string       `bson:"currency_code,omitempty" json:"currency_code,omitempty"`
	Source          types.Source `bson:"source" json:"source"`

	types.BaseModel `bson:",inline"`
}
