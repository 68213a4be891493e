package customer

import (
	"strings"
	"time"

	"github.com/feesync/feesync/internal/domain/credential"
	"github.com/feesync/feesync/internal/types"
)

// Customer is a student as mirrored from the invoicing provider.
// ContactID is the provider's contact id and the natural key of the collection.
type Customer struct {
	ContactID    string `bson:"contact_id" json:"contact_id"`
	ContactName  string `bson:"contact_name" json:"contact_name"`
	CustomerName string `bson:"customer_name" json:"customer_name"`
	CompanyName  string `bson:"company_name,omitempty" json:"company_name,omitempty"`
	Email        string `bson:"email" json:"email"`
	Phone        string `bson:"phone,omitempty" json:"phone,omitempty"`
	Mobile       string `bson:"mobile,omitempty" json:"mobile,omitempty"`
	Course       string `bson:"course,omitempty" json:"course,omitempty"`
	Batch        string `bson:"batch,omitempty" json:"batch,omitempty"`
	Status       string `bson:"status,omitempty" json:"status,omitempty"`

	// OutstandingReceivableAmount is the provider's figure, kept for display only.
	// Balances shown to users are always recomputed from invoices and payments.
	OutstandingReceivableAmount float64 `bson:"outstanding_receivable_amount" json:"outstanding_receivable_amount"`
	CurrencyCode                string  `bson:"currency_code,omitempty" json:"currency_code,omitempty"`

	Source types.Source `bson:"source" json:"source"`

	Credentials *credential.Credentials `bson:"credentials,omitempty" json:"-"`
	LastLoginAt *time.Time              `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`

	types.BaseModel `bson:",inline"`
}

// DisplayName prefers the customer name and falls back to the contact name
func (c *Customer) DisplayName() string {
	if name := strings.TrimSpace(c.CustomerName); name != "" {
		return name
	}
	return strings.TrimSpace(c.ContactName)
}

// PhoneNumber prefers the mobile number over the landline
func (c *Customer) PhoneNumber() string {
	if m := strings.TrimSpace(c.Mobile); m != "" {
		return m
	}
	return strings.TrimSpace(c.Phone)
}

func (c *Customer) HasEmail() bool {
	return strings.TrimSpace(c.Email) != ""
}

func (c *Customer) HasPassword() bool {
	return c.Credentials.HasPassword()
}
