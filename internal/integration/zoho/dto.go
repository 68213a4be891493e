package zoho

import (
	"strings"
)

// Credentials are what every provider call needs
type Credentials struct {
	AccessToken    string `json:"-"`
	OrganizationID string `json:"organization_id"`
}

// PageContext is returned with every list response
type PageContext struct {
	Page        int  `json:"page"`
	PerPage     int  `json:"per_page"`
	HasMorePage bool `json:"has_more_page"`
}

// CustomField is a contact custom field as returned by the contacts API
type CustomField struct {
	APIName string `json:"api_name"`
	Label   string `json:"label"`
	Value   any    `json:"value"`
}

// Contact is a customer record from GET /customers
type Contact struct {
	ContactID                   string        `json:"contact_id"`
	ContactName                 string        `json:"contact_name"`
	CustomerName                string        `json:"customer_name"`
	CompanyName                 string        `json:"company_name"`
	Email                       string        `json:"email"`
	Phone                       string        `json:"phone"`
	Mobile                      string        `json:"mobile"`
	Status                      string        `json:"status"`
	OutstandingReceivableAmount float64       `json:"outstanding_receivable_amount"`
	CurrencyCode                string        `json:"currency_code"`
	Course                      string        `json:"cf_course"`
	Batch                       string        `json:"cf_batch"`
	CustomFields                []CustomField `json:"custom_fields,omitempty"`
}

// CustomFieldValue looks a custom field up by api name or label
func (c *Contact) CustomFieldValue(name string) string {
	for _, f := range c.CustomFields {
		if strings.EqualFold(f.APIName, "cf_"+name) || strings.EqualFold(f.Label, name) {
			if s, ok := f.Value.(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// Invoice is an invoice record from GET /invoices
type Invoice struct {
	InvoiceID       string           `json:"invoice_id"`
	InvoiceNumber   string           `json:"invoice_number"`
	CustomerID      string           `json:"customer_id"`
	CustomerName    string           `json:"customer_name"`
	Status          string           `json:"status"`
	Date            string           `json:"date"`
	DueDate         string           `json:"due_date"`
	Total           float64          `json:"total"`
	Balance         float64          `json:"balance"`
	CurrencyCode    string           `json:"currency_code"`
	ReferenceNumber string           `json:"reference_number"`
	LineItems       []map[string]any `json:"line_items,omitempty"`
}

// CustomerPayment is a payment record from GET /customerpayments
type CustomerPayment struct {
	PaymentID       string  `json:"payment_id"`
	PaymentNumber   string  `json:"payment_number"`
	CustomerID      string  `json:"customer_id"`
	CustomerName    string  `json:"customer_name"`
	Amount          float64 `json:"amount"`
	Date            string  `json:"date"`
	PaymentMode     string  `json:"payment_mode"`
	ReferenceNumber string  `json:"reference_number"`
	Description     string  `json:"description"`
	InvoiceNumbers  string  `json:"invoice_numbers"`
	CurrencyCode    string  `json:"currency_code"`
}

// TokenResponse is the body of the accounts token endpoint.
// Refresh grants do not return a new refresh token.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	APIDomain    string `json:"api_domain"`
	TokenType    string `json:"token_type"`
	Error        string `json:"error"`
}
