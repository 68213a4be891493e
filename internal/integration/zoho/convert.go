package zoho

import (
	"context"
	"strings"

	"github.com/feesync/feesync/internal/domain/customer"
	"github.com/feesync/feesync/internal/domain/invoice"
	"github.com/feesync/feesync/internal/domain/payment"
	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/types"
	"github.com/samber/lo"
)

// ToCustomer maps a provider contact onto the mirror document
func (c *Contact) ToCustomer(ctx context.Context) *customer.Customer {
	course := strings.TrimSpace(c.Course)
	if course == "" {
		course = c.CustomFieldValue("course")
	}
	batch := strings.TrimSpace(c.Batch)
	if batch == "" {
		batch = c.CustomFieldValue("batch")
	}

	return &customer.Customer{
		ContactID:                   c.ContactID,
		ContactName:                 c.ContactName,
		CustomerName:                c.CustomerName,
		CompanyName:                 c.CompanyName,
		Email:                       strings.TrimSpace(c.Email),
		Phone:                       c.Phone,
		Mobile:                      c.Mobile,
		Course:                      course,
		Batch:                       batch,
		Status:                      c.Status,
		OutstandingReceivableAmount: c.OutstandingReceivableAmount,
		CurrencyCode:                c.CurrencyCode,
		Source:                      types.SourceZoho,
		BaseModel:                   types.GetDefaultBaseModel(ctx),
	}
}

func (i *Invoice) ToInvoice(ctx context.Context) (*invoice.Invoice, error) {
	date, err := types.ParseDate(i.Date)
	if err != nil {
		return nil, conversionError(err, "invoice", i.InvoiceID)
	}
	due, err := types.ParseDate(i.DueDate)
	if err != nil {
		return nil, conversionError(err, "invoice", i.InvoiceID)
	}

	inv := &invoice.Invoice{
		InvoiceID:     i.InvoiceID,
		InvoiceNumber: i.InvoiceNumber,
		CustomerID:    i.CustomerID,
		CustomerName:  i.CustomerName,
		Status:        i.Status,
		Date:          date,
		Total:         i.Total,
		Balance:       i.Balance,
		CurrencyCode:  i.CurrencyCode,
		ReferenceNo:   i.ReferenceNumber,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	if !due.IsZero() {
		inv.DueDate = &due
	}
	if len(i.LineItems) > 0 {
		inv.LineItems = lo.Map(i.LineItems, func(li map[string]any, _ int) invoice.LineItem {
			return invoice.LineItem(li)
		})
	}
	return inv, nil
}

func (p *CustomerPayment) ToPayment(ctx context.Context) (*payment.Payment, error) {
	date, err := types.ParseDate(p.Date)
	if err != nil {
		return nil, conversionError(err, "payment", p.PaymentID)
	}

	var invoiceNumbers []string
	if p.InvoiceNumbers != "" {
		invoiceNumbers = lo.Compact(lo.Map(strings.Split(p.InvoiceNumbers, ","), func(s string, _ int) string {
			return strings.TrimSpace(s)
		}))
	}

	return &payment.Payment{
		PaymentID:       p.PaymentID,
		PaymentNumber:   p.PaymentNumber,
		CustomerID:      p.CustomerID,
		CustomerName:    p.CustomerName,
		Amount:          p.Amount,
		Date:            date,
		PaymentMode:     p.PaymentMode,
		ReferenceNumber: p.ReferenceNumber,
		Description:     p.Description,
		InvoiceNumbers:  invoiceNumbers,
		CurrencyCode:    p.CurrencyCode,
		Source:          types.SourceZoho,
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}, nil
}

func conversionError(err error, entity, id string) error {
	return ierr.WithError(err).
		WithHintf("Zoho returned a malformed %s", entity).
		WithReportableDetails(map[string]any{
			"entity": entity,
			"id":     id,
		}).
		Mark(ierr.ErrHTTPClient)
}
