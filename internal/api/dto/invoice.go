package dto

import (
	"github.com/feesync/feesync/internal/domain/invoice"
	"github.com/feesync/feesync/internal/types"
)

type InvoiceResponse struct {
	*invoice.Invoice
}

type ListInvoicesResponse = types.ListResponse[*InvoiceResponse]
