package invoice

import (
	"context"

	"github.com/feesync/feesync/internal/types"
)

type Repository interface {
	Get(ctx context.Context, invoiceID string) (*Invoice, error)
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)
	Count(ctx context.Context, filter *types.InvoiceFilter) (int, error)
	ListAll(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)

	DeleteAll(ctx context.Context) (int, error)
	InsertMany(ctx context.Context, invoices []*Invoice) error
	UpsertMany(ctx context.Context, invoices []*Invoice) (int, error)
	DeleteExcept(ctx context.Context, invoiceIDs []string) (int, error)
}
