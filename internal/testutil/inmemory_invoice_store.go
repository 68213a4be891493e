package testutil

import (
	"context"

	"github.com/feesync/feesync/internal/domain/invoice"
	"github.com/feesync/feesync/internal/types"
	"github.com/samber/lo"
)

// InMemoryInvoiceStore implements invoice.Repository
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
}

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
	}
}

func copyInvoice(inv *invoice.Invoice) *invoice.Invoice {
	if inv == nil {
		return nil
	}
	cp := *inv
	if inv.DueDate != nil {
		cp.DueDate = lo.ToPtr(*inv.DueDate)
	}
	if inv.LineItems != nil {
		cp.LineItems = lo.Map(inv.LineItems, func(li invoice.LineItem, _ int) invoice.LineItem {
			return lo.Assign(li)
		})
	}
	return &cp
}

func invoiceFilterFn(ctx context.Context, inv *invoice.Invoice, filter interface{}) bool {
	f, ok := filter.(*types.InvoiceFilter)
	if !ok || f == nil {
		return true
	}
	if f.CustomerID != "" && inv.CustomerID != f.CustomerID {
		return false
	}
	if f.Status != "" && inv.Status != f.Status {
		return false
	}
	if f.Month != "" {
		month, err := types.ParseMonth(f.Month)
		if err != nil || !month.Contains(inv.Date) {
			return false
		}
	}
	return containsFold(f.Search, inv.InvoiceNumber, inv.CustomerName, inv.InvoiceID)
}

func invoiceSortFn(i, j *invoice.Invoice) bool {
	if !i.Date.Equal(j.Date) {
		return i.Date.After(j.Date)
	}
	return i.InvoiceID < j.InvoiceID
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, invoiceID string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return copyInvoice(inv), nil
}

func (s *InMemoryInvoiceStore) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	if filter == nil {
		filter = types.NewNoLimitInvoiceFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	items, err := s.InMemoryStore.List(ctx, filter, invoiceFilterFn, invoiceSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(inv *invoice.Invoice, _ int) *invoice.Invoice { return copyInvoice(inv) }), nil
}

func (s *InMemoryInvoiceStore) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	if filter == nil {
		filter = types.NewNoLimitInvoiceFilter()
	}
	return s.InMemoryStore.Count(ctx, filter, invoiceFilterFn)
}

func (s *InMemoryInvoiceStore) ListAll(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	if filter == nil {
		filter = types.NewNoLimitInvoiceFilter()
	}
	unlimited := *filter
	unlimited.QueryFilter = types.NewNoLimitQueryFilter()
	return s.List(ctx, &unlimited)
}

func (s *InMemoryInvoiceStore) DeleteAll(ctx context.Context) (int, error) {
	return s.DeleteWhere(ctx, func(string, *invoice.Invoice) bool { return true }), nil
}

func (s *InMemoryInvoiceStore) InsertMany(ctx context.Context, invoices []*invoice.Invoice) error {
	for _, inv := range invoices {
		if err := s.InMemoryStore.Create(ctx, inv.InvoiceID, copyInvoice(inv)); err != nil {
			return err
		}
	}
	return nil
}

func (s *InMemoryInvoiceStore) UpsertMany(ctx context.Context, invoices []*invoice.Invoice) (int, error) {
	for _, inv := range invoices {
		next := copyInvoice(inv)
		if existing, err := s.InMemoryStore.Get(ctx, inv.InvoiceID); err == nil {
			next.CreatedAt = existing.CreatedAt
			next.CreatedBy = existing.CreatedBy
		}
		s.Put(ctx, inv.InvoiceID, next)
	}
	return len(invoices), nil
}

func (s *InMemoryInvoiceStore) DeleteExcept(ctx context.Context, invoiceIDs []string) (int, error) {
	keep := lo.SliceToMap(invoiceIDs, func(id string) (string, struct{}) { return id, struct{}{} })
	return s.DeleteWhere(ctx, func(id string, _ *invoice.Invoice) bool {
		_, ok := keep[id]
		return !ok
	}), nil
}
