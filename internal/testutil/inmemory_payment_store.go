package testutil

import (
	"context"

	"github.com/feesync/feesync/internal/domain/payment"
	"github.com/feesync/feesync/internal/types"
	"github.com/samber/lo"
)

// InMemoryPaymentStore implements payment.Repository
type InMemoryPaymentStore struct {
	*InMemoryStore[*payment.Payment]
}

func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{
		InMemoryStore: NewInMemoryStore[*payment.Payment](),
	}
}

func copyPayment(p *payment.Payment) *payment.Payment {
	if p == nil {
		return nil
	}
	cp := *p
	cp.InvoiceNumbers = append([]string(nil), p.InvoiceNumbers...)
	return &cp
}

func paymentFilterFn(ctx context.Context, p *payment.Payment, filter interface{}) bool {
	f, ok := filter.(*types.PaymentFilter)
	if !ok || f == nil {
		return true
	}
	if f.CustomerID != "" && p.CustomerID != f.CustomerID {
		return false
	}
	if f.Source != nil && p.Source != *f.Source {
		return false
	}
	if f.Month != "" {
		month, err := types.ParseMonth(f.Month)
		if err != nil || !month.Contains(p.Date) {
			return false
		}
	}
	return containsFold(f.Search, p.PaymentNumber, p.CustomerName, p.ReferenceNumber, p.PaymentID)
}

func paymentSortFn(i, j *payment.Payment) bool {
	if !i.Date.Equal(j.Date) {
		return i.Date.After(j.Date)
	}
	return i.PaymentID < j.PaymentID
}

func (s *InMemoryPaymentStore) Create(ctx context.Context, p *payment.Payment) error {
	return s.InMemoryStore.Create(ctx, p.PaymentID, copyPayment(p))
}

func (s *InMemoryPaymentStore) Get(ctx context.Context, paymentID string) (*payment.Payment, error) {
	p, err := s.InMemoryStore.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	return copyPayment(p), nil
}

func (s *InMemoryPaymentStore) List(ctx context.Context, filter *types.PaymentFilter) ([]*payment.Payment, error) {
	if filter == nil {
		filter = types.NewNoLimitPaymentFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	items, err := s.InMemoryStore.List(ctx, filter, paymentFilterFn, paymentSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(p *payment.Payment, _ int) *payment.Payment { return copyPayment(p) }), nil
}

func (s *InMemoryPaymentStore) Count(ctx context.Context, filter *types.PaymentFilter) (int, error) {
	if filter == nil {
		filter = types.NewNoLimitPaymentFilter()
	}
	return s.InMemoryStore.Count(ctx, filter, paymentFilterFn)
}

func (s *InMemoryPaymentStore) ListAll(ctx context.Context, filter *types.PaymentFilter) ([]*payment.Payment, error) {
	if filter == nil {
		filter = types.NewNoLimitPaymentFilter()
	}
	unlimited := *filter
	unlimited.QueryFilter = types.NewNoLimitQueryFilter()
	return s.List(ctx, &unlimited)
}

func (s *InMemoryPaymentStore) Update(ctx context.Context, p *payment.Payment) error {
	existing, err := s.InMemoryStore.Get(ctx, p.PaymentID)
	if err != nil {
		return err
	}
	updated := copyPayment(p)
	updated.CreatedAt = existing.CreatedAt
	updated.CreatedBy = existing.CreatedBy
	return s.InMemoryStore.Update(ctx, p.PaymentID, updated)
}

func (s *InMemoryPaymentStore) Delete(ctx context.Context, paymentID string) error {
	return s.InMemoryStore.Delete(ctx, paymentID)
}

func (s *InMemoryPaymentStore) DeleteAll(ctx context.Context) (int, error) {
	return s.DeleteWhere(ctx, func(string, *payment.Payment) bool { return true }), nil
}

func (s *InMemoryPaymentStore) InsertMany(ctx context.Context, payments []*payment.Payment) error {
	for _, p := range payments {
		if err := s.Create(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (s *InMemoryPaymentStore) UpsertMany(ctx context.Context, payments []*payment.Payment) (int, error) {
	for _, p := range payments {
		next := copyPayment(p)
		if existing, err := s.InMemoryStore.Get(ctx, p.PaymentID); err == nil {
			next.CreatedAt = existing.CreatedAt
			next.CreatedBy = existing.CreatedBy
		}
		s.Put(ctx, p.PaymentID, next)
	}
	return len(payments), nil
}

func (s *InMemoryPaymentStore) DeleteExcept(ctx context.Context, paymentIDs []string) (int, error) {
	keep := lo.SliceToMap(paymentIDs, func(id string) (string, struct{}) { return id, struct{}{} })
	return s.DeleteWhere(ctx, func(id string, _ *payment.Payment) bool {
		_, ok := keep[id]
		return !ok
	}), nil
}
