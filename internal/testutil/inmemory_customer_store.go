package testutil

import (
	"context"
	"strings"
	"time"

	"github.com/feesync/feesync/internal/domain/credential"
	"github.com/feesync/feesync/internal/domain/customer"
	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/types"
	"github.com/samber/lo"
)

// InMemoryCustomerStore implements customer.Repository
type InMemoryCustomerStore struct {
	*InMemoryStore[*customer.Customer]
}

// NewInMemoryCustomerStore creates a new in-memory customer store
func NewInMemoryCustomerStore() *InMemoryCustomerStore {
	return &InMemoryCustomerStore{
		InMemoryStore: NewInMemoryStore[*customer.Customer](),
	}
}

// Helper to copy customer
func copyCustomer(c *customer.Customer) *customer.Customer {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Credentials = copyCredentials(c.Credentials)
	if c.LastLoginAt != nil {
		cp.LastLoginAt = lo.ToPtr(*c.LastLoginAt)
	}
	return &cp
}

func copyCredentials(c *credential.Credentials) *credential.Credentials {
	if c == nil {
		return nil
	}
	cp := *c
	if c.OTPExpiry != nil {
		cp.OTPExpiry = lo.ToPtr(*c.OTPExpiry)
	}
	if c.ResetTokenExpiry != nil {
		cp.ResetTokenExpiry = lo.ToPtr(*c.ResetTokenExpiry)
	}
	return &cp
}

func customerFilterFn(ctx context.Context, c *customer.Customer, filter interface{}) bool {
	f, ok := filter.(*types.CustomerFilter)
	if !ok || f == nil {
		return true
	}
	if len(f.ContactIDs) > 0 && !lo.Contains(f.ContactIDs, c.ContactID) {
		return false
	}
	if f.Source != nil && c.Source != *f.Source {
		return false
	}
	return containsFold(f.Search, c.ContactName, c.CustomerName, c.Email, c.Phone, c.Mobile, c.ContactID)
}

func customerSortFn(i, j *customer.Customer) bool {
	if !i.CreatedAt.Equal(j.CreatedAt) {
		return i.CreatedAt.After(j.CreatedAt)
	}
	return i.ContactID < j.ContactID
}

func (s *InMemoryCustomerStore) Create(ctx context.Context, c *customer.Customer) error {
	return s.InMemoryStore.Create(ctx, c.ContactID, copyCustomer(c))
}

func (s *InMemoryCustomerStore) Get(ctx context.Context, contactID string) (*customer.Customer, error) {
	c, err := s.InMemoryStore.Get(ctx, contactID)
	if err != nil {
		return nil, err
	}
	return copyCustomer(c), nil
}

func (s *InMemoryCustomerStore) GetByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	return s.findOne(ctx, func(c *customer.Customer) bool {
		return strings.EqualFold(strings.TrimSpace(c.Email), strings.TrimSpace(email))
	})
}

func (s *InMemoryCustomerStore) GetByResetToken(ctx context.Context, tokenHash string) (*customer.Customer, error) {
	return s.findOne(ctx, func(c *customer.Customer) bool {
		return c.Credentials != nil && c.Credentials.ResetTokenHash == tokenHash
	})
}

func (s *InMemoryCustomerStore) findOne(ctx context.Context, match func(*customer.Customer) bool) (*customer.Customer, error) {
	all, err := s.InMemoryStore.List(ctx, nil, func(_ context.Context, c *customer.Customer, _ interface{}) bool {
		return match(c)
	}, customerSortFn)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, ierr.NewError("customer not found").
			WithHint("Customer not found").
			Mark(ierr.ErrNotFound)
	}
	return copyCustomer(all[0]), nil
}

func (s *InMemoryCustomerStore) List(ctx context.Context, filter *types.CustomerFilter) ([]*customer.Customer, error) {
	if filter == nil {
		filter = types.NewNoLimitCustomerFilter()
	}
	items, err := s.InMemoryStore.List(ctx, filter, customerFilterFn, customerSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(c *customer.Customer, _ int) *customer.Customer { return copyCustomer(c) }), nil
}

func (s *InMemoryCustomerStore) Count(ctx context.Context, filter *types.CustomerFilter) (int, error) {
	if filter == nil {
		filter = types.NewNoLimitCustomerFilter()
	}
	return s.InMemoryStore.Count(ctx, filter, customerFilterFn)
}

func (s *InMemoryCustomerStore) ListAll(ctx context.Context, filter *types.CustomerFilter) ([]*customer.Customer, error) {
	if filter == nil {
		filter = types.NewNoLimitCustomerFilter()
	}
	unlimited := *filter
	if filter.QueryFilter != nil {
		qf := *filter.QueryFilter
		qf.Limit = nil
		unlimited.QueryFilter = &qf
	}
	return s.List(ctx, &unlimited)
}

// Update overwrites the profile fields and keeps the stored credentials
func (s *InMemoryCustomerStore) Update(ctx context.Context, c *customer.Customer) error {
	existing, err := s.InMemoryStore.Get(ctx, c.ContactID)
	if err != nil {
		return err
	}
	updated := copyCustomer(c)
	updated.Credentials = copyCredentials(existing.Credentials)
	updated.CreatedAt = existing.CreatedAt
	updated.CreatedBy = existing.CreatedBy
	if updated.LastLoginAt == nil {
		updated.LastLoginAt = existing.LastLoginAt
	}
	return s.InMemoryStore.Update(ctx, c.ContactID, updated)
}

func (s *InMemoryCustomerStore) UpdateCredentials(ctx context.Context, contactID string, creds *credential.Credentials) error {
	existing, err := s.InMemoryStore.Get(ctx, contactID)
	if err != nil {
		return err
	}
	updated := copyCustomer(existing)
	updated.Credentials = copyCredentials(creds)
	updated.UpdatedAt = time.Now().UTC()
	return s.InMemoryStore.Update(ctx, contactID, updated)
}

func (s *InMemoryCustomerStore) Delete(ctx context.Context, contactID string) error {
	return s.InMemoryStore.Delete(ctx, contactID)
}

func (s *InMemoryCustomerStore) DeleteAll(ctx context.Context) (int, error) {
	return s.DeleteWhere(ctx, func(string, *customer.Customer) bool { return true }), nil
}

func (s *InMemoryCustomerStore) InsertMany(ctx context.Context, customers []*customer.Customer) error {
	for _, c := range customers {
		if err := s.Create(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// UpsertMany mirrors the mongo upsert: profile fields are replaced, credentials and creation stamps survive
func (s *InMemoryCustomerStore) UpsertMany(ctx context.Context, customers []*customer.Customer) (int, error) {
	for _, c := range customers {
		next := copyCustomer(c)
		if existing, err := s.InMemoryStore.Get(ctx, c.ContactID); err == nil {
			next.Credentials = copyCredentials(existing.Credentials)
			next.LastLoginAt = existing.LastLoginAt
			next.CreatedAt = existing.CreatedAt
			next.CreatedBy = existing.CreatedBy
		}
		s.Put(ctx, c.ContactID, next)
	}
	return len(customers), nil
}

func (s *InMemoryCustomerStore) DeleteExcept(ctx context.Context, contactIDs []string) (int, error) {
	keep := lo.SliceToMap(contactIDs, func(id string) (string, struct{}) { return id, struct{}{} })
	return s.DeleteWhere(ctx, func(id string, _ *customer.Customer) bool {
		_, ok := keep[id]
		return !ok
	}), nil
}
