package testutil

import (
	"context"
	"strings"
	"time"

	"github.com/feesync/feesync/internal/domain/credential"
	"github.com/feesync/feesync/internal/domain/user"
	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/samber/lo"
)

// InMemoryUserStore implements user.Repository
type InMemoryUserStore struct {
	*InMemoryStore[*user.User]
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		InMemoryStore: NewInMemoryStore[*user.User](),
	}
}

func copyUser(u *user.User) *user.User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.Credentials = copyCredentials(u.Credentials)
	if u.LastLoginAt != nil {
		cp.LastLoginAt = lo.ToPtr(*u.LastLoginAt)
	}
	return &cp
}

// Create enforces the unique email index of the users collection
func (s *InMemoryUserStore) Create(ctx context.Context, u *user.User) error {
	if _, err := s.GetByEmail(ctx, u.Email); err == nil {
		return ierr.NewError("user already exists").
			WithHint("A user with this email already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	return s.InMemoryStore.Create(ctx, u.ID, copyUser(u))
}

func (s *InMemoryUserStore) GetByID(ctx context.Context, id string) (*user.User, error) {
	u, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return copyUser(u), nil
}

func (s *InMemoryUserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.findOne(ctx, func(u *user.User) bool {
		return strings.EqualFold(u.Email, strings.TrimSpace(email))
	})
}

func (s *InMemoryUserStore) GetByResetToken(ctx context.Context, tokenHash string) (*user.User, error) {
	return s.findOne(ctx, func(u *user.User) bool {
		return u.Credentials != nil && u.Credentials.ResetTokenHash == tokenHash
	})
}

func (s *InMemoryUserStore) findOne(ctx context.Context, match func(*user.User) bool) (*user.User, error) {
	all, err := s.InMemoryStore.List(ctx, nil, func(_ context.Context, u *user.User, _ interface{}) bool {
		return match(u)
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, ierr.NewError("user not found").
			WithHint("User not found").
			Mark(ierr.ErrNotFound)
	}
	return copyUser(all[0]), nil
}

func (s *InMemoryUserStore) UpdateCredentials(ctx context.Context, id string, creds *credential.Credentials) error {
	existing, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return err
	}
	updated := copyUser(existing)
	updated.Credentials = copyCredentials(creds)
	updated.UpdatedAt = time.Now().UTC()
	return s.InMemoryStore.Update(ctx, id, updated)
}

func (s *InMemoryUserStore) TouchLogin(ctx context.Context, id string) error {
	existing, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return err
	}
	updated := copyUser(existing)
	updated.LastLoginAt = lo.ToPtr(time.Now().UTC())
	return s.InMemoryStore.Update(ctx, id, updated)
}
