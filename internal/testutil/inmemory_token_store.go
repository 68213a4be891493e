package testutil

import (
	"context"
	"sync"

	"github.com/feesync/feesync/internal/domain/token"
	ierr "github.com/feesync/feesync/internal/errors"
)

// InMemoryTokenStore implements token.Repository holding the single grant
type InMemoryTokenStore struct {
	mu    sync.RWMutex
	token *token.Token
	saves int
}

func NewInMemoryTokenStore() *InMemoryTokenStore {
	return &InMemoryTokenStore{}
}

func (s *InMemoryTokenStore) GetLatest(ctx context.Context) (*token.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return nil, ierr.NewError("token not found").
			WithHint("The provider has not been authorized yet").
			Mark(ierr.ErrNotFound)
	}
	cp := *s.token
	return &cp, nil
}

func (s *InMemoryTokenStore) Save(ctx context.Context, t *token.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.token = &cp
	s.saves++
	return nil
}

// Saves returns how many times the token was written
func (s *InMemoryTokenStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func (s *InMemoryTokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = nil
	s.saves = 0
}
