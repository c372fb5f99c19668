package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/atmx/trading-account/internal/account"
)

// MemoryStore implements Store with an in-memory map.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]*account.Account
	order    []string
}

// NewMemoryStore creates an empty registry.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]*account.Account),
	}
}

func (s *MemoryStore) CreateAccount(_ context.Context, a *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[a.ID()]; ok {
		return fmt.Errorf("%w: %s", ErrAccountExists, a.ID())
	}
	s.accounts[a.ID()] = a
	s.order = append(s.order, a.ID())
	return nil
}

func (s *MemoryStore) GetAccount(_ context.Context, id string) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, id)
	}
	return a, nil
}

func (s *MemoryStore) ListAccounts(_ context.Context) ([]*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*account.Account, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.accounts[id])
	}
	return out, nil
}
