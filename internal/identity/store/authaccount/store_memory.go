package authaccount

import (
	"context"
	"fmt"
	"sync"
	"time"

	"warden/internal/identity/models"
	"warden/pkg/platform/sentinel"
)

type key struct {
	provider          string
	providerAccountID string
}

// InMemoryStore enforces (provider, providerAccountId) uniqueness under its lock.
type InMemoryStore struct {
	mu       sync.RWMutex
	nextID   int64
	accounts map[key]*models.AuthAccount
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{accounts: make(map[key]*models.AuthAccount)}
}

func (s *InMemoryStore) Create(_ context.Context, a *models.AuthAccount) (*models.AuthAccount, error) {
	if a == nil {
		return nil, fmt.Errorf("auth account is required")
	}
	k := key{a.Provider, a.ProviderAccountID}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[k]; exists {
		return nil, fmt.Errorf("auth account %s/%s: %w", a.Provider, a.ProviderAccountID, sentinel.ErrAlreadyUsed)
	}
	s.nextID++
	stored := a.Clone()
	stored.ID = s.nextID
	stored.CreatedAt = time.Now()
	s.accounts[k] = stored
	return stored.Clone(), nil
}

func (s *InMemoryStore) FindByProviderAccount(_ context.Context, provider, providerAccountID string) (*models.AuthAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.accounts[key{provider, providerAccountID}]; ok {
		return a.Clone(), nil
	}
	return nil, fmt.Errorf("auth account not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) Delete(_ context.Context, provider, providerAccountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{provider, providerAccountID}
	if _, ok := s.accounts[k]; !ok {
		return fmt.Errorf("auth account not found: %w", sentinel.ErrNotFound)
	}
	delete(s.accounts, k)
	return nil
}
