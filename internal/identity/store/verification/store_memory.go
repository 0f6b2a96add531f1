package verification

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"warden/internal/identity/models"
	"warden/pkg/platform/sentinel"
)

type key struct {
	identifier string
	digest     string
}

// InMemoryStore consumes under its write lock, so a token is handed out at most once.
type InMemoryStore struct {
	mu     sync.Mutex
	nextID int64
	tokens map[key]*models.VerificationToken
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{tokens: make(map[key]*models.VerificationToken)}
}

func (s *InMemoryStore) Create(_ context.Context, t *models.VerificationToken) (*models.VerificationToken, error) {
	if t == nil {
		return nil, fmt.Errorf("verification token is required")
	}
	k := key{t.Identifier, hex.EncodeToString(t.TokenDigest)}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tokens[k]; exists {
		return nil, fmt.Errorf("verification token for %s: %w", t.Identifier, sentinel.ErrAlreadyUsed)
	}
	s.nextID++
	stored := t.Clone()
	stored.ID = s.nextID
	stored.CreatedAt = time.Now()
	s.tokens[k] = stored
	return stored.Clone(), nil
}

// Consume removes the matching token and returns it as it was before removal.
func (s *InMemoryStore) Consume(_ context.Context, identifier string, digest []byte) (*models.VerificationToken, error) {
	k := key{identifier, hex.EncodeToString(digest)}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[k]
	if !ok {
		return nil, fmt.Errorf("verification token not found: %w", sentinel.ErrNotFound)
	}
	delete(s.tokens, k)
	return t, nil
}

// Len reports how many tokens are live.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}
