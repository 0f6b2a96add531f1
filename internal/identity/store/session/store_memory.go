package session

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"warden/internal/identity/models"
	"warden/pkg/platform/sentinel"
)

// InMemoryStore keys sessions by the hex form of their token digest.
type InMemoryStore struct {
	mu       sync.RWMutex
	nextID   int64
	sessions map[string]*models.Session
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*models.Session)}
}

func (s *InMemoryStore) Create(_ context.Context, session *models.Session) (*models.Session, error) {
	if session == nil {
		return nil, fmt.Errorf("session is required")
	}
	key := hex.EncodeToString(session.TokenDigest)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[key]; exists {
		return nil, fmt.Errorf("session token: %w", sentinel.ErrAlreadyUsed)
	}
	now := time.Now()
	s.nextID++
	stored := session.Clone()
	stored.ID = s.nextID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.sessions[key] = stored
	return stored.Clone(), nil
}

func (s *InMemoryStore) FindByTokenDigest(_ context.Context, digest []byte) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if session, ok := s.sessions[hex.EncodeToString(digest)]; ok {
		return session.Clone(), nil
	}
	return nil, fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) Update(_ context.Context, session *models.Session) (*models.Session, error) {
	key := hex.EncodeToString(session.TokenDigest)
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.sessions[key]
	if !ok {
		return nil, fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
	}
	stored := session.Clone()
	stored.ID = existing.ID
	stored.UserID = existing.UserID
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now()
	s.sessions[key] = stored
	return stored.Clone(), nil
}

func (s *InMemoryStore) DeleteByTokenDigest(_ context.Context, digest []byte) error {
	key := hex.EncodeToString(digest)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[key]; !ok {
		return fmt.Errorf("delete session: %w", sentinel.ErrNothingAffected)
	}
	delete(s.sessions, key)
	return nil
}
