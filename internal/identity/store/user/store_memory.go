package user

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"warden/internal/identity/models"
	"warden/internal/identity/store/memtx"
	id "warden/pkg/domain"
	"warden/pkg/platform/sentinel"
)

// InMemoryUserStore stores users in memory for tests and the memory backend.
type InMemoryUserStore struct {
	mu     sync.RWMutex
	nextID id.UserID
	users  map[id.UserID]*models.User
	groups map[id.GroupID]struct{}
}

// NewInMemoryUserStore constructs an empty store that knows the given groups.
func NewInMemoryUserStore(groups ...id.GroupID) *InMemoryUserStore {
	s := &InMemoryUserStore{
		users:  make(map[id.UserID]*models.User),
		groups: make(map[id.GroupID]struct{}),
	}
	for _, g := range groups {
		s.groups[g] = struct{}{}
	}
	return s
}

func (s *InMemoryUserStore) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if u == nil {
		return nil, fmt.Errorf("user is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Login, u.Login) || strings.EqualFold(existing.Email, u.Email) {
			return nil, fmt.Errorf("user already exists: %w", sentinel.ErrAlreadyUsed)
		}
	}

	s.nextID++
	now := time.Now()
	stored := u.Clone()
	stored.ID = s.nextID
	stored.APIKey = ""
	stored.Rights = slices.Compact(slices.Sorted(slices.Values(stored.Rights)))
	if stored.Attributes == nil {
		stored.Attributes = map[string]string{}
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.users[stored.ID] = stored
	memtx.Record(ctx, s.revert(stored.ID, stored, nil))
	return stored.Clone(), nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[userID]; ok {
		return u.Clone(), nil
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryUserStore) FindByLogin(_ context.Context, login string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return strings.EqualFold(u.Login, login) })
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (s *InMemoryUserStore) FindByLoginOrEmail(_ context.Context, value string) (*models.User, error) {
	return s.find(func(u *models.User) bool {
		return strings.EqualFold(u.Login, value) || strings.EqualFold(u.Email, value)
	})
}

func (s *InMemoryUserStore) FindByAPIKeyDigest(_ context.Context, digest []byte) (*models.User, error) {
	if len(digest) == 0 {
		return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	return s.find(func(u *models.User) bool { return slices.Equal(u.APIKeyDigest, digest) })
}

func (s *InMemoryUserStore) find(match func(*models.User) bool) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if match(u) {
			return u.Clone(), nil
		}
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryUserStore) SetAPIKey(ctx context.Context, userID id.UserID, sealed, digest []byte) error {
	return s.update(ctx, userID, func(u *models.User) error {
		for otherID, other := range s.users {
			if otherID != userID && slices.Equal(other.APIKeyDigest, digest) {
				return fmt.Errorf("api key already assigned: %w", sentinel.ErrAlreadyUsed)
			}
		}
		u.APIKeySealed = slices.Clone(sealed)
		u.APIKeyDigest = slices.Clone(digest)
		return nil
	})
}

func (s *InMemoryUserStore) SetPassword(ctx context.Context, userID id.UserID, hash []byte, mustChange bool) error {
	return s.update(ctx, userID, func(u *models.User) error {
		u.PasswordHash = slices.Clone(hash)
		u.MustChangePassword = mustChange
		return nil
	})
}

func (s *InMemoryUserStore) SetAttribute(ctx context.Context, userID id.UserID, key, value string) error {
	return s.update(ctx, userID, func(u *models.User) error {
		u.Attributes[key] = value
		return nil
	})
}

func (s *InMemoryUserStore) AddToGroup(ctx context.Context, userID id.UserID, groupID id.GroupID) error {
	if _, ok := s.groups[groupID]; !ok {
		return fmt.Errorf("group %d not found: %w", groupID, sentinel.ErrNotFound)
	}
	return s.update(ctx, userID, func(u *models.User) error {
		if !slices.Contains(u.Groups, groupID) {
			u.Groups = append(u.Groups, groupID)
			slices.Sort(u.Groups)
		}
		return nil
	})
}

func (s *InMemoryUserStore) update(ctx context.Context, userID id.UserID, fn func(*models.User) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	next := current.Clone()
	if err := fn(next); err != nil {
		return err
	}
	next.UpdatedAt = time.Now()
	s.users[userID] = next
	memtx.Record(ctx, s.revert(userID, next, current))
	return nil
}

// revert puts prev back (or removes the user when prev is nil) unless someone
// else has written the user since.
func (s *InMemoryUserStore) revert(userID id.UserID, written, prev *models.User) func() {
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.users[userID] != written {
			return
		}
		if prev == nil {
			delete(s.users, userID)
			return
		}
		s.users[userID] = prev
	}
}

// Count returns the number of stored users.
func (s *InMemoryUserStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}
