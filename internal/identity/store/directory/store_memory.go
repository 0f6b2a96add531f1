package directory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"warden/internal/identity/models"
	"warden/internal/identity/store/memtx"
	id "warden/pkg/domain"
	"warden/pkg/platform/sentinel"
)

// InMemoryStore keeps customers and contacts in memory.
type InMemoryStore struct {
	mu           sync.RWMutex
	nextCustomer id.CustomerID
	nextContact  id.ContactID
	customers    map[id.CustomerID]*models.Customer
	contacts     map[id.ContactID]*models.Contact
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		customers: make(map[id.CustomerID]*models.Customer),
		contacts:  make(map[id.ContactID]*models.Contact),
	}
}

func (s *InMemoryStore) CreateCustomer(ctx context.Context, c *models.Customer) (*models.Customer, error) {
	if c == nil {
		return nil, fmt.Errorf("customer is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCustomer++
	now := time.Now()
	stored := c.Clone()
	stored.ID = s.nextCustomer
	stored.CreatedAt, stored.UpdatedAt = now, now
	s.customers[stored.ID] = stored
	memtx.Record(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.customers[stored.ID] == stored {
			delete(s.customers, stored.ID)
		}
	})
	return stored.Clone(), nil
}

func (s *InMemoryStore) FindCustomer(_ context.Context, customerID id.CustomerID) (*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.customers[customerID]; ok {
		return c.Clone(), nil
	}
	return nil, fmt.Errorf("customer not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) CreatePrimaryContact(ctx context.Context, customerID id.CustomerID) (id.ContactID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	customer, ok := s.customers[customerID]
	if !ok {
		return 0, fmt.Errorf("customer not found: %w", sentinel.ErrNotFound)
	}
	s.nextContact++
	now := time.Now()
	contact := primaryContactFrom(customer)
	contact.ID = s.nextContact
	contact.CreatedAt, contact.UpdatedAt = now, now
	s.contacts[contact.ID] = contact
	memtx.Record(ctx, s.revertContact(contact.ID, contact, nil))
	return contact.ID, nil
}

func (s *InMemoryStore) FindContact(_ context.Context, contactID id.ContactID) (*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.contacts[contactID]; ok {
		return c.Clone(), nil
	}
	return nil, fmt.Errorf("contact not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) UpdateContact(ctx context.Context, c *models.Contact) error {
	if c == nil {
		return fmt.Errorf("contact is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.contacts[c.ID]
	if !ok {
		return fmt.Errorf("contact not found: %w", sentinel.ErrNotFound)
	}
	next := c.Clone()
	next.CustomerID = current.CustomerID
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = time.Now()
	s.contacts[c.ID] = next
	memtx.Record(ctx, s.revertContact(c.ID, next, current))
	return nil
}

func (s *InMemoryStore) revertContact(contactID id.ContactID, written, prev *models.Contact) func() {
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.contacts[contactID] != written {
			return
		}
		if prev == nil {
			delete(s.contacts, contactID)
			return
		}
		s.contacts[contactID] = prev
	}
}

// Counts returns the number of stored customers and contacts.
func (s *InMemoryStore) Counts() (customers, contacts int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.customers), len(s.contacts)
}
