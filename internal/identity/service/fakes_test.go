package service

import (
	"context"
	"errors"
	"sync"

	"warden/internal/identity/models"
	"warden/internal/identity/store/directory"
	"warden/internal/identity/store/user"
	id "warden/pkg/domain"
)

var errInjected = errors.New("injected failure")

// faults maps a store method name to the error it returns instead of running.
type faults struct {
	mu sync.Mutex
	on map[string]error
}

func (f *faults) failOn(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.on == nil {
		f.on = make(map[string]error)
	}
	f.on[method] = err
}

func (f *faults) check(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.on[method]
}

type faultyUsers struct {
	*user.InMemoryUserStore
	faults
}

func newFaultyUsers(store *user.InMemoryUserStore) *faultyUsers {
	return &faultyUsers{InMemoryUserStore: store}
}

func (f *faultyUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if err := f.check("Create"); err != nil {
		return nil, err
	}
	return f.InMemoryUserStore.Create(ctx, u)
}

func (f *faultyUsers) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	if err := f.check("FindByID"); err != nil {
		return nil, err
	}
	return f.InMemoryUserStore.FindByID(ctx, userID)
}

func (f *faultyUsers) SetAPIKey(ctx context.Context, userID id.UserID, sealed, digest []byte) error {
	if err := f.check("SetAPIKey"); err != nil {
		return err
	}
	return f.InMemoryUserStore.SetAPIKey(ctx, userID, sealed, digest)
}

func (f *faultyUsers) SetPassword(ctx context.Context, userID id.UserID, hash []byte, mustChange bool) error {
	if err := f.check("SetPassword"); err != nil {
		return err
	}
	return f.InMemoryUserStore.SetPassword(ctx, userID, hash, mustChange)
}

func (f *faultyUsers) SetAttribute(ctx context.Context, userID id.UserID, key, value string) error {
	if err := f.check("SetAttribute"); err != nil {
		return err
	}
	return f.InMemoryUserStore.SetAttribute(ctx, userID, key, value)
}

func (f *faultyUsers) AddToGroup(ctx context.Context, userID id.UserID, groupID id.GroupID) error {
	if err := f.check("AddToGroup"); err != nil {
		return err
	}
	return f.InMemoryUserStore.AddToGroup(ctx, userID, groupID)
}

type faultyDirectory struct {
	*directory.InMemoryStore
	faults
}

func newFaultyDirectory(store *directory.InMemoryStore) *faultyDirectory {
	return &faultyDirectory{InMemoryStore: store}
}

func (f *faultyDirectory) CreateCustomer(ctx context.Context, c *models.Customer) (*models.Customer, error) {
	if err := f.check("CreateCustomer"); err != nil {
		return nil, err
	}
	return f.InMemoryStore.CreateCustomer(ctx, c)
}

func (f *faultyDirectory) CreatePrimaryContact(ctx context.Context, customerID id.CustomerID) (id.ContactID, error) {
	if err := f.check("CreatePrimaryContact"); err != nil {
		return 0, err
	}
	return f.InMemoryStore.CreatePrimaryContact(ctx, customerID)
}

func (f *faultyDirectory) FindContact(ctx context.Context, contactID id.ContactID) (*models.Contact, error) {
	if err := f.check("FindContact"); err != nil {
		return nil, err
	}
	return f.InMemoryStore.FindContact(ctx, contactID)
}

func (f *faultyDirectory) UpdateContact(ctx context.Context, c *models.Contact) error {
	if err := f.check("UpdateContact"); err != nil {
		return err
	}
	return f.InMemoryStore.UpdateContact(ctx, c)
}
