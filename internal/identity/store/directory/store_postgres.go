package directory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"warden/internal/identity/models"
	id "warden/pkg/domain"
	"warden/pkg/platform/sentinel"
	txcontext "warden/pkg/platform/tx"
)

// PostgresStore persists customers and contacts in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateCustomer(ctx context.Context, c *models.Customer) (*models.Customer, error) {
	if c == nil {
		return nil, fmt.Errorf("customer is required")
	}
	fields, err := marshalFields(c.Fields)
	if err != nil {
		return nil, err
	}
	var customerID id.CustomerID
	err = txcontext.Executor(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO customers (entity, name, email, fields)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		int64(c.Entity), c.Name, c.Email, fields,
	).Scan(&customerID)
	if err != nil {
		return nil, fmt.Errorf("insert customer: %w", err)
	}
	return s.FindCustomer(ctx, customerID)
}

func (s *PostgresStore) FindCustomer(ctx context.Context, customerID id.CustomerID) (*models.Customer, error) {
	var (
		c      models.Customer
		entity int64
		fields []byte
	)
	err := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, entity, name, email, fields, created_at, updated_at
		FROM customers WHERE id = $1`, int64(customerID),
	).Scan(&c.ID, &entity, &c.Name, &c.Email, &fields, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("customer not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find customer: %w", err)
	}
	c.Entity = id.EntityID(entity)
	if c.Fields, err = unmarshalFields(fields); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreatePrimaryContact derives the customer's canonical contact.
func (s *PostgresStore) CreatePrimaryContact(ctx context.Context, customerID id.CustomerID) (id.ContactID, error) {
	customer, err := s.FindCustomer(ctx, customerID)
	if err != nil {
		return 0, err
	}
	contact := primaryContactFrom(customer)
	fields, err := marshalFields(contact.Fields)
	if err != nil {
		return 0, err
	}
	var contactID id.ContactID
	err = txcontext.Executor(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO contacts (customer_id, entity, firstname, lastname, email, fields)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		int64(contact.CustomerID), int64(contact.Entity), contact.FirstName, contact.LastName, contact.Email, fields,
	).Scan(&contactID)
	if err != nil {
		return 0, fmt.Errorf("insert contact: %w", err)
	}
	return contactID, nil
}

func (s *PostgresStore) FindContact(ctx context.Context, contactID id.ContactID) (*models.Contact, error) {
	var (
		c                  models.Contact
		customerID, entity int64
		fields             []byte
	)
	err := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, customer_id, entity, firstname, lastname, email, fields, created_at, updated_at
		FROM contacts WHERE id = $1`, int64(contactID),
	).Scan(&c.ID, &customerID, &entity, &c.FirstName, &c.LastName, &c.Email, &fields, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("contact not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find contact: %w", err)
	}
	c.CustomerID = id.CustomerID(customerID)
	c.Entity = id.EntityID(entity)
	if c.Fields, err = unmarshalFields(fields); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresStore) UpdateContact(ctx context.Context, c *models.Contact) error {
	if c == nil {
		return fmt.Errorf("contact is required")
	}
	fields, err := marshalFields(c.Fields)
	if err != nil {
		return err
	}
	res, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		UPDATE contacts SET firstname = $2, lastname = $3, email = $4, fields = $5, updated_at = NOW()
		WHERE id = $1`,
		int64(c.ID), c.FirstName, c.LastName, c.Email, fields)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update contact rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("contact not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func marshalFields(fields map[string]string) (string, error) {
	if fields == nil {
		return "{}", nil
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("marshal fields: %w", err)
	}
	return string(b), nil
}

func unmarshalFields(raw []byte) (map[string]string, error) {
	fields := map[string]string{}
	if len(raw) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}
	return fields, nil
}
