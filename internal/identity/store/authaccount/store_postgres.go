package authaccount

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"warden/internal/identity/models"
	"warden/internal/platform/database"
	id "warden/pkg/domain"
	"warden/pkg/platform/sentinel"
	txcontext "warden/pkg/platform/tx"
)

// PostgresStore relies on the auth_accounts_provider_account_key constraint
// so concurrent links of one external identity yield exactly one row.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, a *models.AuthAccount) (*models.AuthAccount, error) {
	if a == nil {
		return nil, fmt.Errorf("auth account is required")
	}
	row := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO auth_accounts (user_id, provider, provider_account_id, type, scope, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, provider, provider_account_id, type, scope, expires_at, created_at`,
		int64(a.UserID), a.Provider, a.ProviderAccountID, string(a.Type), a.Scope, nullTime(a),
	)
	created, err := scanAccount(row)
	if err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return nil, fmt.Errorf("auth account %s/%s: %w", a.Provider, a.ProviderAccountID, sentinel.ErrAlreadyUsed)
		case database.IsForeignKeyViolation(err):
			return nil, fmt.Errorf("user %d: %w", a.UserID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("insert auth account: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) FindByProviderAccount(ctx context.Context, provider, providerAccountID string) (*models.AuthAccount, error) {
	row := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, user_id, provider, provider_account_id, type, scope, expires_at, created_at
		FROM auth_accounts WHERE provider = $1 AND provider_account_id = $2`,
		provider, providerAccountID,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("auth account not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find auth account: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) Delete(ctx context.Context, provider, providerAccountID string) error {
	res, err := txcontext.Executor(ctx, s.db).ExecContext(ctx,
		`DELETE FROM auth_accounts WHERE provider = $1 AND provider_account_id = $2`,
		provider, providerAccountID)
	if err != nil {
		return fmt.Errorf("delete auth account: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete auth account rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("auth account not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func scanAccount(row *sql.Row) (*models.AuthAccount, error) {
	var (
		a         models.AuthAccount
		userID    int64
		kind      string
		expiresAt sql.NullTime
	)
	if err := row.Scan(&a.ID, &userID, &a.Provider, &a.ProviderAccountID, &kind, &a.Scope, &expiresAt, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.UserID = id.UserID(userID)
	a.Type = id.AccountType(kind)
	if expiresAt.Valid {
		t := expiresAt.Time
		a.ExpiresAt = &t
	}
	return &a, nil
}

func nullTime(a *models.AuthAccount) sql.NullTime {
	if a.ExpiresAt == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *a.ExpiresAt, Valid: true}
}
