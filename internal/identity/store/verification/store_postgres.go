package verification

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"warden/internal/identity/models"
	"warden/internal/platform/database"
	"warden/pkg/platform/sentinel"
	txcontext "warden/pkg/platform/tx"
)

const tokenColumns = `id, identifier, token_digest, purpose, data, expires_at, created_at`

// PostgresStore persists verification tokens in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, t *models.VerificationToken) (*models.VerificationToken, error) {
	if t == nil {
		return nil, fmt.Errorf("verification token is required")
	}
	data := "{}"
	if t.Data != nil {
		b, err := json.Marshal(t.Data)
		if err != nil {
			return nil, fmt.Errorf("encode token data: %w", err)
		}
		data = string(b)
	}
	var expiresAt sql.NullTime
	if t.ExpiresAt != nil {
		expiresAt = sql.NullTime{Time: *t.ExpiresAt, Valid: true}
	}
	row := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO verification_tokens (identifier, token_digest, purpose, data, expires_at)
		VALUES ($1, $2, $3, $4::jsonb, $5)
		RETURNING `+tokenColumns,
		t.Identifier, t.TokenDigest, t.Purpose, data, expiresAt,
	)
	created, err := scanToken(row)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("verification token for %s: %w", t.Identifier, sentinel.ErrAlreadyUsed)
		}
		return nil, fmt.Errorf("insert verification token: %w", err)
	}
	return created, nil
}

// Consume locks the matching row, deletes it, and returns the locked copy.
// A concurrent consumer blocks on the row lock and then finds nothing.
// The delete must affect exactly one row; anything else is reported as
// ErrNotFound (lost the race) or ErrDeleteFailed (storage failure), and the
// transaction rolls back without disclosing the token.
func (s *PostgresStore) Consume(ctx context.Context, identifier string, digest []byte) (*models.VerificationToken, error) {
	var consumed *models.VerificationToken
	err := txcontext.Run(ctx, s.db, func(ctx context.Context, q txcontext.DBTX) error {
		row := q.QueryRowContext(ctx, `
			SELECT `+tokenColumns+`
			FROM verification_tokens
			WHERE identifier = $1 AND token_digest = $2
			FOR UPDATE`,
			identifier, digest,
		)
		t, err := scanToken(row)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("verification token not found: %w", sentinel.ErrNotFound)
			}
			return fmt.Errorf("find verification token: %w", err)
		}

		res, err := q.ExecContext(ctx, `DELETE FROM verification_tokens WHERE id = $1`, t.ID)
		if err != nil {
			return fmt.Errorf("%w: %w", sentinel.ErrDeleteFailed, err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("%w: %w", sentinel.ErrDeleteFailed, err)
		}
		if rows != 1 {
			return fmt.Errorf("verification token already consumed: %w", sentinel.ErrNotFound)
		}
		consumed = t
		return nil
	})
	if err != nil {
		if consumed != nil {
			// fn succeeded, so the commit of the delete failed.
			return nil, fmt.Errorf("%w: commit: %w", sentinel.ErrDeleteFailed, err)
		}
		return nil, err
	}
	return consumed, nil
}

func scanToken(row *sql.Row) (*models.VerificationToken, error) {
	var (
		t         models.VerificationToken
		data      []byte
		expiresAt sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.Identifier, &t.TokenDigest, &t.Purpose, &data, &expiresAt, &t.CreatedAt); err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		ts := expiresAt.Time
		t.ExpiresAt = &ts
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &t.Data); err != nil {
			return nil, fmt.Errorf("decode token data: %w", err)
		}
	}
	if len(t.Data) == 0 {
		t.Data = nil
	}
	return &t, nil
}
