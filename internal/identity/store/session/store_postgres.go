package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"warden/internal/identity/models"
	"warden/internal/platform/database"
	id "warden/pkg/domain"
	"warden/pkg/platform/sentinel"
	txcontext "warden/pkg/platform/tx"
)

const sessionColumns = `id, token_digest, user_id, data, expires_at, created_at, updated_at`

// PostgresStore persists sessions in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, session *models.Session) (*models.Session, error) {
	if session == nil {
		return nil, fmt.Errorf("session is required")
	}
	data, err := marshalData(session.Data)
	if err != nil {
		return nil, err
	}
	row := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO sessions (token_digest, user_id, data, expires_at)
		VALUES ($1, $2, $3::jsonb, $4)
		RETURNING `+sessionColumns,
		session.TokenDigest, int64(session.UserID), data, nullTime(session),
	)
	created, err := scanSession(row)
	if err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return nil, fmt.Errorf("session token: %w", sentinel.ErrAlreadyUsed)
		case database.IsForeignKeyViolation(err):
			return nil, fmt.Errorf("user %d: %w", session.UserID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) FindByTokenDigest(ctx context.Context, digest []byte) (*models.Session, error) {
	row := txcontext.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE token_digest = $1`, digest)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return session, nil
}

func (s *PostgresStore) Update(ctx context.Context, session *models.Session) (*models.Session, error) {
	data, err := marshalData(session.Data)
	if err != nil {
		return nil, err
	}
	row := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, `
		UPDATE sessions SET data = $2::jsonb, expires_at = $3, updated_at = NOW()
		WHERE token_digest = $1
		RETURNING `+sessionColumns,
		session.TokenDigest, data, nullTime(session),
	)
	updated, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("update session: %w", err)
	}
	return updated, nil
}

func (s *PostgresStore) DeleteByTokenDigest(ctx context.Context, digest []byte) error {
	res, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `DELETE FROM sessions WHERE token_digest = $1`, digest)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete session: %w", sentinel.ErrNothingAffected)
	}
	return nil
}

func scanSession(row *sql.Row) (*models.Session, error) {
	var (
		session   models.Session
		userID    int64
		data      []byte
		expiresAt sql.NullTime
	)
	if err := row.Scan(&session.ID, &session.TokenDigest, &userID, &data, &expiresAt, &session.CreatedAt, &session.UpdatedAt); err != nil {
		return nil, err
	}
	session.UserID = id.UserID(userID)
	if expiresAt.Valid {
		t := expiresAt.Time
		session.ExpiresAt = &t
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &session.Data); err != nil {
			return nil, fmt.Errorf("decode session data: %w", err)
		}
	}
	if len(session.Data) == 0 {
		session.Data = nil
	}
	return &session, nil
}

func marshalData(data map[string]any) (string, error) {
	if data == nil {
		return "{}", nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode session data: %w", err)
	}
	return string(b), nil
}

func nullTime(s *models.Session) sql.NullTime {
	if s.ExpiresAt == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *s.ExpiresAt, Valid: true}
}
