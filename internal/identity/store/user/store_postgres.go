package user

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

const selectUser = `
SELECT u.id, u.entity, u.login, u.email, u.firstname, u.lastname, u.password_hash,
       u.api_key_sealed, u.api_key_digest, u.admin, u.must_change_password, u.email_verified_at,
       COALESCE(u.customer_id, 0), COALESCE(u.contact_id, 0), u.attributes, u.created_at, u.updated_at,
       COALESCE((SELECT json_agg(r.permission ORDER BY r.permission) FROM user_rights r WHERE r.user_id = u.id), '[]'::json),
       COALESCE((SELECT json_agg(g.group_id ORDER BY g.group_id) FROM user_group_members g WHERE g.user_id = u.id), '[]'::json)
FROM users u`

// PostgresStore persists users in PostgreSQL. Every method joins the
// transaction carried by the context when there is one.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed user store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts the user and provisions its rights in one transaction.
func (s *PostgresStore) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if u == nil {
		return nil, fmt.Errorf("user is required")
	}
	attrs, err := json.Marshal(nonNil(u.Attributes))
	if err != nil {
		return nil, fmt.Errorf("marshal user attributes: %w", err)
	}

	var userID id.UserID
	err = txcontext.Run(ctx, s.db, func(ctx context.Context, q txcontext.DBTX) error {
		err := q.QueryRowContext(ctx, `
			INSERT INTO users (entity, login, email, firstname, lastname, password_hash, admin,
			                   must_change_password, customer_id, contact_id, attributes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, 0), NULLIF($10, 0), $11)
			RETURNING id`,
			int64(u.Entity), u.Login, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.Admin,
			u.MustChangePassword, int64(u.CustomerID), int64(u.ContactID), string(attrs),
		).Scan(&userID)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return fmt.Errorf("user already exists: %w", sentinel.ErrAlreadyUsed)
			}
			return fmt.Errorf("insert user: %w", err)
		}
		for _, right := range u.Rights {
			if _, err := q.ExecContext(ctx,
				`INSERT INTO user_rights (user_id, permission) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				int64(userID), right,
			); err != nil {
				return fmt.Errorf("grant %q: %w: %v", right, sentinel.ErrRightsProvisioning, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.FindByID(ctx, userID)
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	return s.findOne(ctx, selectUser+` WHERE u.id = $1`, int64(userID))
}

func (s *PostgresStore) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	return s.findOne(ctx, selectUser+` WHERE lower(u.login) = lower($1)`, login)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, selectUser+` WHERE lower(u.email) = lower($1)`, email)
}

func (s *PostgresStore) FindByLoginOrEmail(ctx context.Context, value string) (*models.User, error) {
	return s.findOne(ctx, selectUser+` WHERE lower(u.login) = lower($1) OR lower(u.email) = lower($1) ORDER BY u.id LIMIT 1`, value)
}

func (s *PostgresStore) FindByAPIKeyDigest(ctx context.Context, digest []byte) (*models.User, error) {
	if len(digest) == 0 {
		return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	return s.findOne(ctx, selectUser+` WHERE u.api_key_digest = $1`, digest)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	row := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, query, args...)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) SetAPIKey(ctx context.Context, userID id.UserID, sealed, digest []byte) error {
	err := s.exec(ctx, `UPDATE users SET api_key_sealed = $2, api_key_digest = $3, updated_at = NOW() WHERE id = $1`,
		int64(userID), sealed, digest)
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("api key already assigned: %w", sentinel.ErrAlreadyUsed)
	}
	return err
}

func (s *PostgresStore) SetPassword(ctx context.Context, userID id.UserID, hash []byte, mustChange bool) error {
	return s.exec(ctx, `UPDATE users SET password_hash = $2, must_change_password = $3, updated_at = NOW() WHERE id = $1`,
		int64(userID), hash, mustChange)
}

func (s *PostgresStore) SetAttribute(ctx context.Context, userID id.UserID, key, value string) error {
	return s.exec(ctx, `UPDATE users SET attributes = attributes || jsonb_build_object($2::text, $3::text), updated_at = NOW() WHERE id = $1`,
		int64(userID), key, value)
}

func (s *PostgresStore) AddToGroup(ctx context.Context, userID id.UserID, groupID id.GroupID) error {
	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx,
		`INSERT INTO user_group_members (group_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		int64(groupID), int64(userID))
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return fmt.Errorf("group %d or user %d not found: %w", groupID, userID, sentinel.ErrNotFound)
		}
		return fmt.Errorf("add user to group: %w", err)
	}
	return nil
}

func (s *PostgresStore) exec(ctx context.Context, query string, args ...any) error {
	res, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u                      models.User
		entity, customer, cont int64
		verifiedAt             sql.NullTime
		attrs, rights, groups  []byte
	)
	err := row.Scan(&u.ID, &entity, &u.Login, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.APIKeySealed, &u.APIKeyDigest, &u.Admin, &u.MustChangePassword, &verifiedAt,
		&customer, &cont, &attrs, &u.CreatedAt, &u.UpdatedAt, &rights, &groups)
	if err != nil {
		return nil, err
	}
	u.Entity = id.EntityID(entity)
	u.CustomerID = id.CustomerID(customer)
	u.ContactID = id.ContactID(cont)
	if verifiedAt.Valid {
		t := verifiedAt.Time
		u.EmailVerifiedAt = &t
	}
	if err := json.Unmarshal(attrs, &u.Attributes); err != nil {
		return nil, fmt.Errorf("unmarshal attributes: %w", err)
	}
	if u.Attributes == nil {
		u.Attributes = map[string]string{}
	}
	if err := json.Unmarshal(rights, &u.Rights); err != nil {
		return nil, fmt.Errorf("unmarshal rights: %w", err)
	}
	if err := json.Unmarshal(groups, &u.Groups); err != nil {
		return nil, fmt.Errorf("unmarshal groups: %w", err)
	}
	return &u, nil
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
