package service

import (
	"context"

	"warden/internal/audit"
	"warden/internal/identity/events"
	"warden/internal/identity/models"
	id "warden/pkg/domain"
)

// UserStore defines the persistence interface for users.
// Error Contract: Find methods return sentinel.ErrNotFound when the user doesn't exist;
// Create returns sentinel.ErrAlreadyUsed on a login or email collision and
// sentinel.ErrRightsProvisioning when granting rights fails.
type UserStore interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByLogin(ctx context.Context, login string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByLoginOrEmail(ctx context.Context, value string) (*models.User, error)
	FindByAPIKeyDigest(ctx context.Context, digest []byte) (*models.User, error)
	SetAPIKey(ctx context.Context, userID id.UserID, sealed, digest []byte) error
	SetPassword(ctx context.Context, userID id.UserID, hash []byte, mustChange bool) error
	SetAttribute(ctx context.Context, userID id.UserID, key, value string) error
	AddToGroup(ctx context.Context, userID id.UserID, groupID id.GroupID) error
}

// Directory is the customer and contact capability of the surrounding platform.
type Directory interface {
	CreateCustomer(ctx context.Context, c *models.Customer) (*models.Customer, error)
	CreatePrimaryContact(ctx context.Context, customerID id.CustomerID) (id.ContactID, error)
	FindContact(ctx context.Context, contactID id.ContactID) (*models.Contact, error)
	UpdateContact(ctx context.Context, c *models.Contact) error
}

// SessionStore persists sessions keyed by token digest.
// DeleteByTokenDigest returns sentinel.ErrNothingAffected when no row matched.
type SessionStore interface {
	Create(ctx context.Context, s *models.Session) (*models.Session, error)
	FindByTokenDigest(ctx context.Context, digest []byte) (*models.Session, error)
	Update(ctx context.Context, s *models.Session) (*models.Session, error)
	DeleteByTokenDigest(ctx context.Context, digest []byte) error
}

// AuthAccountStore enforces (provider, providerAccountID) uniqueness with sentinel.ErrAlreadyUsed.
type AuthAccountStore interface {
	Create(ctx context.Context, a *models.AuthAccount) (*models.AuthAccount, error)
	FindByProviderAccount(ctx context.Context, provider, providerAccountID string) (*models.AuthAccount, error)
	Delete(ctx context.Context, provider, providerAccountID string) error
}

// VerificationTokenStore removes a matching token and returns it in one step.
// Consume returns sentinel.ErrNotFound when nothing matched and wraps
// sentinel.ErrDeleteFailed when the match could not be removed.
type VerificationTokenStore interface {
	Create(ctx context.Context, t *models.VerificationToken) (*models.VerificationToken, error)
	Consume(ctx context.Context, identifier string, digest []byte) (*models.VerificationToken, error)
}

// Tokens generates opaque tokens and protects them at rest.
type Tokens interface {
	Generate() (string, error)
	Seal(token string) ([]byte, error)
	Open(sealed []byte) (string, error)
	Digest(token string) []byte
}

type PasswordHasher interface {
	Hash(password string) ([]byte, error)
	Compare(hash []byte, password string) error
}

// Transactor runs fn inside one commit/rollback boundary. Stores join it through ctx.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type EventPublisher interface {
	Publish(ctx context.Context, e events.Event) error
}

type Mailer interface {
	Send(ctx context.Context, msg *models.Mail) error
}

type AuditEmitter interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Narrow service surfaces composed by Service.

type VerificationTokenService interface {
	IssueVerificationToken(ctx context.Context, req *models.IssueVerificationTokenRequest) (*models.VerificationTokenProjection, error)
	ConsumeVerificationToken(ctx context.Context, req *models.ConsumeVerificationTokenRequest) (*models.VerificationTokenProjection, error)
}

type SessionService interface {
	CreateSession(ctx context.Context, req *models.CreateSessionRequest) (*models.SessionProjection, error)
	GetSession(ctx context.Context, token string) (*models.SessionProjection, error)
	UpdateSession(ctx context.Context, token string, req *models.UpdateSessionRequest) (*models.SessionProjection, error)
	DeleteSession(ctx context.Context, token string) error
	GetSessionAndUser(ctx context.Context, token string) (*models.SessionAndUser, error)
}

type AuthAccountService interface {
	LinkAccount(ctx context.Context, req *models.LinkAccountRequest) (*models.AuthAccountProjection, error)
	GetAccount(ctx context.Context, provider, providerAccountID string) (*models.AuthAccountProjection, error)
	GetUserByProviderAccount(ctx context.Context, provider, providerAccountID string) (*models.UserProjection, error)
	UnlinkAccount(ctx context.Context, provider, providerAccountID string) error
}

var (
	_ VerificationTokenService = (*VerificationTokens)(nil)
	_ SessionService           = (*Sessions)(nil)
	_ AuthAccountService       = (*AuthAccounts)(nil)
)
