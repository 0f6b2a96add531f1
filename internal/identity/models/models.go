package models

import (
	"time"

	id "warden/pkg/domain"
)

// This file contains the persisted identity records. They never cross a trust
// boundary directly; see responses.go for the public projections.

// User is a local identity. APIKey holds the plaintext key only between issuance
// or unsealing and projection; stores persist APIKeySealed and APIKeyDigest.
type User struct {
	ID                 id.UserID
	Entity             id.EntityID
	Login              string
	Email              string
	FirstName          string
	LastName           string
	PasswordHash       []byte
	APIKey             string
	APIKeySealed       []byte
	APIKeyDigest       []byte
	Admin              bool
	MustChangePassword bool
	EmailVerifiedAt    *time.Time
	CustomerID         id.CustomerID
	ContactID          id.ContactID
	Groups             []id.GroupID
	Rights             []string
	Attributes         map[string]string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// DisplayName is "first last" with empty parts dropped.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// HasRight reports whether the user holds right. Admins hold every right.
func (u *User) HasRight(right string) bool {
	if u.Admin {
		return true
	}
	for _, r := range u.Rights {
		if r == right {
			return true
		}
	}
	return false
}

// Customer is the business-side record a registration provisions first.
type Customer struct {
	ID        id.CustomerID
	Entity    id.EntityID
	Name      string
	Email     string
	Fields    map[string]string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Contact is a person attached to a customer record.
type Contact struct {
	ID         id.ContactID
	CustomerID id.CustomerID
	Entity     id.EntityID
	FirstName  string
	LastName   string
	Email      string
	Fields     map[string]string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AuthAccount links one external provider identity to a local user.
// The (Provider, ProviderAccountID) pair is unique.
type AuthAccount struct {
	ID                int64
	UserID            id.UserID
	Provider          string
	ProviderAccountID string
	Type              id.AccountType
	Scope             string
	ExpiresAt         *time.Time
	CreatedAt         time.Time
}

// Session is keyed by the digest of its opaque token.
type Session struct {
	ID          int64
	TokenDigest []byte
	UserID      id.UserID
	Data        map[string]any
	ExpiresAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsExpired reports whether the session has a past expiry.
func (s *Session) IsExpired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

// VerificationToken is a single-use (identifier, token) pair.
type VerificationToken struct {
	ID          int64
	Identifier  string
	TokenDigest []byte
	Purpose     string
	Data        map[string]any
	ExpiresAt   *time.Time
	CreatedAt   time.Time
}

// IsExpired reports whether the token has a past expiry.
func (t *VerificationToken) IsExpired(now time.Time) bool {
	return t.ExpiresAt != nil && !now.Before(*t.ExpiresAt)
}

// Mail is an outbound message handed to the mail collaborator.
type Mail struct {
	From    string
	To      []string
	Subject string
	Body    string
	IsHTML  bool
}
