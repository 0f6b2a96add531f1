package testutil

import (
	"time"

	"warden/internal/identity/models"
	id "warden/pkg/domain"
)

// TestIDs provides fixed IDs for deterministic test data.
var TestIDs = struct {
	UserID1   id.UserID
	UserID2   id.UserID
	GroupID1  id.GroupID
	EntityID1 id.EntityID
}{
	UserID1:   1,
	UserID2:   2,
	GroupID1:  7,
	EntityID1: 1,
}

// UserBuilder provides a fluent interface for building test users.
type UserBuilder struct {
	user *models.User
}

// NewUserBuilder creates a new UserBuilder with sensible defaults.
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		user: &models.User{
			Entity:       TestIDs.EntityID1,
			Login:        "test[at]example.com",
			Email:        "test@example.com",
			FirstName:    "Test",
			LastName:     "User",
			PasswordHash: []byte("hash"),
		},
	}
}

func (b *UserBuilder) WithID(userID id.UserID) *UserBuilder {
	b.user.ID = userID
	return b
}

func (b *UserBuilder) WithLogin(login string) *UserBuilder {
	b.user.Login = login
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.user.Email = email
	return b
}

func (b *UserBuilder) WithName(firstName, lastName string) *UserBuilder {
	b.user.FirstName = firstName
	b.user.LastName = lastName
	return b
}

func (b *UserBuilder) WithPasswordHash(hash []byte) *UserBuilder {
	b.user.PasswordHash = hash
	return b
}

func (b *UserBuilder) WithRights(rights ...string) *UserBuilder {
	b.user.Rights = rights
	return b
}

func (b *UserBuilder) Admin() *UserBuilder {
	b.user.Admin = true
	return b
}

func (b *UserBuilder) Build() *models.User {
	return b.user
}

// SessionBuilder provides a fluent interface for building test sessions.
type SessionBuilder struct {
	session *models.Session
}

// NewSessionBuilder creates a session for UserID1 with a fixed digest.
func NewSessionBuilder() *SessionBuilder {
	return &SessionBuilder{
		session: &models.Session{
			TokenDigest: []byte("digest-1"),
			UserID:      TestIDs.UserID1,
		},
	}
}

func (b *SessionBuilder) WithDigest(digest []byte) *SessionBuilder {
	b.session.TokenDigest = digest
	return b
}

func (b *SessionBuilder) WithUserID(userID id.UserID) *SessionBuilder {
	b.session.UserID = userID
	return b
}

func (b *SessionBuilder) WithData(data map[string]any) *SessionBuilder {
	b.session.Data = data
	return b
}

func (b *SessionBuilder) ExpiresAt(t time.Time) *SessionBuilder {
	b.session.ExpiresAt = &t
	return b
}

func (b *SessionBuilder) Build() *models.Session {
	return b.session
}
