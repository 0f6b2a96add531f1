package models

import "time"

// This file contains the public projections returned across the trust boundary.
// They strip password hashes, digests and internal row ids.

// UserProjection is the OAuth-safe view of a user.
type UserProjection struct {
	ID            int64      `json:"id"`
	Email         string     `json:"email"`
	EmailVerified *time.Time `json:"emailVerified"`
	Name          string     `json:"name"`
	APIKey        string     `json:"apiKey,omitempty"`
	Admin         int        `json:"admin"`
}

func NewUserProjection(u *User) *UserProjection {
	if u == nil {
		return nil
	}
	admin := 0
	if u.Admin {
		admin = 1
	}
	return &UserProjection{
		ID:            int64(u.ID),
		Email:         u.Email,
		EmailVerified: cloneTime(u.EmailVerifiedAt),
		Name:          u.DisplayName(),
		APIKey:        u.APIKey,
		Admin:         admin,
	}
}

// AuthAccountProjection omits the internal row id.
type AuthAccountProjection struct {
	UserID            int64      `json:"userId"`
	Provider          string     `json:"provider"`
	ProviderAccountID string     `json:"providerAccountId"`
	Type              string     `json:"type,omitempty"`
	Scope             string     `json:"scope,omitempty"`
	ExpiresAt         *time.Time `json:"expiresAt,omitempty"`
}

func NewAuthAccountProjection(a *AuthAccount) *AuthAccountProjection {
	if a == nil {
		return nil
	}
	return &AuthAccountProjection{
		UserID:            int64(a.UserID),
		Provider:          a.Provider,
		ProviderAccountID: a.ProviderAccountID,
		Type:              string(a.Type),
		Scope:             a.Scope,
		ExpiresAt:         cloneTime(a.ExpiresAt),
	}
}

// SessionProjection echoes the opaque token the caller presented or was issued.
type SessionProjection struct {
	SessionToken string         `json:"sessionToken"`
	UserID       int64          `json:"userId"`
	Expires      *time.Time     `json:"expires,omitempty"`
	Data         map[string]any `json:"data,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

func NewSessionProjection(token string, s *Session) *SessionProjection {
	if s == nil {
		return nil
	}
	return &SessionProjection{
		SessionToken: token,
		UserID:       int64(s.UserID),
		Expires:      cloneTime(s.ExpiresAt),
		Data:         s.Data,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// SessionAndUser is returned whole or not at all.
type SessionAndUser struct {
	Session *SessionProjection `json:"session"`
	User    *UserProjection    `json:"user"`
}

// VerificationTokenProjection echoes the plaintext token supplied by the caller.
type VerificationTokenProjection struct {
	Identifier string         `json:"identifier"`
	Token      string         `json:"token"`
	Purpose    string         `json:"purpose,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	Expires    *time.Time     `json:"expires,omitempty"`
}

func NewVerificationTokenProjection(token string, t *VerificationToken) *VerificationTokenProjection {
	if t == nil {
		return nil
	}
	return &VerificationTokenProjection{
		Identifier: t.Identifier,
		Token:      token,
		Purpose:    t.Purpose,
		Data:       t.Data,
		Expires:    cloneTime(t.ExpiresAt),
	}
}

// NotificationOutcome reports what happened to an out-of-band notification.
type NotificationOutcome struct {
	Attempted bool   `json:"attempted"`
	Sent      bool   `json:"sent"`
	Error     string `json:"error,omitempty"`
}

// ResetPasswordResult pairs the updated user with the notification outcome.
type ResetPasswordResult struct {
	User         *UserProjection     `json:"user"`
	Notification NotificationOutcome `json:"notification"`
}

// SendMailResult reports whether the mail collaborator accepted the message.
type SendMailResult struct {
	Sent bool `json:"sent"`
}
