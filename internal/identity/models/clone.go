package models

import (
	"maps"
	"slices"
	"time"
)

// Clone methods give stores value semantics: callers never share mutable state
// with a stored record.

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.PasswordHash = slices.Clone(u.PasswordHash)
	c.APIKeySealed = slices.Clone(u.APIKeySealed)
	c.APIKeyDigest = slices.Clone(u.APIKeyDigest)
	c.EmailVerifiedAt = cloneTime(u.EmailVerifiedAt)
	c.Groups = slices.Clone(u.Groups)
	c.Rights = slices.Clone(u.Rights)
	c.Attributes = cloneFields(u.Attributes)
	return &c
}

func (c *Customer) Clone() *Customer {
	if c == nil {
		return nil
	}
	out := *c
	out.Fields = cloneFields(c.Fields)
	return &out
}

func (c *Contact) Clone() *Contact {
	if c == nil {
		return nil
	}
	out := *c
	out.Fields = cloneFields(c.Fields)
	return &out
}

func (a *AuthAccount) Clone() *AuthAccount {
	if a == nil {
		return nil
	}
	out := *a
	out.ExpiresAt = cloneTime(a.ExpiresAt)
	return &out
}

func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.TokenDigest = slices.Clone(s.TokenDigest)
	out.Data = maps.Clone(s.Data)
	out.ExpiresAt = cloneTime(s.ExpiresAt)
	return &out
}

func (t *VerificationToken) Clone() *VerificationToken {
	if t == nil {
		return nil
	}
	out := *t
	out.TokenDigest = slices.Clone(t.TokenDigest)
	out.Data = maps.Clone(t.Data)
	out.ExpiresAt = cloneTime(t.ExpiresAt)
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
