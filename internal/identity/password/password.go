// Package password hashes and verifies user passwords with bcrypt.
package password

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"warden/pkg/platform/sentinel"
)

// ErrMismatch is returned by Compare when the password does not match.
var ErrMismatch = errors.New("password mismatch")

// Hasher enforces a minimum length before hashing.
type Hasher struct {
	minLength int
	cost      int
}

type Option func(*Hasher)

// WithCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(h *Hasher) {
		h.cost = cost
	}
}

// NewHasher builds a hasher rejecting passwords shorter than minLength runes.
func NewHasher(minLength int, opts ...Option) *Hasher {
	h := &Hasher{minLength: max(minLength, 1), cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// MinLength is the enforced minimum in runes.
func (h *Hasher) MinLength() int {
	return h.minLength
}

func (h *Hasher) Hash(password string) ([]byte, error) {
	if utf8.RuneCountInString(password) < h.minLength {
		return nil, fmt.Errorf("password must have at least %d characters: %w", h.minLength, sentinel.ErrPasswordTooShort)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

func (h *Hasher) Compare(hash []byte, password string) error {
	err := bcrypt.CompareHashAndPassword(hash, []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return err
}
