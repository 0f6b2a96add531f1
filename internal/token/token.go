// Package token generates opaque tokens and protects them at rest.
//
// Plaintext tokens leave the process only once, at issuance. Persisted API keys
// are sealed with XChaCha20-Poly1305; every persisted token also carries a keyed
// BLAKE2b digest so it can be looked up without storing the plaintext.
package token

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// SecretSize is the length of the server secret the store is built from.
	SecretSize = 32
	tokenBytes = 32
)

var (
	ErrSecretSize = errors.New("token secret must be 32 bytes")
	ErrMalformed  = errors.New("sealed token is malformed")
)

// Store holds the keys used to seal and digest tokens. It is safe for concurrent use.
type Store struct {
	aead   cipher.AEAD
	macKey []byte
	random io.Reader
}

// Option configures a Store.
type Option func(*Store)

// WithRandom replaces the entropy source. Tests only.
func WithRandom(r io.Reader) Option {
	return func(s *Store) {
		s.random = r
	}
}

// New derives independent sealing and digest keys from secret.
func New(secret []byte, opts ...Option) (*Store, error) {
	if len(secret) != SecretSize {
		return nil, ErrSecretSize
	}
	sealKey := derive(secret, "warden.token.seal")
	aead, err := chacha20poly1305.NewX(sealKey)
	if err != nil {
		return nil, fmt.Errorf("init sealing cipher: %w", err)
	}
	s := &Store{
		aead:   aead,
		macKey: derive(secret, "warden.token.digest"),
		random: rand.Reader,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Generate returns a new URL-safe token carrying 256 bits of entropy.
func (s *Store) Generate() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Seal encrypts token for storage. The nonce is prepended to the ciphertext.
func (s *Store) Seal(token string) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(token)+s.aead.Overhead())
	if _, err := io.ReadFull(s.random, nonce); err != nil {
		return nil, fmt.Errorf("read nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, []byte(token), nil), nil
}

// Open reverses Seal.
func (s *Store) Open(sealed []byte) (string, error) {
	ns := s.aead.NonceSize()
	if len(sealed) < ns+s.aead.Overhead() {
		return "", ErrMalformed
	}
	plain, err := s.aead.Open(nil, sealed[:ns], sealed[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return string(plain), nil
}

// Digest returns the keyed lookup digest of token.
func (s *Store) Digest(token string) []byte {
	h, _ := blake2b.New256(s.macKey) //nolint:errcheck // key length fixed at 32 bytes
	h.Write([]byte(token))
	return h.Sum(nil)
}

// Equal compares two tokens in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func derive(secret []byte, label string) []byte {
	h, _ := blake2b.New256(secret) //nolint:errcheck // secret length checked by caller
	h.Write([]byte(label))
	return h.Sum(nil)
}
