// Package caller authenticates requests and stores the resulting
// requestcontext.Caller. Two credentials are accepted: a user API key in
// X-API-Key, or a service bearer token signed with HS256.
package caller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	dErrors "warden/pkg/domain-errors"
	"warden/pkg/platform/httputil"
	"warden/pkg/requestcontext"
)

// APIKeyHeader carries user API keys.
const APIKeyHeader = "X-API-Key"

// APIKeyAuthenticator resolves a plaintext API key to its owner.
type APIKeyAuthenticator interface {
	AuthenticateAPIKey(ctx context.Context, key string) (*requestcontext.Caller, error)
}

// ServiceClaims are the claims of a service bearer token.
type ServiceClaims struct {
	Name   string   `json:"name,omitempty"`
	Admin  bool     `json:"admin,omitempty"`
	Rights []string `json:"rights,omitempty"`
	jwt.RegisteredClaims
}

// ServiceTokens signs and verifies service bearer tokens.
type ServiceTokens struct {
	secret []byte
	issuer string
}

func NewServiceTokens(secret []byte, issuer string) *ServiceTokens {
	return &ServiceTokens{secret: secret, issuer: issuer}
}

// Issue signs a token for subject valid for ttl.
func (s *ServiceTokens) Issue(subject string, admin bool, rights []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := ServiceClaims{
		Name:   subject,
		Admin:  admin,
		Rights: rights,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign service token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, issuer and expiry.
func (s *ServiceTokens) Verify(raw string) (*requestcontext.Caller, error) {
	claims := &ServiceClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	name := claims.Name
	if name == "" {
		name = claims.Subject
	}
	return &requestcontext.Caller{Name: name, Admin: claims.Admin, Rights: claims.Rights}, nil
}

// Require rejects requests without valid credentials. tokens may be nil, in
// which case bearer tokens are refused.
func Require(keys APIKeyAuthenticator, tokens *ServiceTokens, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			c, err := authenticate(ctx, r, keys, tokens)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access",
					"error", err,
					"path", r.URL.Path,
					"request_id", requestcontext.RequestID(ctx),
				)
				if !dErrors.HasCode(err, dErrors.CodeUnauthorized) {
					httputil.WriteError(w, err)
					return
				}
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithCaller(ctx, c)))
		})
	}
}

var errNoCredentials = dErrors.New(dErrors.CodeUnauthorized, "missing credentials")

func authenticate(ctx context.Context, r *http.Request, keys APIKeyAuthenticator, tokens *ServiceTokens) (*requestcontext.Caller, error) {
	if key := strings.TrimSpace(r.Header.Get(APIKeyHeader)); key != "" {
		return keys.AuthenticateAPIKey(ctx, key)
	}
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, errNoCredentials
	}
	if tokens == nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "service tokens are disabled")
	}
	c, err := tokens.Verify(strings.TrimSpace(raw))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "service token expired")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid service token")
	}
	return c, nil
}
