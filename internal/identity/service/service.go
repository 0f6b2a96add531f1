// Package service implements the identity operations: registration, login,
// administrative resets, external account links, sessions and verification tokens.
//
// Each concern is a narrow service; Service composes them into the surface the
// HTTP handlers consume. Every operation checks the caller's rights first.
package service

import (
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"warden/internal/identity/metrics"
	id "warden/pkg/domain"
)

// Config is the immutable per-process identity configuration.
type Config struct {
	DefaultEntity     id.EntityID
	BaseUserGroup     id.GroupID // zero disables group assignment
	Origin            string
	DefaultRights     []string
	DefaultEmailFrom  string
	ResetSenderUserID id.UserID // zero disables reset notifications
}

// Deps are the collaborators shared by the narrow services.
type Deps struct {
	Users        UserStore
	Directory    Directory
	Sessions     SessionStore
	Accounts     AuthAccountStore
	Verification VerificationTokenStore
	Tokens       Tokens
	Passwords    PasswordHasher
	Tx           Transactor
	Events       EventPublisher
	Mailer       Mailer
}

func (d Deps) validate() error {
	switch {
	case d.Users == nil:
		return errors.New("user store is required")
	case d.Directory == nil:
		return errors.New("directory is required")
	case d.Sessions == nil:
		return errors.New("session store is required")
	case d.Accounts == nil:
		return errors.New("auth account store is required")
	case d.Verification == nil:
		return errors.New("verification token store is required")
	case d.Tokens == nil:
		return errors.New("tokens are required")
	case d.Passwords == nil:
		return errors.New("password hasher is required")
	case d.Tx == nil:
		return errors.New("transactor is required")
	case d.Events == nil:
		return errors.New("event publisher is required")
	case d.Mailer == nil:
		return errors.New("mailer is required")
	}
	return nil
}

// Service is the facade over the narrow identity services.
type Service struct {
	*VerificationTokens
	*Sessions
	*AuthAccounts
	*Registrar
	*Credentials
	*Users
	*Mail
}

type Option func(*observer)

func WithLogger(logger *slog.Logger) Option {
	return func(o *observer) {
		o.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *observer) {
		o.metrics = m
	}
}

func WithAuditEmitter(emitter AuditEmitter) Option {
	return func(o *observer) {
		o.audit = emitter
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(o *observer) {
		o.tracer = tracer
	}
}

func New(deps Deps, cfg Config, opts ...Option) (*Service, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	obs := &observer{}
	for _, opt := range opts {
		opt(obs)
	}
	if obs.logger == nil {
		obs.logger = slog.Default()
	}
	if obs.tracer == nil {
		obs.tracer = otel.Tracer("warden/identity")
	}

	return &Service{
		VerificationTokens: &VerificationTokens{observer: obs, store: deps.Verification, tokens: deps.Tokens},
		Sessions:           &Sessions{observer: obs, store: deps.Sessions, users: deps.Users, tokens: deps.Tokens},
		AuthAccounts:       &AuthAccounts{observer: obs, store: deps.Accounts, users: deps.Users},
		Registrar: &Registrar{
			observer:  obs,
			cfg:       cfg,
			users:     deps.Users,
			directory: deps.Directory,
			tokens:    deps.Tokens,
			passwords: deps.Passwords,
			tx:        deps.Tx,
			events:    deps.Events,
		},
		Credentials: &Credentials{
			observer:  obs,
			cfg:       cfg,
			users:     deps.Users,
			tokens:    deps.Tokens,
			passwords: deps.Passwords,
			tx:        deps.Tx,
			mailer:    deps.Mailer,
		},
		Users: &Users{observer: obs, users: deps.Users},
		Mail:  &Mail{observer: obs, cfg: cfg, mailer: deps.Mailer},
	}, nil
}
