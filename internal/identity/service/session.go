package service

import (
	"context"
	"strings"

	"warden/internal/audit"
	"warden/internal/identity/device"
	"warden/internal/identity/models"
	dErrors "warden/pkg/domain-errors"
	"warden/pkg/platform/sentinel"
	"warden/pkg/requestcontext"
)

// Sessions manages session records keyed by an opaque token. Stores only ever
// see the token digest.
type Sessions struct {
	*observer
	store  SessionStore
	users  UserStore
	tokens Tokens
}

// CreateSession persists a session for an existing user. A missing token is
// generated; the User-Agent contributes a device name to the session data.
func (s *Sessions) CreateSession(ctx context.Context, req *models.CreateSessionRequest) (*models.SessionProjection, error) {
	if err := s.authorize(ctx, models.RightSessionWrite); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByID(ctx, req.UserID); err != nil {
		return nil, translate(err, "failed to load user", notFound(dErrors.CodeUserNotFound, "user not found"))
	}

	token := strings.TrimSpace(req.SessionToken)
	if token == "" {
		generated, err := s.tokens.Generate()
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate session token")
		}
		token = generated
	}

	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = requestcontext.UserAgent(ctx)
	}

	created, err := s.store.Create(ctx, &models.Session{
		TokenDigest: s.tokens.Digest(token),
		UserID:      req.UserID,
		Data:        device.Annotate(req.Data, userAgent),
		ExpiresAt:   req.Expires,
	})
	if err != nil {
		err = translate(err, "failed to create session",
			errorMapping{sentinel.ErrAlreadyUsed, dErrors.CodeAlreadyExists, "session already exists"},
			notFound(dErrors.CodeUserNotFound, "user not found"),
		)
		s.failure(ctx, "create_session", err, "user_id", req.UserID.String())
		return nil, err
	}

	s.incSessionCreated()
	s.logAudit(ctx, audit.EventSessionCreated, created.UserID, "granted")
	return models.NewSessionProjection(token, created), nil
}

func (s *Sessions) GetSession(ctx context.Context, token string) (*models.SessionProjection, error) {
	if err := s.authorize(ctx, models.RightSessionRead); err != nil {
		return nil, err
	}
	session, err := s.find(ctx, token)
	if err != nil {
		return nil, err
	}
	return models.NewSessionProjection(token, session), nil
}

// UpdateSession applies the non-nil fields of req.
func (s *Sessions) UpdateSession(ctx context.Context, token string, req *models.UpdateSessionRequest) (*models.SessionProjection, error) {
	if err := s.authorize(ctx, models.RightSessionWrite); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	session, err := s.find(ctx, token)
	if err != nil {
		return nil, err
	}
	if req.Expires != nil {
		expires := *req.Expires
		session.ExpiresAt = &expires
	}
	if req.Data != nil {
		session.Data = req.Data
	}

	updated, err := s.store.Update(ctx, session)
	if err != nil {
		err = translate(err, "failed to update session", notFound(dErrors.CodeNotFound, "session not found"))
		s.failure(ctx, "update_session", err, "user_id", session.UserID.String())
		return nil, err
	}
	return models.NewSessionProjection(token, updated), nil
}

// DeleteSession reports CodeNothingToDelete when no session matched.
func (s *Sessions) DeleteSession(ctx context.Context, token string) error {
	if err := s.authorize(ctx, models.RightSessionDelete); err != nil {
		return err
	}
	if token == "" {
		return dErrors.MissingParameter("sessionToken")
	}
	if err := s.store.DeleteByTokenDigest(ctx, s.tokens.Digest(token)); err != nil {
		err = translate(err, "failed to delete session",
			errorMapping{sentinel.ErrNothingAffected, dErrors.CodeNothingToDelete, "nothing to delete"},
			errorMapping{sentinel.ErrNotFound, dErrors.CodeNothingToDelete, "nothing to delete"},
		)
		s.failure(ctx, "delete_session", err)
		return err
	}
	s.incSessionDeleted()
	s.logAudit(ctx, audit.EventSessionDeleted, 0, "granted")
	return nil
}

// GetSessionAndUser returns both halves or an error, never one without the other.
func (s *Sessions) GetSessionAndUser(ctx context.Context, token string) (*models.SessionAndUser, error) {
	if err := s.authorize(ctx, models.RightSessionRead, models.RightUserRead); err != nil {
		return nil, err
	}
	session, err := s.find(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		err = translate(err, "failed to load user", notFound(dErrors.CodeUserNotFound, "user not found"))
		s.failure(ctx, "get_session_and_user", err, "user_id", session.UserID.String())
		return nil, err
	}
	return &models.SessionAndUser{
		Session: models.NewSessionProjection(token, session),
		User:    models.NewUserProjection(withoutAPIKey(user)),
	}, nil
}

func (s *Sessions) find(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, dErrors.MissingParameter("sessionToken")
	}
	session, err := s.store.FindByTokenDigest(ctx, s.tokens.Digest(token))
	if err != nil {
		return nil, translate(err, "failed to load session", notFound(dErrors.CodeNotFound, "session not found"))
	}
	return session, nil
}

// withoutAPIKey drops the plaintext key so lookups never disclose it.
func withoutAPIKey(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	c.APIKey = ""
	return &c
}
