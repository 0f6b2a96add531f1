package service

import (
	"context"
	"errors"
	"fmt"

	"warden/internal/audit"
	"warden/internal/identity/models"
	id "warden/pkg/domain"
	dErrors "warden/pkg/domain-errors"
	"warden/pkg/platform/sentinel"
	"warden/pkg/requestcontext"
)

// Credentials verifies passwords, performs administrative resets and reissues API keys.
type Credentials struct {
	*observer
	cfg       Config
	users     UserStore
	tokens    Tokens
	passwords PasswordHasher
	tx        Transactor
	mailer    Mailer
}

// Login accepts the login or the email address. Every rejection is the same
// CodeLoginFailed so callers cannot tell which half was wrong.
func (c *Credentials) Login(ctx context.Context, req *models.LoginRequest) (*models.UserProjection, error) {
	if err := c.authorize(ctx, models.RightUserRead); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := c.users.FindByLoginOrEmail(ctx, req.Login)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, c.loginFailed(ctx, 0, "unknown_user")
		}
		err = translate(err, "failed to load user")
		c.failure(ctx, "login", err)
		return nil, err
	}
	if req.Entity != 0 && user.Entity != req.Entity {
		return nil, c.loginFailed(ctx, user.ID, "entity_mismatch")
	}
	if err := c.passwords.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, c.loginFailed(ctx, user.ID, "bad_password")
	}

	key, err := c.currentAPIKey(ctx, user, req.ResetAPIKey)
	if err != nil {
		c.failure(ctx, "login", err, "user_id", user.ID.String())
		return nil, err
	}
	user.APIKey = key

	c.incLogin("ok")
	c.logAudit(ctx, audit.EventLoginSucceeded, user.ID, "granted")
	return models.NewUserProjection(user), nil
}

func (c *Credentials) loginFailed(ctx context.Context, userID id.UserID, reason string) error {
	c.incLogin(reason)
	c.logAudit(ctx, audit.EventLoginFailed, userID, "denied", "reason", reason)
	return dErrors.New(dErrors.CodeLoginFailed, "login failed")
}

// currentAPIKey unseals the stored key, or issues a new one when asked to or
// when the user has none.
func (c *Credentials) currentAPIKey(ctx context.Context, user *models.User, reset bool) (string, error) {
	if !reset && len(user.APIKeySealed) > 0 {
		key, err := c.tokens.Open(user.APIKeySealed)
		if err == nil {
			return key, nil
		}
		c.logger.WarnContext(ctx, "stored api key unreadable, issuing a new one",
			"user_id", user.ID.String(),
			"error", err,
		)
	}
	key, err := issueAPIKey(ctx, c.users, c.tokens, user.ID)
	if err != nil {
		return "", translate(err, "failed to create api key")
	}
	c.logAudit(ctx, audit.EventAPIKeyIssued, user.ID, "granted")
	return key, nil
}

// ResetPassword is admin only. An empty password is replaced by a generated one.
// When a reset sender is configured the new password is mailed to the user and
// the delivery outcome is reported alongside the user.
func (c *Credentials) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) (*models.ResetPasswordResult, error) {
	if err := c.requireAdmin(ctx); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	newPassword := req.Password
	if newPassword == "" {
		generated, err := c.tokens.Generate()
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate password")
		}
		newPassword = generated
	}

	var user, sender *models.User
	err := c.tx.RunInTx(ctx, func(ctx context.Context) error {
		found, err := c.users.FindByLogin(ctx, req.Login)
		if err != nil {
			return translate(err, "failed to load user", notFound(dErrors.CodeUserNotFound, "user not found"))
		}
		if c.cfg.ResetSenderUserID > 0 {
			sender, err = c.users.FindByID(ctx, c.cfg.ResetSenderUserID)
			if err != nil {
				return translate(err, "failed to load sender", notFound(dErrors.CodeSenderNotFound, "sender user not found"))
			}
		}
		hash, err := c.passwords.Hash(newPassword)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeChangePassword, changePasswordMessage(err))
		}
		if err := c.users.SetPassword(ctx, found.ID, hash, req.ChangeLater); err != nil {
			return translate(err, "change password failed")
		}
		user, err = c.users.FindByID(ctx, found.ID)
		if err != nil {
			return translate(err, "failed to reload user")
		}
		return nil
	})
	if err != nil {
		c.failure(ctx, "reset_password", err, "login", req.Login)
		return nil, err
	}

	c.incPasswordReset()
	c.logAudit(ctx, audit.EventPasswordReset, user.ID, "granted", "change_later", req.ChangeLater)

	result := &models.ResetPasswordResult{User: models.NewUserProjection(withoutAPIKey(user))}
	if sender != nil {
		result.Notification = c.notifyReset(ctx, sender, user, newPassword)
	}
	return result, nil
}

func changePasswordMessage(err error) string {
	if errors.Is(err, sentinel.ErrPasswordTooShort) {
		return "password too short"
	}
	return "change password failed"
}

// notifyReset never fails the reset; the outcome is reported instead.
func (c *Credentials) notifyReset(ctx context.Context, sender, user *models.User, newPassword string) models.NotificationOutcome {
	from := sender.Email
	if from == "" {
		from = c.cfg.DefaultEmailFrom
	}
	msg := &models.Mail{
		From:    from,
		To:      []string{user.Email},
		Subject: "Your password has been reset",
		Body: fmt.Sprintf("Hello %s,\n\nYour password was reset by an administrator.\nLogin: %s\nNew password: %s\n",
			user.DisplayName(), user.Login, newPassword),
	}
	if err := c.mailer.Send(ctx, msg); err != nil {
		c.incMail("error")
		c.logger.ErrorContext(ctx, "failed to send password reset notification",
			"user_id", user.ID.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return models.NotificationOutcome{Attempted: true, Error: "mail delivery failed"}
	}
	c.incMail("ok")
	return models.NotificationOutcome{Attempted: true, Sent: true}
}

// ReissueAPIKey replaces the user's API key. Admins may reissue any key; other
// callers only their own.
func (c *Credentials) ReissueAPIKey(ctx context.Context, userID id.UserID) (*models.UserProjection, error) {
	caller := requestcontext.CallerFrom(ctx)
	if caller == nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if !caller.Admin && (caller.UserID.IsNil() || caller.UserID != userID) {
		return nil, dErrors.New(dErrors.CodePermissionDenied, "permission denied")
	}
	if userID.IsNil() {
		return nil, dErrors.MissingParameter("id")
	}

	var user *models.User
	var key string
	err := c.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := c.users.FindByID(ctx, userID); err != nil {
			return translate(err, "failed to load user", notFound(dErrors.CodeUserNotFound, "user not found"))
		}
		issued, err := issueAPIKey(ctx, c.users, c.tokens, userID)
		if err != nil {
			return translate(err, "failed to create api key")
		}
		key = issued
		user, err = c.users.FindByID(ctx, userID)
		if err != nil {
			return translate(err, "failed to reload user")
		}
		return nil
	})
	if err != nil {
		c.failure(ctx, "reissue_api_key", err, "user_id", userID.String())
		return nil, err
	}

	c.logAudit(ctx, audit.EventAPIKeyIssued, userID, "granted")
	user.APIKey = key
	return models.NewUserProjection(user), nil
}

// AuthenticateAPIKey resolves a presented API key to the caller it belongs to.
// Only the keyed digest is looked up; the sealed key is never opened here.
func (c *Credentials) AuthenticateAPIKey(ctx context.Context, key string) (*requestcontext.Caller, error) {
	if key == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing api key")
	}
	user, err := c.users.FindByAPIKeyDigest(ctx, c.tokens.Digest(key))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid api key")
		}
		err = translate(err, "failed to resolve api key")
		c.failure(ctx, "authenticate_api_key", err)
		return nil, err
	}
	return &requestcontext.Caller{
		UserID: user.ID,
		Name:   user.Login,
		Admin:  user.Admin,
		Rights: append([]string(nil), user.Rights...),
	}, nil
}
