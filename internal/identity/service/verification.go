package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"warden/internal/audit"
	"warden/internal/identity/models"
	id "warden/pkg/domain"
	dErrors "warden/pkg/domain-errors"
	"warden/pkg/platform/sentinel"
	"warden/pkg/requestcontext"
)

// VerificationTokens issues single-use (identifier, token) pairs and redeems them at most once.
type VerificationTokens struct {
	*observer
	store  VerificationTokenStore
	tokens Tokens
}

// IssueVerificationToken persists a new token. The plaintext is returned once;
// only its digest is stored.
func (v *VerificationTokens) IssueVerificationToken(ctx context.Context, req *models.IssueVerificationTokenRequest) (*models.VerificationTokenProjection, error) {
	if err := v.authorize(ctx, models.RightVerificationTokenWrite); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	plaintext := req.Token
	if plaintext == "" {
		generated, err := v.tokens.Generate()
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate token")
		}
		plaintext = generated
	}

	created, err := v.store.Create(ctx, &models.VerificationToken{
		Identifier:  req.Identifier,
		TokenDigest: v.tokens.Digest(plaintext),
		Purpose:     req.Purpose,
		Data:        req.Data,
		ExpiresAt:   req.Expires,
	})
	if err != nil {
		err = translate(err, "failed to create verification token",
			errorMapping{sentinel.ErrAlreadyUsed, dErrors.CodeAlreadyExists, "verification token already exists"},
		)
		v.failure(ctx, "issue_verification_token", err, "identifier", req.Identifier)
		return nil, err
	}
	v.incTokenIssued()
	return models.NewVerificationTokenProjection(plaintext, created), nil
}

// ConsumeVerificationToken redeems the pair. The record is gone once this returns,
// whatever the outcome: a failed delete discloses nothing and an expired token
// is removed and reported as expired.
func (v *VerificationTokens) ConsumeVerificationToken(ctx context.Context, req *models.ConsumeVerificationTokenRequest) (_ *models.VerificationTokenProjection, err error) {
	if err := v.authorize(ctx, models.RightVerificationTokenDelete); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, span := v.startSpan(ctx, "identity.verification_token.consume")
	span.SetAttributes(attribute.String("identifier", req.Identifier))
	defer func() { endSpan(span, err) }()

	consumed, err := v.store.Consume(ctx, req.Identifier, v.tokens.Digest(req.Token))
	if err != nil {
		outcome := "error"
		switch {
		case errors.Is(err, sentinel.ErrDeleteFailed):
			outcome = "delete_failed"
			err = dErrors.Wrap(err, dErrors.CodeDeletion, "failed to delete verification token")
		case errors.Is(err, sentinel.ErrNotFound):
			outcome = "not_found"
			err = dErrors.Wrap(err, dErrors.CodeNotFound, "verification token not found")
		default:
			err = translate(err, "failed to consume verification token")
		}
		v.incTokenConsumed(outcome)
		v.failure(ctx, "consume_verification_token", err, "identifier", req.Identifier)
		return nil, err
	}

	if consumed.IsExpired(requestcontext.Now(ctx)) {
		v.incTokenConsumed("expired")
		return nil, dErrors.New(dErrors.CodeExpired, "verification token expired")
	}

	v.incTokenConsumed("ok")
	v.logAudit(ctx, audit.EventTokenConsumed, id.UserID(0), "granted",
		"identifier", consumed.Identifier,
		"purpose", consumed.Purpose,
	)
	return models.NewVerificationTokenProjection(req.Token, consumed), nil
}
