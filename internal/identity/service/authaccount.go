package service

import (
	"context"
	"strings"

	"warden/internal/audit"
	"warden/internal/identity/models"
	dErrors "warden/pkg/domain-errors"
	"warden/pkg/platform/sentinel"
)

// AuthAccounts maps external provider identities to local users. The store's
// unique constraint decides races: exactly one concurrent link wins.
type AuthAccounts struct {
	*observer
	store AuthAccountStore
	users UserStore
}

func (a *AuthAccounts) LinkAccount(ctx context.Context, req *models.LinkAccountRequest) (*models.AuthAccountProjection, error) {
	if err := a.authorize(ctx, models.RightAuthAccountWrite); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := a.users.FindByID(ctx, req.UserID); err != nil {
		err = translate(err, "failed to load user", notFound(dErrors.CodeUserNotFound, "user not found"))
		a.failure(ctx, "link_account", err, "user_id", req.UserID.String())
		return nil, err
	}

	created, err := a.store.Create(ctx, &models.AuthAccount{
		UserID:            req.UserID,
		Provider:          req.Provider,
		ProviderAccountID: req.ProviderAccountID,
		Type:              req.Type,
		Scope:             req.Scope,
		ExpiresAt:         req.ExpiresAt,
	})
	if err != nil {
		err = translate(err, "failed to link account",
			errorMapping{sentinel.ErrAlreadyUsed, dErrors.CodeAlreadyLinked, "account already linked"},
			notFound(dErrors.CodeUserNotFound, "user not found"),
		)
		a.failure(ctx, "link_account", err,
			"provider", req.Provider,
			"user_id", req.UserID.String(),
		)
		return nil, err
	}

	a.incAccountLinked()
	a.logAudit(ctx, audit.EventAuthAccountLinked, created.UserID, "granted", "provider", created.Provider)
	return models.NewAuthAccountProjection(created), nil
}

func (a *AuthAccounts) GetAccount(ctx context.Context, provider, providerAccountID string) (*models.AuthAccountProjection, error) {
	if err := a.authorize(ctx, models.RightAuthAccountRead); err != nil {
		return nil, err
	}
	account, err := a.find(ctx, provider, providerAccountID)
	if err != nil {
		return nil, err
	}
	return models.NewAuthAccountProjection(account), nil
}

// GetUserByProviderAccount resolves an external identity straight to its user.
func (a *AuthAccounts) GetUserByProviderAccount(ctx context.Context, provider, providerAccountID string) (*models.UserProjection, error) {
	if err := a.authorize(ctx, models.RightAuthAccountRead, models.RightUserRead); err != nil {
		return nil, err
	}
	account, err := a.find(ctx, provider, providerAccountID)
	if err != nil {
		return nil, err
	}
	user, err := a.users.FindByID(ctx, account.UserID)
	if err != nil {
		err = translate(err, "failed to load user", notFound(dErrors.CodeUserNotFound, "user not found"))
		a.failure(ctx, "get_user_by_provider_account", err, "user_id", account.UserID.String())
		return nil, err
	}
	return models.NewUserProjection(withoutAPIKey(user)), nil
}

func (a *AuthAccounts) UnlinkAccount(ctx context.Context, provider, providerAccountID string) error {
	if err := a.authorize(ctx, models.RightAuthAccountDelete); err != nil {
		return err
	}
	provider, providerAccountID, err := accountKey(provider, providerAccountID)
	if err != nil {
		return err
	}
	account, err := a.find(ctx, provider, providerAccountID)
	if err != nil {
		return err
	}
	if err := a.store.Delete(ctx, provider, providerAccountID); err != nil {
		err = translate(err, "failed to unlink account", notFound(dErrors.CodeNotFound, "account not found"))
		a.failure(ctx, "unlink_account", err, "provider", provider)
		return err
	}
	a.logAudit(ctx, audit.EventAuthAccountUnlink, account.UserID, "granted", "provider", provider)
	return nil
}

func (a *AuthAccounts) find(ctx context.Context, provider, providerAccountID string) (*models.AuthAccount, error) {
	provider, providerAccountID, err := accountKey(provider, providerAccountID)
	if err != nil {
		return nil, err
	}
	account, err := a.store.FindByProviderAccount(ctx, provider, providerAccountID)
	if err != nil {
		return nil, translate(err, "failed to load account", notFound(dErrors.CodeNotFound, "account not found"))
	}
	return account, nil
}

// accountKey normalizes the lookup key the same way LinkAccountRequest does.
func accountKey(provider, providerAccountID string) (string, string, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	providerAccountID = strings.TrimSpace(providerAccountID)
	if provider == "" {
		return "", "", dErrors.MissingParameter("provider")
	}
	if providerAccountID == "" {
		return "", "", dErrors.MissingParameter("providerAccountId")
	}
	return provider, providerAccountID, nil
}
