package service

import (
	"context"
	"strings"

	"warden/internal/identity/models"
	id "warden/pkg/domain"
	dErrors "warden/pkg/domain-errors"
)

// Users serves the OAuth adapter lookups. Projections never carry the API key.
type Users struct {
	*observer
	users UserStore
}

func (u *Users) GetUser(ctx context.Context, userID id.UserID) (*models.UserProjection, error) {
	if err := u.authorize(ctx, models.RightUserRead); err != nil {
		return nil, err
	}
	if userID.IsNil() {
		return nil, dErrors.MissingParameter("id")
	}
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, translate(err, "failed to load user", notFound(dErrors.CodeUserNotFound, "user not found"))
	}
	return models.NewUserProjection(withoutAPIKey(user)), nil
}

func (u *Users) GetUserByEmail(ctx context.Context, email string) (*models.UserProjection, error) {
	if err := u.authorize(ctx, models.RightUserRead); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, dErrors.MissingParameter("email")
	}
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, translate(err, "failed to load user", notFound(dErrors.CodeUserNotFound, "user not found"))
	}
	return models.NewUserProjection(withoutAPIKey(user)), nil
}
