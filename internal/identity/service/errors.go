package service

import (
	"errors"

	"warden/internal/identity/models"
	dErrors "warden/pkg/domain-errors"
	"warden/pkg/platform/sentinel"
)

// Store error handling: translates sentinel errors into domain errors once, at
// the service boundary.

type errorMapping struct {
	sentinel error
	code     dErrors.Code
	msg      string
}

// translate passes domain errors through, applies the first matching mapping and
// otherwise reports a persistence failure with the stable fallback message.
func translate(err error, fallback string, mappings ...errorMapping) error {
	if err == nil {
		return nil
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	for _, m := range mappings {
		if errors.Is(err, m.sentinel) {
			return dErrors.Wrap(err, m.code, m.msg)
		}
	}
	return dErrors.Wrap(err, dErrors.CodePersistence, fallback)
}

func notFound(code dErrors.Code, msg string) errorMapping {
	return errorMapping{sentinel: sentinel.ErrNotFound, code: code, msg: msg}
}

type failureMapping struct {
	code dErrors.Code
	msg  string
}

// userCreateErrors gives every user creation failure its own stable code.
var userCreateErrors = map[models.UserCreateFailure]failureMapping{
	models.UserCreatePasswordTooShort:   {dErrors.CodePasswordTooShort, "password too short"},
	models.UserCreateGeneric:            {dErrors.CodePersistence, "failed to create user"},
	models.UserCreateRightsProvisioning: {dErrors.CodeRightsProvisioning, "problem with rights"},
	models.UserCreateLoginCollision:     {dErrors.CodeAlreadyExists, "user already exists"},
	models.UserCreateUnknown:            {dErrors.CodeUnknown, "unknown error"},
}

// hashFailure classifies an error from the password hasher.
func hashFailure(err error) models.UserCreateFailure {
	if errors.Is(err, sentinel.ErrPasswordTooShort) {
		return models.UserCreatePasswordTooShort
	}
	return models.UserCreateUnknown
}

// storeCreateFailure classifies an error from UserStore.Create.
func storeCreateFailure(err error) models.UserCreateFailure {
	switch {
	case errors.Is(err, sentinel.ErrRightsProvisioning):
		return models.UserCreateRightsProvisioning
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return models.UserCreateLoginCollision
	case errors.Is(err, sentinel.ErrPasswordTooShort):
		return models.UserCreatePasswordTooShort
	default:
		return models.UserCreateGeneric
	}
}

func userCreateError(failure models.UserCreateFailure, err error) error {
	m, ok := userCreateErrors[failure]
	if !ok {
		m = userCreateErrors[models.UserCreateUnknown]
	}
	return &dErrors.Error{Code: m.code, Message: m.msg, Err: err}
}
