package sentinel

import "errors"

// Sentinel store errors. Stores return these (optionally wrapped) so services can
// translate them into domain errors exactly once.
var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyUsed        = errors.New("already used")
	ErrNothingAffected    = errors.New("no rows affected")
	ErrExpired            = errors.New("expired")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrRightsProvisioning = errors.New("rights provisioning failed")
	ErrDeleteFailed       = errors.New("delete failed")
	ErrUnavailable        = errors.New("unavailable")
)
