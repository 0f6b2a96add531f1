package models

// UserCreateFailure is the closed set of ways creating a user from a contact can fail.
type UserCreateFailure int

const (
	UserCreateUnknown UserCreateFailure = iota
	UserCreatePasswordTooShort
	UserCreateGeneric
	UserCreateRightsProvisioning
	UserCreateLoginCollision
)

func (f UserCreateFailure) String() string {
	switch f {
	case UserCreatePasswordTooShort:
		return "password_too_short"
	case UserCreateGeneric:
		return "generic"
	case UserCreateRightsProvisioning:
		return "rights_provisioning"
	case UserCreateLoginCollision:
		return "login_collision"
	default:
		return "unknown"
	}
}
