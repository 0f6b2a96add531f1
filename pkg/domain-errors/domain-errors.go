package domainerrors

import "errors"

// Code represents a domain error category independent of transport layer.
// These codes describe what went wrong in identity terms, not HTTP terms.
type Code string

const (
	CodeMissingParameter   Code = "missing_parameter"
	CodeValidation         Code = "validation_failed"
	CodeBadRequest         Code = "bad_request"
	CodeNotFound           Code = "not_found"
	CodeUserNotFound       Code = "user_not_found"
	CodeSenderNotFound     Code = "sender_not_found"
	CodeAlreadyLinked      Code = "already_linked"
	CodeAlreadyExists      Code = "already_exists"
	CodePermissionDenied   Code = "permission_denied"
	CodeUnauthorized       Code = "unauthorized"
	CodeLoginFailed        Code = "login_failed"
	CodePersistence        Code = "persistence_error"
	CodeSubscriberRejected Code = "subscriber_rejected"
	CodeNothingToDelete    Code = "nothing_to_delete"
	CodeDeletion           Code = "deletion_failed"
	CodeExpired            Code = "expired"
	CodeChangePassword     Code = "change_password_failed"
	CodePasswordTooShort   Code = "password_too_short"
	CodeRightsProvisioning Code = "rights_provisioning_failed"
	CodeTimeout            Code = "timeout"
	CodeInternal           Code = "internal_error"
	CodeUnknown            Code = "unknown"
)

// Error wraps domain or infrastructure failures with a stable code.
// It is transport-agnostic and can be used across service, store, and other layers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if an error is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the outermost domain code in the chain, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// MissingParameter reports a mandatory input field that was not supplied.
func MissingParameter(field string) error {
	return &Error{Code: CodeMissingParameter, Message: "missing parameter: " + field}
}
