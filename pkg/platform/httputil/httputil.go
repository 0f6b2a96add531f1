package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "warden/pkg/domain-errors"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent, an encoding error cannot change the status.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteNoContent answers a successful request that has nothing to return.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteError translates a domain error into its HTTP status and error body.
// Anything that is not a domain error is reported as internal_error without detail.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		WriteJSON(w, DomainCodeToHTTPStatus(domainErr.Code), ErrorResponse{
			Error:       DomainCodeToHTTPCode(domainErr.Code),
			Description: domainErr.Message,
		})
		return
	}

	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: DomainCodeToHTTPCode(dErrors.CodeInternal),
	})
}

var statusByCode = map[dErrors.Code]int{
	dErrors.CodeMissingParameter:   http.StatusBadRequest,
	dErrors.CodeValidation:         http.StatusBadRequest,
	dErrors.CodeBadRequest:         http.StatusBadRequest,
	dErrors.CodeChangePassword:     http.StatusBadRequest,
	dErrors.CodeNotFound:           http.StatusNotFound,
	dErrors.CodeUserNotFound:       http.StatusNotFound,
	dErrors.CodeSenderNotFound:     http.StatusNotFound,
	dErrors.CodeNothingToDelete:    http.StatusNotFound,
	dErrors.CodeAlreadyLinked:      http.StatusConflict,
	dErrors.CodeAlreadyExists:      http.StatusConflict,
	dErrors.CodePermissionDenied:   http.StatusForbidden,
	dErrors.CodeUnauthorized:       http.StatusUnauthorized,
	dErrors.CodeLoginFailed:        http.StatusUnauthorized,
	dErrors.CodePasswordTooShort:   http.StatusUnprocessableEntity,
	dErrors.CodeExpired:            http.StatusGone,
	dErrors.CodeTimeout:            http.StatusGatewayTimeout,
	dErrors.CodePersistence:        http.StatusInternalServerError,
	dErrors.CodeSubscriberRejected: http.StatusInternalServerError,
	dErrors.CodeDeletion:           http.StatusInternalServerError,
	dErrors.CodeRightsProvisioning: http.StatusInternalServerError,
	dErrors.CodeUnknown:            http.StatusInternalServerError,
	dErrors.CodeInternal:           http.StatusInternalServerError,
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainCodeToHTTPCode returns the wire name of a domain code. Codes this
// package does not know are reported as internal_error.
func DomainCodeToHTTPCode(code dErrors.Code) string {
	if _, ok := statusByCode[code]; ok {
		return string(code)
	}
	return string(dErrors.CodeInternal)
}
