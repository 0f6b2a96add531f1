package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	id "warden/pkg/domain"
	dErrors "warden/pkg/domain-errors"
	"warden/pkg/validation"
)

// RegisterRequest is raw signup data. Keys outside the core fields are collected
// into Profile and must appear in one of the field mapping tables.
type RegisterRequest struct {
	Email            string            `json:"email" validate:"required,email,max=255"`
	Login            string            `json:"login" validate:"required,noat,max=255"`
	Password         string            `json:"password" validate:"required"`
	GeneratePassword bool              `json:"generatePassword"`
	FirstName        string            `json:"firstname" validate:"max=255"`
	LastName         string            `json:"lastname" validate:"required,max=255"`
	Name             string            `json:"name"`
	Entity           id.EntityID       `json:"entity" validate:"required"`
	Profile          map[string]string `json:"-"`
}

// registerCoreKeys are lower case: encoding/json matches field names case-insensitively.
var registerCoreKeys = map[string]struct{}{
	"email": {}, "login": {}, "password": {}, "generatepassword": {},
	"firstname": {}, "lastname": {}, "name": {}, "entity": {},
}

func (r *RegisterRequest) UnmarshalJSON(data []byte) error {
	type core RegisterRequest
	var c core
	if err := json.Unmarshal(data, &c); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = RegisterRequest(c)
	for key, value := range raw {
		if _, ok := registerCoreKeys[strings.ToLower(key)]; ok {
			continue
		}
		if r.Profile == nil {
			r.Profile = make(map[string]string)
		}
		r.Profile[key] = profileValue(value)
	}
	return nil
}

func profileValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

// Validate runs after NormalizeRegistration; the first missing mandatory field wins.
func (r *RegisterRequest) Validate() error {
	if err := validation.Validate(r); err != nil {
		return err
	}
	if unknown := UnknownProfileFields(r.Profile); len(unknown) > 0 {
		return dErrors.New(dErrors.CodeValidation, "unknown field: "+strings.Join(unknown, ", "))
	}
	return nil
}

// OAuthRegisterRequest provisions a user from an OAuth sign-in. The password is generated.
type OAuthRegisterRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Name  string `json:"name" validate:"notblank,max=255"`
}

func (r *OAuthRegisterRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
}

func (r *OAuthRegisterRequest) Validate() error {
	return validation.Validate(r)
}

// LoginRequest accepts either the login or the email address in Login.
type LoginRequest struct {
	Login       string      `json:"login" validate:"notblank"`
	Password    string      `json:"password" validate:"required"`
	Entity      id.EntityID `json:"entity"`
	ResetAPIKey bool        `json:"resetApiKey"`
}

func (r *LoginRequest) Normalize() {
	r.Login = strings.TrimSpace(r.Login)
}

func (r *LoginRequest) Validate() error {
	return validation.Validate(r)
}

// ResetPasswordRequest is admin-initiated. An empty Password asks for a generated one.
type ResetPasswordRequest struct {
	Login       string `json:"login" validate:"notblank"`
	Password    string `json:"password"`
	ChangeLater bool   `json:"changeLater"`
}

func (r *ResetPasswordRequest) Normalize() {
	r.Login = strings.TrimSpace(r.Login)
}

func (r *ResetPasswordRequest) Validate() error {
	return validation.Validate(r)
}

// LinkAccountRequest links an external provider identity to a local user.
type LinkAccountRequest struct {
	UserID            id.UserID      `json:"userId" validate:"required,gt=0"`
	Provider          string         `json:"provider" validate:"notblank,max=64"`
	ProviderAccountID string         `json:"providerAccountId" validate:"notblank,max=255"`
	Type              id.AccountType `json:"type"`
	Scope             string         `json:"scope,omitempty" validate:"max=1024"`
	ExpiresAt         *time.Time     `json:"expiresAt,omitempty"`
}

func (r *LinkAccountRequest) Normalize() {
	r.Provider = strings.ToLower(strings.TrimSpace(r.Provider))
	r.ProviderAccountID = strings.TrimSpace(r.ProviderAccountID)
}

func (r *LinkAccountRequest) Validate() error {
	if err := validation.Validate(r); err != nil {
		return err
	}
	if !r.Type.IsValid() {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("type %q is not supported", r.Type))
	}
	return nil
}

// CreateSessionRequest creates a session. A missing SessionToken is generated.
type CreateSessionRequest struct {
	SessionToken string         `json:"sessionToken"`
	UserID       id.UserID      `json:"userId" validate:"required,gt=0"`
	Expires      *time.Time     `json:"expires,omitempty"`
	Data         map[string]any `json:"data,omitempty"`
	UserAgent    string         `json:"-"`
}

func (r *CreateSessionRequest) Validate() error {
	return validation.Validate(r)
}

// UpdateSessionRequest patches a session. Nil fields are left untouched.
type UpdateSessionRequest struct {
	Expires *time.Time     `json:"expires,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// IssueVerificationTokenRequest issues a single-use token. A missing Token is generated.
type IssueVerificationTokenRequest struct {
	Identifier string         `json:"identifier" validate:"notblank,max=255"`
	Token      string         `json:"token"`
	Purpose    string         `json:"purpose" validate:"max=64"`
	Data       map[string]any `json:"data,omitempty"`
	Expires    *time.Time     `json:"expires,omitempty"`
}

func (r *IssueVerificationTokenRequest) Validate() error {
	return validation.Validate(r)
}

// ConsumeVerificationTokenRequest carries the pair to redeem.
type ConsumeVerificationTokenRequest struct {
	Identifier string `json:"identifier" validate:"notblank"`
	Token      string `json:"token" validate:"notblank"`
}

func (r *ConsumeVerificationTokenRequest) Validate() error {
	return validation.Validate(r)
}

// SendMailRequest is a free-form message. To is a comma separated address list.
type SendMailRequest struct {
	Subject string `json:"subject" validate:"notblank"`
	To      string `json:"to" validate:"notblank"`
	Message string `json:"message" validate:"required"`
	IsHTML  bool   `json:"isHtml"`
}

func (r *SendMailRequest) Validate() error {
	if err := validation.Validate(r); err != nil {
		return err
	}
	for _, addr := range r.Recipients() {
		if !IsEmail(addr) {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("invalid recipient %q", addr))
		}
	}
	return nil
}

// Recipients splits To into trimmed, non-empty addresses.
func (r *SendMailRequest) Recipients() []string {
	var out []string
	for _, part := range strings.Split(r.To, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
