package audit

import (
	"time"

	id "warden/pkg/domain"
)

// Event is emitted from domain logic to capture key actions. It stays
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	UserID    id.UserID
	Subject   string
	Action    string
	Decision  string
	Reason    string
	Email     string
	RequestID string
	ActorID   string
}

type AuditEvent string

const (
	EventUserRegistered    AuditEvent = "user_registered"
	EventLoginSucceeded    AuditEvent = "login_succeeded"
	EventLoginFailed       AuditEvent = "login_failed"
	EventPasswordReset     AuditEvent = "password_reset"
	EventAPIKeyIssued      AuditEvent = "api_key_issued"
	EventAuthAccountLinked AuditEvent = "auth_account_linked"
	EventAuthAccountUnlink AuditEvent = "auth_account_unlinked"
	EventSessionCreated    AuditEvent = "session_created"
	EventSessionDeleted    AuditEvent = "session_deleted"
	EventTokenConsumed     AuditEvent = "verification_token_consumed"
	EventMailSent          AuditEvent = "mail_sent"
)
