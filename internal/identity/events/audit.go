package events

import (
	"context"

	"warden/internal/audit"
)

// Emitter records audit events.
type Emitter interface {
	Emit(ctx context.Context, event audit.Event) error
}

// AuditSubscriber writes a registration row to the audit trail. The row is
// written through the caller's transaction, so it exists only if the
// registration commits.
type AuditSubscriber struct {
	emitter Emitter
}

func NewAuditSubscriber(emitter Emitter) *AuditSubscriber {
	return &AuditSubscriber{emitter: emitter}
}

func (s *AuditSubscriber) Name() string { return "audit" }

func (s *AuditSubscriber) Handle(ctx context.Context, e Event) error {
	return s.emitter.Emit(ctx, audit.Event{
		Timestamp: e.OccurredAt,
		UserID:    e.UserID,
		Subject:   e.Login,
		Action:    string(audit.EventUserRegistered),
		Decision:  "granted",
		Reason:    e.Origin,
		Email:     e.Email,
		RequestID: e.RequestID,
	})
}
