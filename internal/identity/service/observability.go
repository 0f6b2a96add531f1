package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"warden/internal/audit"
	"warden/internal/identity/metrics"
	id "warden/pkg/domain"
	dErrors "warden/pkg/domain-errors"
	"warden/pkg/requestcontext"
)

// observer holds the logging, audit, metrics and tracing hooks every narrow service shares.
type observer struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   AuditEmitter
	tracer  trace.Tracer
}

// authorize fails with CodeUnauthorized without a caller and CodePermissionDenied
// when any right is missing.
func (o *observer) authorize(ctx context.Context, rights ...string) error {
	caller := requestcontext.CallerFrom(ctx)
	if caller == nil {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	for _, right := range rights {
		if !caller.HasRight(right) {
			o.logger.WarnContext(ctx, "permission denied",
				"caller", caller.Name,
				"right", right,
				"request_id", requestcontext.RequestID(ctx),
			)
			return dErrors.New(dErrors.CodePermissionDenied, "permission denied")
		}
	}
	return nil
}

func (o *observer) requireAdmin(ctx context.Context) error {
	caller := requestcontext.CallerFrom(ctx)
	if caller == nil {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if !caller.Admin {
		o.logger.WarnContext(ctx, "permission denied",
			"caller", caller.Name,
			"right", "admin",
			"request_id", requestcontext.RequestID(ctx),
		)
		return dErrors.New(dErrors.CodePermissionDenied, "permission denied")
	}
	return nil
}

// logAudit logs the event and records it in the audit trail. Emission failures
// are logged, never returned.
func (o *observer) logAudit(ctx context.Context, event audit.AuditEvent, userID id.UserID, decision string, attributes ...any) {
	requestID := requestcontext.RequestID(ctx)
	args := append(attributes,
		"event", string(event),
		"user_id", userID.String(),
		"log_type", "audit",
		"request_id", requestID,
	)
	o.logger.InfoContext(ctx, string(event), args...)
	if o.audit == nil {
		return
	}
	if err := o.audit.Emit(ctx, audit.Event{
		UserID:    userID,
		Subject:   userID.String(),
		Action:    string(event),
		Decision:  decision,
		RequestID: requestID,
	}); err != nil {
		o.logger.ErrorContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}

// failure logs a failed operation. Internal diagnostics stay in the log.
func (o *observer) failure(ctx context.Context, op string, err error, attributes ...any) {
	args := append(attributes,
		"op", op,
		"code", string(dErrors.CodeOf(err)),
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	switch dErrors.CodeOf(err) {
	case dErrors.CodePersistence, dErrors.CodeInternal, dErrors.CodeUnknown,
		dErrors.CodeDeletion, dErrors.CodeRightsProvisioning, dErrors.CodeSubscriberRejected:
		o.logger.ErrorContext(ctx, op+" failed", args...)
	default:
		o.logger.WarnContext(ctx, op+" failed", args...)
	}
}

func (o *observer) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
}

func (o *observer) incRegistration(outcome string) {
	if o.metrics != nil {
		o.metrics.Registrations.WithLabelValues(outcome).Inc()
	}
}

func (o *observer) observeRegistrationDuration(ms float64) {
	if o.metrics != nil {
		o.metrics.RegistrationDurationMs.Observe(ms)
	}
}

func (o *observer) incLogin(outcome string) {
	if o.metrics != nil {
		o.metrics.Logins.WithLabelValues(outcome).Inc()
	}
}

func (o *observer) incSessionCreated() {
	if o.metrics != nil {
		o.metrics.SessionsCreated.Inc()
	}
}

func (o *observer) incSessionDeleted() {
	if o.metrics != nil {
		o.metrics.SessionsDeleted.Inc()
	}
}

func (o *observer) incAccountLinked() {
	if o.metrics != nil {
		o.metrics.AccountsLinked.Inc()
	}
}

func (o *observer) incTokenIssued() {
	if o.metrics != nil {
		o.metrics.TokensIssued.Inc()
	}
}

func (o *observer) incTokenConsumed(outcome string) {
	if o.metrics != nil {
		o.metrics.TokensConsumed.WithLabelValues(outcome).Inc()
	}
}

func (o *observer) incPasswordReset() {
	if o.metrics != nil {
		o.metrics.PasswordResets.Inc()
	}
}

func (o *observer) incMail(outcome string) {
	if o.metrics != nil {
		o.metrics.MailsSent.WithLabelValues(outcome).Inc()
	}
}
