package audit

import (
	"context"
	"log/slog"
	"time"

	"warden/pkg/requestcontext"
)

// Publisher records audit events in its store and mirrors them to the log.
// Emit is synchronous so an event emitted inside a transaction shares its fate.
type Publisher struct {
	store  Store
	logger *slog.Logger
}

// PublisherOption configures the Publisher.
type PublisherOption func(*Publisher)

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Emit fills the timestamp, request id and actor from ctx when missing.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx).UTC().Truncate(time.Microsecond)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ActorID == "" {
		if c := requestcontext.CallerFrom(ctx); c != nil {
			event.ActorID = c.Name
		}
	}
	p.logger.InfoContext(ctx, event.Action,
		"log_type", "audit",
		"user_id", event.UserID.String(),
		"decision", event.Decision,
		"reason", event.Reason,
		"request_id", event.RequestID,
		"actor_id", event.ActorID,
	)
	return p.store.Append(ctx, event)
}
