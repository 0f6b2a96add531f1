// Package events fans domain events out to subscribers synchronously.
//
// Subscribers run inside the caller's transaction. The first subscriber error
// stops dispatch and is returned, which lets a subscriber veto the operation.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	id "warden/pkg/domain"
)

// Name identifies an event type on the wire.
type Name string

const UserRegistered Name = "user.registered"

// Event is the envelope handed to every subscriber.
type Event struct {
	ID         string        `json:"id"`
	Name       Name          `json:"name"`
	OccurredAt time.Time     `json:"occurredAt"`
	UserID     id.UserID     `json:"userId"`
	Login      string        `json:"login"`
	Email      string        `json:"email"`
	CustomerID id.CustomerID `json:"customerId"`
	ContactID  id.ContactID  `json:"contactId"`
	Origin     string        `json:"origin,omitempty"`
	RequestID  string        `json:"requestId,omitempty"`
}

// Subscriber reacts to an event. Returning an error rejects it.
type Subscriber interface {
	Name() string
	Handle(ctx context.Context, e Event) error
}

// SubscriberFunc adapts a function into a Subscriber.
type SubscriberFunc struct {
	ID string
	Fn func(ctx context.Context, e Event) error
}

func (f SubscriberFunc) Name() string { return f.ID }

func (f SubscriberFunc) Handle(ctx context.Context, e Event) error { return f.Fn(ctx, e) }

// Dispatcher delivers events to subscribers in registration order.
type Dispatcher struct {
	subscribers []Subscriber
	logger      *slog.Logger
}

type Option func(*Dispatcher)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func WithSubscribers(subs ...Subscriber) Option {
	return func(d *Dispatcher) {
		d.subscribers = append(d.subscribers, subs...)
	}
}

func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Publish stops at the first subscriber error.
func (d *Dispatcher) Publish(ctx context.Context, e Event) error {
	for _, sub := range d.subscribers {
		if err := sub.Handle(ctx, e); err != nil {
			d.logger.WarnContext(ctx, "event rejected by subscriber",
				"event", string(e.Name),
				"event_id", e.ID,
				"subscriber", sub.Name(),
				"error", err,
				"request_id", e.RequestID,
			)
			return fmt.Errorf("subscriber %q rejected %s: %w", sub.Name(), e.Name, err)
		}
	}
	return nil
}
