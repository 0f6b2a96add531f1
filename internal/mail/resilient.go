package mail

import (
	"context"
	"errors"
	"log/slog"

	"warden/internal/identity/models"
	"warden/pkg/platform/circuit"
)

// ErrUnavailable is returned without contacting the backend while the circuit is open.
var ErrUnavailable = errors.New("mail backend unavailable")

// Sender is the delivery backend a ResilientMailer guards.
type Sender interface {
	Send(ctx context.Context, msg *models.Mail) error
}

// ResilientMailer stops hammering a failing backend. Once the breaker opens,
// sends fail fast except for one probe per cooldown.
type ResilientMailer struct {
	delegate Sender
	cb       *circuit.Breaker
	logger   *slog.Logger
}

func NewResilientMailer(delegate Sender, cb *circuit.Breaker, logger *slog.Logger) *ResilientMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResilientMailer{delegate: delegate, cb: cb, logger: logger}
}

func (m *ResilientMailer) Send(ctx context.Context, msg *models.Mail) error {
	if !m.cb.Allow() {
		return ErrUnavailable
	}
	if err := m.delegate.Send(ctx, msg); err != nil {
		if change := m.cb.RecordFailure(); change.Opened {
			m.logger.ErrorContext(ctx, "circuit breaker opened",
				"circuit", m.cb.Name(),
				"error", err,
			)
		}
		return err
	}
	if change := m.cb.RecordSuccess(); change.Closed {
		m.logger.InfoContext(ctx, "circuit breaker closed", "circuit", m.cb.Name())
	}
	return nil
}
