// Package mail hands outbound messages to a delivery backend. Delivery itself
// happens elsewhere: the rabbit mailer enqueues a job for a mail worker.
package mail

import (
	"context"
	"log/slog"
	"strings"

	"warden/internal/identity/models"
	"warden/pkg/requestcontext"
)

// Job is the wire shape of a queued message.
type Job struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	IsHTML  bool     `json:"isHtml"`
}

func jobFrom(m *models.Mail) Job {
	return Job{From: m.From, To: m.To, Subject: m.Subject, Body: m.Body, IsHTML: m.IsHTML}
}

// LogMailer logs messages instead of sending them. It never logs the body.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg *models.Mail) error {
	m.logger.InfoContext(ctx, "mail accepted",
		"from", msg.From,
		"to", strings.Join(msg.To, ","),
		"subject", msg.Subject,
		"html", msg.IsHTML,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}
