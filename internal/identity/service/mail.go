package service

import (
	"context"

	"warden/internal/audit"
	"warden/internal/identity/models"
	dErrors "warden/pkg/domain-errors"
	"warden/pkg/requestcontext"
)

// Mail hands free-form messages to the mail collaborator.
type Mail struct {
	*observer
	cfg    Config
	mailer Mailer
}

// SendMail reports delivery as Sent; a mailer failure is not an error.
func (m *Mail) SendMail(ctx context.Context, req *models.SendMailRequest) (*models.SendMailResult, error) {
	if err := m.authorize(ctx, models.RightMailSend); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	err := m.mailer.Send(ctx, &models.Mail{
		From:    m.cfg.DefaultEmailFrom,
		To:      req.Recipients(),
		Subject: req.Subject,
		Body:    req.Message,
		IsHTML:  req.IsHTML,
	})
	if err != nil {
		m.incMail("error")
		m.logger.ErrorContext(ctx, "failed to send mail",
			"recipients", len(req.Recipients()),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return &models.SendMailResult{Sent: false}, nil
	}

	m.incMail("ok")
	caller := requestcontext.CallerFrom(ctx)
	m.logAudit(ctx, audit.EventMailSent, caller.UserID, "granted", "recipients", len(req.Recipients()))
	return &models.SendMailResult{Sent: true}, nil
}
