package service

import (
	"context"
	"errors"

	"go.uber.org/mock/gomock"

	"warden/internal/identity/models"
	dErrors "warden/pkg/domain-errors"
)

func (s *ServiceSuite) TestSendMail() {
	s.Run("hands the message to the mailer", func() {
		s.SetupTest()
		s.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, msg *models.Mail) error {
				s.Equal("noreply@example.com", msg.From)
				s.Equal([]string{"a@example.com", "b@example.com"}, msg.To)
				s.Equal("Hello", msg.Subject)
				s.True(msg.IsHTML)
				return nil
			})

		out, err := s.service.SendMail(callerCtx(models.RightMailSend), &models.SendMailRequest{
			Subject: "Hello",
			To:      "a@example.com, b@example.com",
			Message: "<p>hi</p>",
			IsHTML:  true,
		})
		s.Require().NoError(err)
		s.True(out.Sent)
	})

	s.Run("mailer failure is reported as not sent", func() {
		s.SetupTest()
		s.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("broker unavailable"))

		out, err := s.service.SendMail(callerCtx(models.RightMailSend), &models.SendMailRequest{
			Subject: "Hello", To: "a@example.com", Message: "hi",
		})
		s.Require().NoError(err)
		s.False(out.Sent)
	})

	s.Run("invalid recipient", func() {
		s.SetupTest()
		_, err := s.service.SendMail(callerCtx(models.RightMailSend), &models.SendMailRequest{
			Subject: "Hello", To: "not-an-address", Message: "hi",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("requires mail.send", func() {
		s.SetupTest()
		_, err := s.service.SendMail(callerCtx(models.RightUserRead), &models.SendMailRequest{
			Subject: "Hello", To: "a@example.com", Message: "hi",
		})
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})
}

func (s *ServiceSuite) TestNewRequiresDependencies() {
	_, err := New(Deps{}, Config{})
	s.Error(err)
}
