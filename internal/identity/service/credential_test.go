package service

import (
	"context"
	"errors"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/mock/gomock"

	"warden/internal/audit"
	"warden/internal/identity/models"
	id "warden/pkg/domain"
	dErrors "warden/pkg/domain-errors"
)

func (s *ServiceSuite) TestLogin() {
	s.Run("by login or email returns the stored api key", func() {
		s.SetupTest()
		registered := s.register("ada@example.com", "secret", "Ada Lovelace")

		for _, login := range []string{"ada[at]example.com", "ada@example.com"} {
			out, err := s.service.Login(callerCtx(models.RightUserRead), &models.LoginRequest{
				Login:    login,
				Password: "secret",
			})
			s.Require().NoError(err, login)
			s.Equal(registered.ID, out.ID)
			s.Equal(registered.APIKey, out.APIKey)
		}
		s.Equal(2.0, promtestutil.ToFloat64(s.metrics.Logins.WithLabelValues("ok")))
	})

	s.Run("resetApiKey issues a new key and retires the old one", func() {
		s.SetupTest()
		registered := s.register("ada@example.com", "secret", "Ada Lovelace")

		out, err := s.service.Login(callerCtx(models.RightUserRead), &models.LoginRequest{
			Login:       "ada@example.com",
			Password:    "secret",
			ResetAPIKey: true,
		})
		s.Require().NoError(err)
		s.NotEmpty(out.APIKey)
		s.NotEqual(registered.APIKey, out.APIKey)

		_, err = s.users.FindByAPIKeyDigest(context.Background(), s.tokens.Digest(registered.APIKey))
		s.Error(err)
		found, err := s.users.FindByAPIKeyDigest(context.Background(), s.tokens.Digest(out.APIKey))
		s.Require().NoError(err)
		s.EqualValues(out.ID, found.ID)
	})

	s.Run("failures do not reveal which half was wrong", func() {
		s.SetupTest()
		registered := s.register("ada@example.com", "secret", "Ada Lovelace")

		cases := []*models.LoginRequest{
			{Login: "ada@example.com", Password: "wrong"},
			{Login: "nobody@example.com", Password: "secret"},
			{Login: "ada@example.com", Password: "secret", Entity: 99},
		}
		for _, req := range cases {
			out, err := s.service.Login(callerCtx(models.RightUserRead), req)
			s.Nil(out)
			s.True(dErrors.HasCode(err, dErrors.CodeLoginFailed))
			s.Equal("login failed", err.Error())
		}

		rows, err := s.auditStore.ListByUser(context.Background(), id.UserID(registered.ID))
		s.Require().NoError(err)
		var failed int
		for _, row := range rows {
			if row.Action == string(audit.EventLoginFailed) {
				failed++
			}
		}
		s.Equal(2, failed)
	})

	s.Run("requires user.read", func() {
		s.SetupTest()
		_, err := s.service.Login(callerCtx(), &models.LoginRequest{Login: "a", Password: "b"})
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})

	s.Run("blank login is a missing parameter", func() {
		s.SetupTest()
		_, err := s.service.Login(callerCtx(models.RightUserRead), &models.LoginRequest{Login: "  ", Password: "b"})
		s.True(dErrors.HasCode(err, dErrors.CodeMissingParameter))
	})
}

func (s *ServiceSuite) TestResetPassword() {
	s.Run("non-admin caller is denied and nothing changes", func() {
		s.SetupTest()
		s.register("ada@example.com", "secret", "Ada Lovelace")

		_, err := s.service.ResetPassword(callerCtx(models.RightUserWrite, models.RightUserRead), &models.ResetPasswordRequest{
			Login:    "ada[at]example.com",
			Password: "changed",
		})
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))

		stored, err := s.users.FindByLogin(context.Background(), "ada[at]example.com")
		s.Require().NoError(err)
		s.NoError(s.hasher.Compare(stored.PasswordHash, "secret"))
	})

	s.Run("unknown login", func() {
		s.SetupTest()
		_, err := s.service.ResetPassword(adminCtx(), &models.ResetPasswordRequest{Login: "ghost"})
		s.True(dErrors.HasCode(err, dErrors.CodeUserNotFound))
	})

	s.Run("changes the password without notification when no sender is configured", func() {
		s.SetupTest()
		s.register("ada@example.com", "secret", "Ada Lovelace")

		out, err := s.service.ResetPassword(adminCtx(), &models.ResetPasswordRequest{
			Login:       "ada[at]example.com",
			Password:    "changed",
			ChangeLater: true,
		})
		s.Require().NoError(err)
		s.Equal("Ada Lovelace", out.User.Name)
		s.Empty(out.User.APIKey)
		s.False(out.Notification.Attempted)

		stored, err := s.users.FindByLogin(context.Background(), "ada[at]example.com")
		s.Require().NoError(err)
		s.NoError(s.hasher.Compare(stored.PasswordHash, "changed"))
		s.True(stored.MustChangePassword)
	})

	s.Run("too short a password is a change password failure", func() {
		s.SetupTest()
		s.minPassword = 6
		s.build()
		s.register("ada@example.com", "secret", "Ada Lovelace")

		_, err := s.service.ResetPassword(adminCtx(), &models.ResetPasswordRequest{
			Login:    "ada[at]example.com",
			Password: "abc",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeChangePassword))
	})

	s.Run("mails the new password from the configured sender", func() {
		s.SetupTest()
		sender := s.register("admin@example.com", "adminpw", "Site Admin")
		s.cfg.ResetSenderUserID = id.UserID(sender.ID)
		s.build()
		s.register("ada@example.com", "secret", "Ada Lovelace")

		s.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, msg *models.Mail) error {
				s.Equal("admin@example.com", msg.From)
				s.Equal([]string{"ada@example.com"}, msg.To)
				s.Contains(msg.Body, "changed")
				return nil
			})

		out, err := s.service.ResetPassword(adminCtx(), &models.ResetPasswordRequest{
			Login:    "ada[at]example.com",
			Password: "changed",
		})
		s.Require().NoError(err)
		s.Equal(models.NotificationOutcome{Attempted: true, Sent: true}, out.Notification)
	})

	s.Run("mail failure is reported, not returned", func() {
		s.SetupTest()
		sender := s.register("admin@example.com", "adminpw", "Site Admin")
		s.cfg.ResetSenderUserID = id.UserID(sender.ID)
		s.build()
		s.register("ada@example.com", "secret", "Ada Lovelace")

		s.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))

		out, err := s.service.ResetPassword(adminCtx(), &models.ResetPasswordRequest{
			Login:    "ada[at]example.com",
			Password: "changed",
		})
		s.Require().NoError(err)
		s.True(out.Notification.Attempted)
		s.False(out.Notification.Sent)
		s.Equal("mail delivery failed", out.Notification.Error)
	})

	s.Run("missing sender rolls the change back", func() {
		s.SetupTest()
		s.cfg.ResetSenderUserID = 999
		s.build()
		s.register("ada@example.com", "secret", "Ada Lovelace")

		_, err := s.service.ResetPassword(adminCtx(), &models.ResetPasswordRequest{
			Login:    "ada[at]example.com",
			Password: "changed",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeSenderNotFound))

		stored, err := s.users.FindByLogin(context.Background(), "ada[at]example.com")
		s.Require().NoError(err)
		s.NoError(s.hasher.Compare(stored.PasswordHash, "secret"))
	})

	s.Run("empty password is replaced by a generated one", func() {
		s.SetupTest()
		s.register("ada@example.com", "secret", "Ada Lovelace")

		_, err := s.service.ResetPassword(adminCtx(), &models.ResetPasswordRequest{Login: "ada[at]example.com"})
		s.Require().NoError(err)

		_, err = s.service.Login(callerCtx(models.RightUserRead), &models.LoginRequest{
			Login: "ada@example.com", Password: "secret",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeLoginFailed))
	})
}

func (s *ServiceSuite) TestReissueAPIKey() {
	s.Run("users may reissue their own key", func() {
		s.SetupTest()
		registered := s.register("ada@example.com", "secret", "Ada Lovelace")

		out, err := s.service.ReissueAPIKey(userCtx(id.UserID(registered.ID)), id.UserID(registered.ID))
		s.Require().NoError(err)
		s.NotEmpty(out.APIKey)
		s.NotEqual(registered.APIKey, out.APIKey)
	})

	s.Run("other users are denied", func() {
		s.SetupTest()
		registered := s.register("ada@example.com", "secret", "Ada Lovelace")
		other := s.register("bob@example.com", "secret", "Bob Builder")

		_, err := s.service.ReissueAPIKey(userCtx(id.UserID(other.ID), models.RightUserWrite), id.UserID(registered.ID))
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})

	s.Run("admin reissue for an unknown user", func() {
		s.SetupTest()
		_, err := s.service.ReissueAPIKey(adminCtx(), 42)
		s.True(dErrors.HasCode(err, dErrors.CodeUserNotFound))
	})
}

func (s *ServiceSuite) TestAuthenticateAPIKey() {
	s.Run("resolves the owner with its granted rights", func() {
		s.SetupTest()
		registered := s.register("ada@example.com", "secret", "Ada Lovelace")

		c, err := s.service.AuthenticateAPIKey(context.Background(), registered.APIKey)
		s.Require().NoError(err)
		s.EqualValues(registered.ID, c.UserID)
		s.Equal("ada[at]example.com", c.Name)
		s.False(c.Admin)
		s.Equal(s.cfg.DefaultRights, c.Rights)
	})

	s.Run("unknown and empty keys are unauthorized", func() {
		s.SetupTest()
		for _, key := range []string{"", "not-a-key"} {
			c, err := s.service.AuthenticateAPIKey(context.Background(), key)
			s.Nil(c)
			s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized), key)
		}
	})

	s.Run("a reissued key retires the old one", func() {
		s.SetupTest()
		registered := s.register("ada@example.com", "secret", "Ada Lovelace")

		out, err := s.service.ReissueAPIKey(userCtx(id.UserID(registered.ID)), id.UserID(registered.ID))
		s.Require().NoError(err)

		_, err = s.service.AuthenticateAPIKey(context.Background(), registered.APIKey)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		c, err := s.service.AuthenticateAPIKey(context.Background(), out.APIKey)
		s.Require().NoError(err)
		s.EqualValues(registered.ID, c.UserID)
	})
}
