package service

import (
	"context"
	"time"

	"warden/internal/identity/device"
	"warden/internal/identity/models"
	id "warden/pkg/domain"
	dErrors "warden/pkg/domain-errors"
	"warden/pkg/requestcontext"
)

var sessionRights = []string{
	models.RightSessionRead, models.RightSessionWrite, models.RightSessionDelete, models.RightUserRead,
}

func (s *ServiceSuite) TestSessionLifecycle() {
	s.Run("create, read, update and delete by token", func() {
		s.SetupTest()
		registered := s.register("ada@example.com", "secret", "Ada Lovelace")
		ctx := callerCtx(sessionRights...)
		expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

		created, err := s.service.CreateSession(ctx, &models.CreateSessionRequest{
			SessionToken: "tok-1",
			UserID:       id.UserID(registered.ID),
			Expires:      &expires,
			Data:         map[string]any{"theme": "dark"},
		})
		s.Require().NoError(err)
		s.Equal("tok-1", created.SessionToken)
		s.Equal(registered.ID, created.UserID)

		got, err := s.service.GetSession(ctx, "tok-1")
		s.Require().NoError(err)
		s.Equal("dark", got.Data["theme"])
		s.Require().NotNil(got.Expires)
		s.True(expires.Equal(*got.Expires))

		later := expires.Add(24 * time.Hour)
		updated, err := s.service.UpdateSession(ctx, "tok-1", &models.UpdateSessionRequest{Expires: &later})
		s.Require().NoError(err)
		s.True(later.Equal(*updated.Expires))
		s.Equal("dark", updated.Data["theme"])

		s.Require().NoError(s.service.DeleteSession(ctx, "tok-1"))
		_, err = s.service.GetSession(ctx, "tok-1")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("missing token is generated", func() {
		s.SetupTest()
		registered := s.register("ada@example.com", "secret", "Ada Lovelace")

		created, err := s.service.CreateSession(callerCtx(sessionRights...), &models.CreateSessionRequest{
			UserID: id.UserID(registered.ID),
		})
		s.Require().NoError(err)
		s.NotEmpty(created.SessionToken)

		_, err = s.sessions.FindByTokenDigest(context.Background(), s.tokens.Digest(created.SessionToken))
		s.NoError(err)
	})

	s.Run("records the device from the user agent", func() {
		s.SetupTest()
		registered := s.register("ada@example.com", "secret", "Ada Lovelace")
		ctx := requestcontext.WithClientMetadata(callerCtx(sessionRights...), "10.0.0.1",
			"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0")

		created, err := s.service.CreateSession(ctx, &models.CreateSessionRequest{UserID: id.UserID(registered.ID)})
		s.Require().NoError(err)
		s.Contains(created.Data[device.DataKeyName], "Firefox")
		s.NotEmpty(created.Data[device.DataKeyFingerprint])
	})

	s.Run("unknown user", func() {
		s.SetupTest()
		_, err := s.service.CreateSession(callerCtx(sessionRights...), &models.CreateSessionRequest{UserID: 42})
		s.True(dErrors.HasCode(err, dErrors.CodeUserNotFound))
	})

	s.Run("user id is mandatory", func() {
		s.SetupTest()
		_, err := s.service.CreateSession(callerCtx(sessionRights...), &models.CreateSessionRequest{SessionToken: "t"})
		s.True(dErrors.HasCode(err, dErrors.CodeMissingParameter))
	})

	s.Run("duplicate token", func() {
		s.SetupTest()
		registered := s.register("ada@example.com", "secret", "Ada Lovelace")
		req := &models.CreateSessionRequest{SessionToken: "same", UserID: id.UserID(registered.ID)}

		_, err := s.service.CreateSession(callerCtx(sessionRights...), req)
		s.Require().NoError(err)
		_, err = s.service.CreateSession(callerCtx(sessionRights...), req)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyExists))
	})

	s.Run("deleting twice reports nothing to delete", func() {
		s.SetupTest()
		registered := s.register("ada@example.com", "secret", "Ada Lovelace")
		ctx := callerCtx(sessionRights...)
		_, err := s.service.CreateSession(ctx, &models.CreateSessionRequest{SessionToken: "bye", UserID: id.UserID(registered.ID)})
		s.Require().NoError(err)

		s.Require().NoError(s.service.DeleteSession(ctx, "bye"))
		err = s.service.DeleteSession(ctx, "bye")
		s.True(dErrors.HasCode(err, dErrors.CodeNothingToDelete))
	})

	s.Run("write requires session.write", func() {
		s.SetupTest()
		_, err := s.service.CreateSession(callerCtx(models.RightSessionRead), &models.CreateSessionRequest{UserID: 1})
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})
}

func (s *ServiceSuite) TestGetSessionAndUser() {
	s.Run("returns both halves", func() {
		s.SetupTest()
		registered := s.register("ada@example.com", "secret", "Ada Lovelace")
		ctx := callerCtx(sessionRights...)
		_, err := s.service.CreateSession(ctx, &models.CreateSessionRequest{SessionToken: "tok", UserID: id.UserID(registered.ID)})
		s.Require().NoError(err)

		out, err := s.service.GetSessionAndUser(ctx, "tok")
		s.Require().NoError(err)
		s.Equal("tok", out.Session.SessionToken)
		s.Equal(registered.ID, out.User.ID)
		s.Empty(out.User.APIKey)
	})

	s.Run("session without its user is an error, not half a result", func() {
		s.SetupTest()
		_, err := s.sessions.Create(context.Background(), &models.Session{
			TokenDigest: s.tokens.Digest("orphan"),
			UserID:      99,
		})
		s.Require().NoError(err)

		out, err := s.service.GetSessionAndUser(callerCtx(sessionRights...), "orphan")
		s.Nil(out)
		s.True(dErrors.HasCode(err, dErrors.CodeUserNotFound))
	})

	s.Run("unknown token", func() {
		s.SetupTest()
		_, err := s.service.GetSessionAndUser(callerCtx(sessionRights...), "missing")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("requires user.read as well", func() {
		s.SetupTest()
		_, err := s.service.GetSessionAndUser(callerCtx(models.RightSessionRead), "tok")
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})
}
