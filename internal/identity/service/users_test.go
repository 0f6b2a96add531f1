package service

import (
	"errors"

	"warden/internal/identity/models"
	id "warden/pkg/domain"
	dErrors "warden/pkg/domain-errors"
)

func (s *ServiceSuite) TestUserLookups() {
	s.Run("by id and by email omit the api key", func() {
		s.SetupTest()
		registered := s.register("ada@example.com", "secret", "Ada Lovelace")
		ctx := callerCtx(models.RightUserRead)

		byID, err := s.service.GetUser(ctx, id.UserID(registered.ID))
		s.Require().NoError(err)
		s.Equal(registered.Email, byID.Email)
		s.Empty(byID.APIKey)

		byEmail, err := s.service.GetUserByEmail(ctx, "  ADA@example.com ")
		s.Require().NoError(err)
		s.Equal(registered.ID, byEmail.ID)
		s.Empty(byEmail.APIKey)
	})

	s.Run("unknown users", func() {
		s.SetupTest()
		ctx := callerCtx(models.RightUserRead)

		_, err := s.service.GetUser(ctx, 404)
		s.True(dErrors.HasCode(err, dErrors.CodeUserNotFound))

		_, err = s.service.GetUserByEmail(ctx, "nobody@example.com")
		s.True(dErrors.HasCode(err, dErrors.CodeUserNotFound))
	})

	s.Run("missing parameters", func() {
		s.SetupTest()
		ctx := callerCtx(models.RightUserRead)

		_, err := s.service.GetUser(ctx, 0)
		s.True(dErrors.HasCode(err, dErrors.CodeMissingParameter))

		_, err = s.service.GetUserByEmail(ctx, "   ")
		s.True(dErrors.HasCode(err, dErrors.CodeMissingParameter))
	})

	s.Run("requires user.read", func() {
		s.SetupTest()
		_, err := s.service.GetUser(callerCtx(models.RightSessionRead), 1)
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})

	s.Run("store failures are persistence errors", func() {
		s.SetupTest()
		registered := s.register("ada@example.com", "secret", "Ada Lovelace")
		s.users.failOn("FindByID", errors.New("connection refused"))

		_, err := s.service.GetUser(callerCtx(models.RightUserRead), id.UserID(registered.ID))
		s.True(dErrors.HasCode(err, dErrors.CodePersistence))
		s.NotContains(err.Error(), "connection refused")
	})
}
