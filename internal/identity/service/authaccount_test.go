package service

import (
	"time"

	"warden/internal/identity/models"
	id "warden/pkg/domain"
	dErrors "warden/pkg/domain-errors"
	"warden/pkg/testutil"
)

var accountRights = []string{
	models.RightAuthAccountRead, models.RightAuthAccountWrite, models.RightAuthAccountDelete, models.RightUserRead,
}

func (s *ServiceSuite) TestLinkAccount() {
	s.Run("round trip returns the input minus internal fields", func() {
		s.SetupTest()
		registered := s.register("ada@example.com", "secret", "Ada Lovelace")
		ctx := callerCtx(accountRights...)
		expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

		linked, err := s.service.LinkAccount(ctx, &models.LinkAccountRequest{
			UserID:            id.UserID(registered.ID),
			Provider:          " GitHub ",
			ProviderAccountID: "12345",
			Type:              id.AccountTypeOAuth,
			Scope:             "read:user",
			ExpiresAt:         &expires,
		})
		s.Require().NoError(err)

		fetched, err := s.service.GetAccount(ctx, "github", "12345")
		s.Require().NoError(err)
		s.Equal(linked, fetched)
		s.Equal(&models.AuthAccountProjection{
			UserID:            registered.ID,
			Provider:          "github",
			ProviderAccountID: "12345",
			Type:              "oauth",
			Scope:             "read:user",
			ExpiresAt:         &expires,
		}, fetched)
	})

	s.Run("second link of the same identity", func() {
		s.SetupTest()
		ada := s.register("ada@example.com", "secret", "Ada Lovelace")
		bob := s.register("bob@example.com", "secret", "Bob Builder")
		ctx := callerCtx(accountRights...)

		_, err := s.service.LinkAccount(ctx, &models.LinkAccountRequest{UserID: id.UserID(ada.ID), Provider: "google", ProviderAccountID: "g-1"})
		s.Require().NoError(err)
		_, err = s.service.LinkAccount(ctx, &models.LinkAccountRequest{UserID: id.UserID(bob.ID), Provider: "google", ProviderAccountID: "g-1"})
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyLinked))

		user, err := s.service.GetUserByProviderAccount(ctx, "google", "g-1")
		s.Require().NoError(err)
		s.Equal(ada.ID, user.ID)
	})

	s.Run("concurrent links produce exactly one winner", func() {
		s.SetupTest()
		registered := s.register("ada@example.com", "secret", "Ada Lovelace")
		ctx := callerCtx(accountRights...)

		successes, errs := testutil.RunConcurrentCollect(16, func(int) error {
			_, err := s.service.LinkAccount(ctx, &models.LinkAccountRequest{
				UserID: id.UserID(registered.ID), Provider: "github", ProviderAccountID: "race",
			})
			return err
		})
		s.Equal(int32(1), successes)
		s.Len(errs, 15)
		for _, err := range errs {
			s.True(dErrors.HasCode(err, dErrors.CodeAlreadyLinked), "got %v", err)
		}
	})

	s.Run("unknown user is rejected and nothing is linked", func() {
		s.SetupTest()
		ctx := callerCtx(accountRights...)

		_, err := s.service.LinkAccount(ctx, &models.LinkAccountRequest{
			UserID: 999, Provider: "github", ProviderAccountID: "ghost",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeUserNotFound), "got %v", err)

		_, err = s.service.GetAccount(ctx, "github", "ghost")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound), "got %v", err)
	})

	s.Run("user lookup failure is a persistence error", func() {
		s.SetupTest()
		registered := s.register("ada@example.com", "secret", "Ada Lovelace")
		s.users.failOn("FindByID", errInjected)

		_, err := s.service.LinkAccount(callerCtx(accountRights...), &models.LinkAccountRequest{
			UserID: id.UserID(registered.ID), Provider: "github", ProviderAccountID: "1",
		})
		s.True(dErrors.HasCode(err, dErrors.CodePersistence), "got %v", err)
	})

	s.Run("mandatory fields", func() {
		s.SetupTest()
		_, err := s.service.LinkAccount(callerCtx(accountRights...), &models.LinkAccountRequest{UserID: 1, ProviderAccountID: "x"})
		s.True(dErrors.HasCode(err, dErrors.CodeMissingParameter))
		s.Contains(err.Error(), "provider")
	})

	s.Run("unsupported account type", func() {
		s.SetupTest()
		_, err := s.service.LinkAccount(callerCtx(accountRights...), &models.LinkAccountRequest{
			UserID: 1, Provider: "github", ProviderAccountID: "x", Type: "carrier-pigeon",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("requires authaccount.write", func() {
		s.SetupTest()
		_, err := s.service.LinkAccount(callerCtx(models.RightAuthAccountRead), &models.LinkAccountRequest{
			UserID: 1, Provider: "github", ProviderAccountID: "x",
		})
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})
}

func (s *ServiceSuite) TestUnlinkAccount() {
	s.Run("unlinked identity is no longer resolvable", func() {
		s.SetupTest()
		registered := s.register("ada@example.com", "secret", "Ada Lovelace")
		ctx := callerCtx(accountRights...)
		_, err := s.service.LinkAccount(ctx, &models.LinkAccountRequest{UserID: id.UserID(registered.ID), Provider: "github", ProviderAccountID: "1"})
		s.Require().NoError(err)

		s.Require().NoError(s.service.UnlinkAccount(ctx, "github", "1"))

		_, err = s.service.GetAccount(ctx, "github", "1")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		err = s.service.UnlinkAccount(ctx, "github", "1")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("blank key parts are missing parameters", func() {
		s.SetupTest()
		err := s.service.UnlinkAccount(callerCtx(accountRights...), "github", " ")
		s.True(dErrors.HasCode(err, dErrors.CodeMissingParameter))
	})
}
