package service

import (
	"time"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"

	"warden/internal/identity/models"
	dErrors "warden/pkg/domain-errors"
	"warden/pkg/testutil"
)

var tokenRights = []string{models.RightVerificationTokenWrite, models.RightVerificationTokenDelete}

func (s *ServiceSuite) TestVerificationTokens() {
	s.Run("consumed twice: payload first, not found second", func() {
		s.SetupTest()
		ctx := callerCtx(tokenRights...)
		_, err := s.service.IssueVerificationToken(ctx, &models.IssueVerificationTokenRequest{
			Identifier: "email:x@y.com",
			Token:      "abc",
			Purpose:    "email_verification",
			Data:       map[string]any{"redirect": "/welcome"},
		})
		s.Require().NoError(err)

		first, err := s.service.ConsumeVerificationToken(ctx, &models.ConsumeVerificationTokenRequest{Identifier: "email:x@y.com", Token: "abc"})
		s.Require().NoError(err)
		s.Equal("abc", first.Token)
		s.Equal("email_verification", first.Purpose)
		s.Equal("/welcome", first.Data["redirect"])

		second, err := s.service.ConsumeVerificationToken(ctx, &models.ConsumeVerificationTokenRequest{Identifier: "email:x@y.com", Token: "abc"})
		s.Nil(second)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Zero(s.verification.Len())
	})

	s.Run("generated token round trips", func() {
		s.SetupTest()
		ctx := callerCtx(tokenRights...)
		issued, err := s.service.IssueVerificationToken(ctx, &models.IssueVerificationTokenRequest{Identifier: "reset:ada"})
		s.Require().NoError(err)
		s.NotEmpty(issued.Token)

		_, err = s.service.ConsumeVerificationToken(ctx, &models.ConsumeVerificationTokenRequest{Identifier: "reset:ada", Token: issued.Token})
		s.NoError(err)
	})

	s.Run("token bound to another identifier does not match", func() {
		s.SetupTest()
		ctx := callerCtx(tokenRights...)
		_, err := s.service.IssueVerificationToken(ctx, &models.IssueVerificationTokenRequest{Identifier: "a", Token: "t"})
		s.Require().NoError(err)

		_, err = s.service.ConsumeVerificationToken(ctx, &models.ConsumeVerificationTokenRequest{Identifier: "b", Token: "t"})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal(1, s.verification.Len())
	})

	s.Run("expired token is removed and reported expired", func() {
		s.SetupTest()
		ctx := callerCtx(tokenRights...)
		past := time.Now().Add(-time.Minute)
		_, err := s.service.IssueVerificationToken(ctx, &models.IssueVerificationTokenRequest{Identifier: "old", Token: "t", Expires: &past})
		s.Require().NoError(err)

		_, err = s.service.ConsumeVerificationToken(ctx, &models.ConsumeVerificationTokenRequest{Identifier: "old", Token: "t"})
		s.True(dErrors.HasCode(err, dErrors.CodeExpired))
		s.Zero(s.verification.Len())
		s.Equal(1.0, promtestutil.ToFloat64(s.metrics.TokensConsumed.WithLabelValues("expired")))
	})

	s.Run("concurrent consumption has exactly one winner", func() {
		s.SetupTest()
		ctx := callerCtx(tokenRights...)
		_, err := s.service.IssueVerificationToken(ctx, &models.IssueVerificationTokenRequest{Identifier: "race", Token: "once"})
		s.Require().NoError(err)

		successes, errs := testutil.RunConcurrentCollect(16, func(int) error {
			_, err := s.service.ConsumeVerificationToken(ctx, &models.ConsumeVerificationTokenRequest{Identifier: "race", Token: "once"})
			return err
		})
		s.Equal(int32(1), successes)
		s.Len(errs, 15)
		for _, err := range errs {
			s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		}
	})

	s.Run("issuing the same pair twice", func() {
		s.SetupTest()
		ctx := callerCtx(tokenRights...)
		req := &models.IssueVerificationTokenRequest{Identifier: "dup", Token: "t"}
		_, err := s.service.IssueVerificationToken(ctx, req)
		s.Require().NoError(err)
		_, err = s.service.IssueVerificationToken(ctx, req)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyExists))
	})

	s.Run("identifier is mandatory", func() {
		s.SetupTest()
		_, err := s.service.IssueVerificationToken(callerCtx(tokenRights...), &models.IssueVerificationTokenRequest{Token: "t"})
		s.True(dErrors.HasCode(err, dErrors.CodeMissingParameter))
	})

	s.Run("consume requires verificationtoken.delete", func() {
		s.SetupTest()
		_, err := s.service.ConsumeVerificationToken(callerCtx(models.RightVerificationTokenWrite),
			&models.ConsumeVerificationTokenRequest{Identifier: "a", Token: "t"})
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})
}
