package service

import (
	"context"
	"errors"
	"fmt"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"

	"warden/internal/audit"
	"warden/internal/identity/models"
	dErrors "warden/pkg/domain-errors"
	"warden/pkg/platform/sentinel"
)

func (s *ServiceSuite) TestRegister() {
	s.Run("splits the display name and derives the login", func() {
		s.SetupTest()
		out := s.register("a.b@example.com", "x", "Ada Lovelace")

		s.Equal("Ada Lovelace", out.Name)
		s.Equal("a.b@example.com", out.Email)
		s.NotEmpty(out.APIKey)
		s.Equal(0, out.Admin)
		s.Positive(out.ID)

		stored, err := s.users.FindByEmail(context.Background(), "a.b@example.com")
		s.Require().NoError(err)
		s.Equal("a.b[at]example.com", stored.Login)
		s.Equal("Ada", stored.FirstName)
		s.Equal("Lovelace", stored.LastName)
		s.Equal(s.cfg.DefaultEntity, stored.Entity)
		s.Contains(stored.Groups, baseGroup)
		s.Equal("self-signup", stored.Attributes[OriginAttribute])
		s.Equal([]string{models.RightUserRead}, stored.Rights)
		s.NoError(s.hasher.Compare(stored.PasswordHash, "x"))
	})

	s.Run("links the user to an updated primary contact", func() {
		s.SetupTest()
		s.register("a.b@example.com", "x", "Ada Lovelace")

		stored, err := s.users.FindByEmail(context.Background(), "a.b@example.com")
		s.Require().NoError(err)
		s.Require().Positive(int64(stored.CustomerID))
		s.Require().Positive(int64(stored.ContactID))

		customer, err := s.directory.FindCustomer(context.Background(), stored.CustomerID)
		s.Require().NoError(err)
		s.Equal("Ada Lovelace", customer.Name)

		contact, err := s.directory.FindContact(context.Background(), stored.ContactID)
		s.Require().NoError(err)
		s.Equal(stored.CustomerID, contact.CustomerID)
		s.Equal("Ada", contact.FirstName)
		s.Equal("Lovelace", contact.LastName)
		s.Equal("a.b@example.com", contact.Email)
	})

	s.Run("single token name becomes the last name", func() {
		s.SetupTest()
		out := s.register("solo@example.com", "pw", "Solo")

		s.Equal("Solo", out.Name)
		stored, err := s.users.FindByEmail(context.Background(), "solo@example.com")
		s.Require().NoError(err)
		s.Empty(stored.FirstName)
		s.Equal("Solo", stored.LastName)
		s.Equal("solo[at]example.com", stored.Login)
	})

	s.Run("api key is stored sealed and resolvable by digest", func() {
		s.SetupTest()
		out := s.register("key@example.com", "pw", "Key Holder")

		stored, err := s.users.FindByAPIKeyDigest(context.Background(), s.tokens.Digest(out.APIKey))
		s.Require().NoError(err)
		s.Equal(out.ID, int64(stored.ID))
		s.NotContains(string(stored.APIKeySealed), out.APIKey)
		opened, err := s.tokens.Open(stored.APIKeySealed)
		s.Require().NoError(err)
		s.Equal(out.APIKey, opened)
	})

	s.Run("maps profile fields onto customer and contact", func() {
		s.SetupTest()
		_, err := s.service.Register(callerCtx(models.RightUserWrite), &models.RegisterRequest{
			Email:    "pro@example.com",
			Password: "pw",
			Name:     "Pro User",
			Profile:  map[string]string{"town": "Paris", "siren": "123456789", "phone_mobile": "0600000000"},
		})
		s.Require().NoError(err)

		stored, err := s.users.FindByEmail(context.Background(), "pro@example.com")
		s.Require().NoError(err)
		customer, err := s.directory.FindCustomer(context.Background(), stored.CustomerID)
		s.Require().NoError(err)
		s.Equal("Paris", customer.Fields["town"])
		s.Equal("123456789", customer.Fields["idprof1"])
		s.NotContains(customer.Fields, "phone_mobile")

		contact, err := s.directory.FindContact(context.Background(), stored.ContactID)
		s.Require().NoError(err)
		s.Equal("Paris", contact.Fields["town"])
		s.Equal("0600000000", contact.Fields["phone_mobile"])
		s.NotContains(contact.Fields, "idprof1")
	})

	s.Run("publishes user registered and records it in the audit trail", func() {
		s.SetupTest()
		out := s.register("ev@example.com", "pw", "Event Source")

		published := s.publishedEvents()
		s.Require().Len(published, 1)
		s.EqualValues(out.ID, published[0].UserID)
		s.Equal("self-signup", published[0].Origin)
		s.NotEmpty(published[0].ID)

		rows, err := s.auditStore.ListByUser(context.Background(), published[0].UserID)
		s.Require().NoError(err)
		s.Require().NotEmpty(rows)
		s.Equal(string(audit.EventUserRegistered), rows[0].Action)
		s.Equal(1.0, promtestutil.ToFloat64(s.metrics.Registrations.WithLabelValues("ok")))
	})

	s.Run("group assignment is skipped without a base group", func() {
		s.SetupTest()
		s.cfg.BaseUserGroup = 0
		s.build()
		s.register("nogroup@example.com", "pw", "No Group")

		stored, err := s.users.FindByEmail(context.Background(), "nogroup@example.com")
		s.Require().NoError(err)
		s.Empty(stored.Groups)
	})
}

func (s *ServiceSuite) TestRegisterRejections() {
	s.Run("caller without user.write is denied", func() {
		s.SetupTest()
		_, err := s.service.Register(callerCtx(models.RightUserRead), &models.RegisterRequest{
			Email: "x@example.com", Password: "pw", Name: "X",
		})
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
		s.assertNothingProvisioned()
	})

	s.Run("anonymous caller is unauthorized", func() {
		s.SetupTest()
		_, err := s.service.Register(context.Background(), &models.RegisterRequest{
			Email: "x@example.com", Password: "pw", Name: "X",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("missing password fails before any write", func() {
		s.SetupTest()
		_, err := s.service.Register(callerCtx(models.RightUserWrite), &models.RegisterRequest{
			Email: "x@example.com", Name: "X",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeMissingParameter))
		s.Contains(err.Error(), "password")
		s.assertNothingProvisioned()
	})

	s.Run("unknown profile field is rejected", func() {
		s.SetupTest()
		_, err := s.service.Register(callerCtx(models.RightUserWrite), &models.RegisterRequest{
			Email: "x@example.com", Password: "pw", Name: "X",
			Profile: map[string]string{"api_key": "override"},
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.assertNothingProvisioned()
	})

	s.Run("password below the minimum length", func() {
		s.SetupTest()
		s.minPassword = 8
		s.build()
		_, err := s.service.Register(callerCtx(models.RightUserWrite), &models.RegisterRequest{
			Email: "short@example.com", Password: "short", Name: "Short Pass",
		})
		s.True(dErrors.HasCode(err, dErrors.CodePasswordTooShort))
		s.assertNothingProvisioned()
	})

	s.Run("second signup with the same email collides", func() {
		s.SetupTest()
		s.register("dup@example.com", "pw", "First")

		_, err := s.service.Register(callerCtx(models.RightUserWrite), &models.RegisterRequest{
			Email: "dup@example.com", Password: "pw", Name: "Second",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyExists))

		customers, contacts := s.directory.Counts()
		s.Equal(1, customers)
		s.Equal(1, contacts)
		s.Equal(1, s.users.Count())
	})
}

// Every step failure must leave no customer, contact, user or audit row behind.
func (s *ServiceSuite) TestRegisterAtomicity() {
	tests := []struct {
		step   string
		inject func()
		code   dErrors.Code
	}{
		{"create_customer", func() { s.directory.failOn("CreateCustomer", errInjected) }, dErrors.CodePersistence},
		{"create_primary_contact", func() { s.directory.failOn("CreatePrimaryContact", errInjected) }, dErrors.CodePersistence},
		{"update_contact", func() { s.directory.failOn("UpdateContact", errInjected) }, dErrors.CodePersistence},
		{"update_contact", func() { s.directory.failOn("FindContact", errInjected) }, dErrors.CodePersistence},
		{"create_user", func() { s.users.failOn("Create", errInjected) }, dErrors.CodePersistence},
		{"create_user", func() {
			s.users.failOn("Create", fmt.Errorf("grant: %w", sentinel.ErrRightsProvisioning))
		}, dErrors.CodeRightsProvisioning},
		{"create_user", func() {
			s.users.failOn("Create", fmt.Errorf("user already exists: %w", sentinel.ErrAlreadyUsed))
		}, dErrors.CodeAlreadyExists},
		{"issue_api_key", func() { s.users.failOn("SetAPIKey", errInjected) }, dErrors.CodePersistence},
		{"add_to_group", func() { s.users.failOn("AddToGroup", errInjected) }, dErrors.CodePersistence},
		{"set_origin", func() { s.users.failOn("SetAttribute", errInjected) }, dErrors.CodePersistence},
		{"reload_user", func() { s.users.failOn("FindByID", errInjected) }, dErrors.CodePersistence},
		{"publish_event", func() { s.rejectEvents = errors.New("downstream sync unavailable") }, dErrors.CodeSubscriberRejected},
	}

	for _, tt := range tests {
		s.Run(tt.step+"/"+string(tt.code), func() {
			s.SetupTest()
			tt.inject()

			out, err := s.service.Register(callerCtx(models.RightUserWrite), &models.RegisterRequest{
				Email: "atomic@example.com", Password: "pw", Name: "Atomic User",
			})

			s.Nil(out)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, tt.code), "got %v", err)
			s.Contains(err.Error(), fmt.Sprintf("registration step %q", tt.step))
			s.assertNothingProvisioned()
			s.Equal(1.0, promtestutil.ToFloat64(s.metrics.Registrations.WithLabelValues(string(tt.code))))
		})
	}
}

// A rolled back registration must not revert writes other requests made meanwhile.
func (s *ServiceSuite) TestRegisterRollbackKeepsConcurrentWrites() {
	existing := s.register("ada@example.com", "pw", "Ada Lovelace")

	var loginKey string
	var loginErr error
	s.duringPublish = func() {
		done := make(chan struct{})
		go func() {
			defer close(done)
			out, err := s.service.Login(callerCtx(models.RightUserRead), &models.LoginRequest{
				Login: "ada@example.com", Password: "pw", ResetAPIKey: true,
			})
			loginErr = err
			if out != nil {
				loginKey = out.APIKey
			}
		}()
		<-done
	}
	s.rejectEvents = errors.New("downstream sync unavailable")

	_, err := s.service.Register(callerCtx(models.RightUserWrite), &models.RegisterRequest{
		Email: "grace@example.com", Password: "pw", Name: "Grace Hopper",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeSubscriberRejected))

	s.Require().NoError(loginErr)
	s.Require().NotEmpty(loginKey)
	s.NotEqual(existing.APIKey, loginKey)

	caller, err := s.service.AuthenticateAPIKey(context.Background(), loginKey)
	s.Require().NoError(err)
	s.EqualValues(existing.ID, caller.UserID)
	_, err = s.service.AuthenticateAPIKey(context.Background(), existing.APIKey)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	s.Equal(1, s.users.Count())
	rows, err := s.auditStore.ListByUser(context.Background(), caller.UserID)
	s.Require().NoError(err)
	s.True(hasAuditAction(rows, audit.EventLoginSucceeded))
}

func hasAuditAction(rows []audit.Event, action audit.AuditEvent) bool {
	for _, r := range rows {
		if r.Action == string(action) {
			return true
		}
	}
	return false
}

func (s *ServiceSuite) TestRegisterOAuth() {
	s.Run("generates a password and derives names", func() {
		s.SetupTest()
		out, err := s.service.RegisterOAuth(callerCtx(models.RightUserWrite), &models.OAuthRegisterRequest{
			Email: " Jane.Doe@Example.com ",
			Name:  "Jane Doe",
		})
		s.Require().NoError(err)
		s.Equal("jane.doe@example.com", out.Email)
		s.Equal("Jane Doe", out.Name)
		s.NotEmpty(out.APIKey)

		stored, err := s.users.FindByEmail(context.Background(), "jane.doe@example.com")
		s.Require().NoError(err)
		s.Equal("jane.doe[at]example.com", stored.Login)
		s.NotEmpty(stored.PasswordHash)
	})

	s.Run("name is mandatory", func() {
		s.SetupTest()
		_, err := s.service.RegisterOAuth(callerCtx(models.RightUserWrite), &models.OAuthRegisterRequest{
			Email: "jane@example.com",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeMissingParameter))
		s.assertNothingProvisioned()
	})
}

func (s *ServiceSuite) TestGeneratePasswordIsUnique() {
	a, b := GeneratePassword(), GeneratePassword()
	s.NotEqual(a, b)
	s.Contains(a, "oauth_")
}
