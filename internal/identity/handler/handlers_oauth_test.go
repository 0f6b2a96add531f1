package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"warden/internal/identity/models"
	dErrors "warden/pkg/domain-errors"
)

func (s *HandlerSuite) TestAuthAccounts() {
	s.T().Run("201 - link", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().LinkAccount(gomock.Any(), &models.LinkAccountRequest{
			UserID: 5, Provider: "github", ProviderAccountID: "gh-1", Type: "oauth",
		}).Return(&models.AuthAccountProjection{UserID: 5, Provider: "github", ProviderAccountID: "gh-1"}, nil)

		w := s.do(router, http.MethodPost, "/oauth/authaccounts", `{"userId":5,"provider":"github","providerAccountId":"gh-1","type":"oauth"}`)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	s.T().Run("409 - already linked", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().LinkAccount(gomock.Any(), gomock.Any()).Return(nil, dErrors.New(dErrors.CodeAlreadyLinked, "account already linked"))

		w := s.do(router, http.MethodPost, "/oauth/authaccounts", `{"userId":5,"provider":"github","providerAccountId":"gh-1"}`)
		assertError(t, w, http.StatusConflict, dErrors.CodeAlreadyLinked)
	})

	s.T().Run("get by provider key", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().GetAccount(gomock.Any(), "github", "gh/1").Return(&models.AuthAccountProjection{UserID: 5}, nil)

		w := s.do(router, http.MethodGet, "/oauth/authaccounts/github/gh%2F1", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	s.T().Run("user by provider key", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().GetUserByProviderAccount(gomock.Any(), "github", "gh-1").Return(&models.UserProjection{ID: 5}, nil)

		w := s.do(router, http.MethodGet, "/oauth/authaccounts/github/gh-1/user", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 5, decodeBody[models.UserProjection](t, w).ID)
	})

	s.T().Run("204 - unlink", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().UnlinkAccount(gomock.Any(), "github", "gh-1").Return(nil)

		w := s.do(router, http.MethodDelete, "/oauth/authaccounts/github/gh-1", "")
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	s.T().Run("404 - unlink unknown", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().UnlinkAccount(gomock.Any(), "github", "nope").Return(dErrors.New(dErrors.CodeNotFound, "account not found"))

		w := s.do(router, http.MethodDelete, "/oauth/authaccounts/github/nope", "")
		assertError(t, w, http.StatusNotFound, dErrors.CodeNotFound)
	})
}

func (s *HandlerSuite) TestSessions() {
	s.T().Run("201 - create forwards the user agent", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().CreateSession(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ any, req *models.CreateSessionRequest) (*models.SessionProjection, error) {
				assert.Equal(t, "tok", req.SessionToken)
				assert.EqualValues(t, 5, req.UserID)
				assert.Equal(t, "Mozilla/5.0 test", req.UserAgent)
				return &models.SessionProjection{SessionToken: "tok", UserID: 5}, nil
			})

		w := s.do(router, http.MethodPost, "/oauth/sessions", `{"sessionToken":"tok","userId":5}`, "User-Agent", "Mozilla/5.0 test")
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "tok", decodeBody[models.SessionProjection](t, w).SessionToken)
	})

	s.T().Run("client cannot smuggle the user agent in the body", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().CreateSession(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ any, req *models.CreateSessionRequest) (*models.SessionProjection, error) {
				assert.Equal(t, "real-agent", req.UserAgent)
				return &models.SessionProjection{}, nil
			})

		s.do(router, http.MethodPost, "/oauth/sessions", `{"userId":5,"UserAgent":"forged"}`, "User-Agent", "real-agent")
	})

	s.T().Run("get", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().GetSession(gomock.Any(), "tok").Return(&models.SessionProjection{SessionToken: "tok"}, nil)

		w := s.do(router, http.MethodGet, "/oauth/sessions/tok", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	s.T().Run("update passes the patch", func(t *testing.T) {
		svc, router := s.newHandler(t)
		expires := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
		svc.EXPECT().UpdateSession(gomock.Any(), "tok", &models.UpdateSessionRequest{Expires: &expires}).
			Return(&models.SessionProjection{SessionToken: "tok", Expires: &expires}, nil)

		w := s.do(router, http.MethodPut, "/oauth/sessions/tok", `{"expires":"2030-01-02T03:04:05Z"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	s.T().Run("204 - delete", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().DeleteSession(gomock.Any(), "tok").Return(nil)

		w := s.do(router, http.MethodDelete, "/oauth/sessions/tok", "")
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	s.T().Run("404 - delete twice", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().DeleteSession(gomock.Any(), "tok").Return(dErrors.New(dErrors.CodeNothingToDelete, "nothing to delete"))

		w := s.do(router, http.MethodDelete, "/oauth/sessions/tok", "")
		assertError(t, w, http.StatusNotFound, dErrors.CodeNothingToDelete)
	})

	s.T().Run("session and user", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().GetSessionAndUser(gomock.Any(), "tok").Return(&models.SessionAndUser{
			Session: &models.SessionProjection{SessionToken: "tok", UserID: 5},
			User:    &models.UserProjection{ID: 5},
		}, nil)

		w := s.do(router, http.MethodGet, "/oauth/sessions/tok/user", "")
		assert.Equal(t, http.StatusOK, w.Code)
		got := decodeBody[models.SessionAndUser](t, w)
		assert.EqualValues(t, 5, got.User.ID)
		assert.Equal(t, "tok", got.Session.SessionToken)
	})

	s.T().Run("404 - orphaned session", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().GetSessionAndUser(gomock.Any(), "tok").Return(nil, dErrors.New(dErrors.CodeUserNotFound, "user not found"))

		w := s.do(router, http.MethodGet, "/oauth/sessions/tok/user", "")
		assertError(t, w, http.StatusNotFound, dErrors.CodeUserNotFound)
	})
}

func (s *HandlerSuite) TestVerificationTokens() {
	s.T().Run("201 - issue", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().IssueVerificationToken(gomock.Any(), &models.IssueVerificationTokenRequest{Identifier: "ada@example.com", Token: "t"}).
			Return(&models.VerificationTokenProjection{Identifier: "ada@example.com", Token: "t"}, nil)

		w := s.do(router, http.MethodPost, "/oauth/verificationtokens", `{"identifier":"ada@example.com","token":"t"}`)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	s.T().Run("consume", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().ConsumeVerificationToken(gomock.Any(), &models.ConsumeVerificationTokenRequest{Identifier: "ada@example.com", Token: "t"}).
			Return(&models.VerificationTokenProjection{Identifier: "ada@example.com", Token: "t"}, nil)

		w := s.do(router, http.MethodPost, "/oauth/verificationtokens/consume", `{"identifier":"ada@example.com","token":"t"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "t", decodeBody[models.VerificationTokenProjection](t, w).Token)
	})

	s.T().Run("consume failures", func(t *testing.T) {
		tests := []struct {
			name   string
			err    error
			status int
			code   dErrors.Code
		}{
			{"not found", dErrors.New(dErrors.CodeNotFound, "verification token not found"), http.StatusNotFound, dErrors.CodeNotFound},
			{"expired", dErrors.New(dErrors.CodeExpired, "verification token expired"), http.StatusGone, dErrors.CodeExpired},
			{"delete failed", dErrors.New(dErrors.CodeDeletion, "failed to delete verification token"), http.StatusInternalServerError, dErrors.CodeDeletion},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				svc, router := s.newHandler(t)
				svc.EXPECT().ConsumeVerificationToken(gomock.Any(), gomock.Any()).Return(nil, tt.err)

				w := s.do(router, http.MethodPost, "/oauth/verificationtokens/consume", `{"identifier":"a","token":"t"}`)
				assertError(t, w, tt.status, tt.code)
			})
		}
	})
}
