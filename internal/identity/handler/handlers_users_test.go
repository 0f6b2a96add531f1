package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"warden/internal/identity/handler/mocks"
	"warden/internal/identity/models"
	id "warden/pkg/domain"
	dErrors "warden/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/handler_mock.go -package=mocks Service
type HandlerSuite struct {
	suite.Suite
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) newHandler(t *testing.T) (*mocks.MockService, *chi.Mux) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	router := chi.NewRouter()
	New(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(router)
	return svc, router
}

func (s *HandlerSuite) do(router http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, code dErrors.Code) {
	t.Helper()
	assert.Equal(t, status, w.Code)
	body := decodeBody[map[string]string](t, w)
	assert.Equal(t, string(code), body["error"])
}

func (s *HandlerSuite) TestRegister() {
	s.T().Run("201 - passes profile keys through", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().Register(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ any, req *models.RegisterRequest) (*models.UserProjection, error) {
				assert.Equal(t, "ada@example.com", req.Email)
				assert.Equal(t, "secret", req.Password)
				assert.Equal(t, "+441234", req.Profile["phone"])
				return &models.UserProjection{ID: 7, Email: req.Email, APIKey: "key"}, nil
			})

		w := s.do(router, http.MethodPost, "/register", `{"email":"ada@example.com","password":"secret","phone":"+441234"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		got := decodeBody[models.UserProjection](t, w)
		assert.EqualValues(t, 7, got.ID)
		assert.Equal(t, "key", got.APIKey)
	})

	s.T().Run("400 - invalid json never reaches the service", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().Register(gomock.Any(), gomock.Any()).Times(0)

		w := s.do(router, http.MethodPost, "/register", `{"email": "`)
		assertError(t, w, http.StatusBadRequest, dErrors.CodeBadRequest)
	})

	s.T().Run("400 - empty body", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().Register(gomock.Any(), gomock.Any()).Times(0)

		w := s.do(router, http.MethodPost, "/register", "")
		assertError(t, w, http.StatusBadRequest, dErrors.CodeBadRequest)
	})

	s.T().Run("domain errors map to status", func(t *testing.T) {
		tests := []struct {
			name   string
			err    error
			status int
			code   dErrors.Code
		}{
			{"missing parameter", dErrors.MissingParameter("email"), http.StatusBadRequest, dErrors.CodeMissingParameter},
			{"permission denied", dErrors.New(dErrors.CodePermissionDenied, "permission denied"), http.StatusForbidden, dErrors.CodePermissionDenied},
			{"already exists", dErrors.New(dErrors.CodeAlreadyExists, "user already exists"), http.StatusConflict, dErrors.CodeAlreadyExists},
			{"password too short", dErrors.New(dErrors.CodePasswordTooShort, "password too short"), http.StatusUnprocessableEntity, dErrors.CodePasswordTooShort},
			{"subscriber rejected", dErrors.New(dErrors.CodeSubscriberRejected, "registration rejected by subscriber"), http.StatusInternalServerError, dErrors.CodeSubscriberRejected},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				svc, router := s.newHandler(t)
				svc.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil, tt.err)

				w := s.do(router, http.MethodPost, "/register", `{"email":"ada@example.com","password":"secret"}`)
				assertError(t, w, tt.status, tt.code)
			})
		}
	})
}

func (s *HandlerSuite) TestRegisterOAuth() {
	s.T().Run("201 - forwards email and name", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().RegisterOAuth(gomock.Any(), &models.OAuthRegisterRequest{Email: "ada@example.com", Name: "Ada"}).
			Return(&models.UserProjection{ID: 3, Email: "ada@example.com", Name: "Ada"}, nil)

		w := s.do(router, http.MethodPost, "/oauth/users", `{"email":"ada@example.com","name":"Ada"}`)
		assert.Equal(t, http.StatusCreated, w.Code)
	})
}

func (s *HandlerSuite) TestLogin() {
	s.T().Run("200 - returns the projection", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().Login(gomock.Any(), &models.LoginRequest{Login: "ada", Password: "pw", ResetAPIKey: true}).
			Return(&models.UserProjection{ID: 1, APIKey: "fresh"}, nil)

		w := s.do(router, http.MethodPost, "/login", `{"login":"ada","password":"pw","resetApiKey":true}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "fresh", decodeBody[models.UserProjection](t, w).APIKey)
	})

	s.T().Run("401 - login failed", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().Login(gomock.Any(), gomock.Any()).Return(nil, dErrors.New(dErrors.CodeLoginFailed, "login failed"))

		w := s.do(router, http.MethodPost, "/login", `{"login":"ada","password":"nope"}`)
		assertError(t, w, http.StatusUnauthorized, dErrors.CodeLoginFailed)
	})
}

func (s *HandlerSuite) TestResetPassword() {
	s.T().Run("200 - reports the notification outcome", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().ResetPassword(gomock.Any(), &models.ResetPasswordRequest{Login: "ada", ChangeLater: true}).
			Return(&models.ResetPasswordResult{
				User:         &models.UserProjection{ID: 1},
				Notification: models.NotificationOutcome{Attempted: true, Error: "mail delivery failed"},
			}, nil)

		w := s.do(router, http.MethodPost, "/reset-password", `{"login":"ada","changeLater":true}`)

		assert.Equal(t, http.StatusOK, w.Code)
		got := decodeBody[models.ResetPasswordResult](t, w)
		assert.True(t, got.Notification.Attempted)
		assert.False(t, got.Notification.Sent)
	})

	s.T().Run("404 - sender not found", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().ResetPassword(gomock.Any(), gomock.Any()).Return(nil, dErrors.New(dErrors.CodeSenderNotFound, "sender user not found"))

		w := s.do(router, http.MethodPost, "/reset-password", `{"login":"ada"}`)
		assertError(t, w, http.StatusNotFound, dErrors.CodeSenderNotFound)
	})
}

func (s *HandlerSuite) TestSendMail() {
	s.T().Run("200 - sent flag", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().SendMail(gomock.Any(), &models.SendMailRequest{Subject: "Hi", To: "a@example.com", Message: "body"}).
			Return(&models.SendMailResult{Sent: false}, nil)

		w := s.do(router, http.MethodPost, "/sendmail", `{"subject":"Hi","to":"a@example.com","message":"body"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.False(t, decodeBody[models.SendMailResult](t, w).Sent)
	})
}

func (s *HandlerSuite) TestUsers() {
	s.T().Run("get by id", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().GetUser(gomock.Any(), id.UserID(42)).Return(&models.UserProjection{ID: 42}, nil)

		w := s.do(router, http.MethodGet, "/oauth/users/42", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	s.T().Run("400 - malformed id", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().GetUser(gomock.Any(), gomock.Any()).Times(0)

		w := s.do(router, http.MethodGet, "/oauth/users/abc", "")
		assertError(t, w, http.StatusBadRequest, dErrors.CodeBadRequest)
	})

	s.T().Run("by email unescapes the path", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().GetUserByEmail(gomock.Any(), "ada+test@example.com").Return(&models.UserProjection{ID: 1}, nil)

		w := s.do(router, http.MethodGet, "/oauth/users/by-email/ada%2Btest%40example.com", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	s.T().Run("404 - user not found", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().GetUserByEmail(gomock.Any(), "nobody@example.com").Return(nil, dErrors.New(dErrors.CodeUserNotFound, "user not found"))

		w := s.do(router, http.MethodGet, "/oauth/users/by-email/nobody@example.com", "")
		assertError(t, w, http.StatusNotFound, dErrors.CodeUserNotFound)
	})

	s.T().Run("reissue api key", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().ReissueAPIKey(gomock.Any(), id.UserID(9)).Return(&models.UserProjection{ID: 9, APIKey: "new"}, nil)

		w := s.do(router, http.MethodPost, "/users/9/api-key", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "new", decodeBody[models.UserProjection](t, w).APIKey)
	})

	s.T().Run("500 - plain errors disclose nothing", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().GetUser(gomock.Any(), id.UserID(1)).Return(nil, assert.AnError)

		w := s.do(router, http.MethodGet, "/oauth/users/1", "")
		assertError(t, w, http.StatusInternalServerError, dErrors.CodeInternal)
		assert.NotContains(t, w.Body.String(), assert.AnError.Error())
	})
}
