package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"warden/internal/identity/models"
	id "warden/pkg/domain"
	dErrors "warden/pkg/domain-errors"
	"warden/pkg/platform/httputil"
	"warden/pkg/requestcontext"
)

// Service is the identity surface exposed over HTTP.
type Service interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.UserProjection, error)
	RegisterOAuth(ctx context.Context, req *models.OAuthRegisterRequest) (*models.UserProjection, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.UserProjection, error)
	ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) (*models.ResetPasswordResult, error)
	ReissueAPIKey(ctx context.Context, userID id.UserID) (*models.UserProjection, error)
	SendMail(ctx context.Context, req *models.SendMailRequest) (*models.SendMailResult, error)

	GetUser(ctx context.Context, userID id.UserID) (*models.UserProjection, error)
	GetUserByEmail(ctx context.Context, email string) (*models.UserProjection, error)

	LinkAccount(ctx context.Context, req *models.LinkAccountRequest) (*models.AuthAccountProjection, error)
	GetAccount(ctx context.Context, provider, providerAccountID string) (*models.AuthAccountProjection, error)
	GetUserByProviderAccount(ctx context.Context, provider, providerAccountID string) (*models.UserProjection, error)
	UnlinkAccount(ctx context.Context, provider, providerAccountID string) error

	CreateSession(ctx context.Context, req *models.CreateSessionRequest) (*models.SessionProjection, error)
	GetSession(ctx context.Context, token string) (*models.SessionProjection, error)
	UpdateSession(ctx context.Context, token string, req *models.UpdateSessionRequest) (*models.SessionProjection, error)
	DeleteSession(ctx context.Context, token string) error
	GetSessionAndUser(ctx context.Context, token string) (*models.SessionAndUser, error)

	IssueVerificationToken(ctx context.Context, req *models.IssueVerificationTokenRequest) (*models.VerificationTokenProjection, error)
	ConsumeVerificationToken(ctx context.Context, req *models.ConsumeVerificationTokenRequest) (*models.VerificationTokenProjection, error)
}

// Handler serves the identity endpoints. Caller authentication is applied by
// the parent router.
type Handler struct {
	identity Service
	logger   *slog.Logger
}

func New(identity Service, logger *slog.Logger) *Handler {
	return &Handler{identity: identity, logger: logger}
}

// Register mounts every identity route on r.
func (h *Handler) Register(r chi.Router) {
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
	r.Post("/reset-password", h.HandleResetPassword)
	r.Post("/sendmail", h.HandleSendMail)
	r.Post("/users/{id}/api-key", h.HandleReissueAPIKey)

	r.Route("/oauth", func(r chi.Router) {
		r.Post("/users", h.HandleRegisterOAuth)
		r.Get("/users/by-email/{email}", h.HandleGetUserByEmail)
		r.Get("/users/{id}", h.HandleGetUser)

		r.Post("/authaccounts", h.HandleLinkAccount)
		r.Get("/authaccounts/{provider}/{providerAccountId}", h.HandleGetAccount)
		r.Delete("/authaccounts/{provider}/{providerAccountId}", h.HandleUnlinkAccount)
		r.Get("/authaccounts/{provider}/{providerAccountId}/user", h.HandleGetUserByAccount)

		r.Post("/sessions", h.HandleCreateSession)
		r.Get("/sessions/{token}", h.HandleGetSession)
		r.Put("/sessions/{token}", h.HandleUpdateSession)
		r.Delete("/sessions/{token}", h.HandleDeleteSession)
		r.Get("/sessions/{token}/user", h.HandleGetSessionAndUser)

		r.Post("/verificationtokens", h.HandleIssueVerificationToken)
		r.Post("/verificationtokens/consume", h.HandleConsumeVerificationToken)
	})
}

// fail logs by severity and writes the error response. Client mistakes are
// warnings; everything that maps to a 5xx is an error.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, op string, err error, attrs ...any) {
	attrs = append(attrs,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	if httputil.DomainCodeToHTTPStatus(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, op+" failed", attrs...)
	} else {
		h.logger.WarnContext(ctx, op+" failed", attrs...)
	}
	httputil.WriteError(w, err)
}

// pathParam returns the unescaped URL parameter. Emails and provider account
// ids may arrive percent-encoded.
func pathParam(r *http.Request, name string) (string, error) {
	raw := chi.URLParam(r, name)
	value, err := url.PathUnescape(raw)
	if err != nil {
		return "", dErrors.New(dErrors.CodeBadRequest, "invalid "+name)
	}
	return value, nil
}
