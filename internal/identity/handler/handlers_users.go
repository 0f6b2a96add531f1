package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"warden/internal/identity/models"
	id "warden/pkg/domain"
	"warden/pkg/platform/httputil"
	"warden/pkg/requestcontext"
)

// HandleRegister implements POST /register.
// Input: signup fields plus optional profile keys. Output: the user projection with its API key.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeJSON[models.RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.identity.Register(ctx, req)
	if err != nil {
		h.fail(ctx, w, "register", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

// HandleRegisterOAuth implements POST /oauth/users.
func (h *Handler) HandleRegisterOAuth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeJSON[models.OAuthRegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.identity.RegisterOAuth(ctx, req)
	if err != nil {
		h.fail(ctx, w, "oauth register", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

// HandleLogin implements POST /login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeJSON[models.LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.identity.Login(ctx, req)
	if err != nil {
		h.fail(ctx, w, "login", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// HandleResetPassword implements POST /reset-password. Admin only.
func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeJSON[models.ResetPasswordRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.identity.ResetPassword(ctx, req)
	if err != nil {
		h.fail(ctx, w, "reset password", err, "login", req.Login)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// HandleSendMail implements POST /sendmail.
func (h *Handler) HandleSendMail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeJSON[models.SendMailRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.identity.SendMail(ctx, req)
	if err != nil {
		h.fail(ctx, w, "send mail", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// HandleReissueAPIKey implements POST /users/{id}/api-key.
func (h *Handler) HandleReissueAPIKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(ctx, w, "reissue api key", err)
		return
	}
	res, err := h.identity.ReissueAPIKey(ctx, userID)
	if err != nil {
		h.fail(ctx, w, "reissue api key", err, "user_id", userID.String())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// HandleGetUser implements GET /oauth/users/{id}.
func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(ctx, w, "get user", err)
		return
	}
	res, err := h.identity.GetUser(ctx, userID)
	if err != nil {
		h.fail(ctx, w, "get user", err, "user_id", userID.String())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// HandleGetUserByEmail implements GET /oauth/users/by-email/{email}.
func (h *Handler) HandleGetUserByEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	email, err := pathParam(r, "email")
	if err != nil {
		h.fail(ctx, w, "get user by email", err)
		return
	}
	res, err := h.identity.GetUserByEmail(ctx, email)
	if err != nil {
		h.fail(ctx, w, "get user by email", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}
