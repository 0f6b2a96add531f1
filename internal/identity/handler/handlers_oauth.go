package handler

import (
	"net/http"

	"warden/internal/identity/models"
	"warden/pkg/platform/httputil"
	"warden/pkg/requestcontext"
)

// The handlers in this file back an OAuth adapter: linked provider accounts,
// database sessions and single-use verification tokens.

func (h *Handler) HandleLinkAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeJSON[models.LinkAccountRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.identity.LinkAccount(ctx, req)
	if err != nil {
		h.fail(ctx, w, "link account", err, "provider", req.Provider)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) accountKey(w http.ResponseWriter, r *http.Request, op string) (string, string, bool) {
	provider, err := pathParam(r, "provider")
	if err != nil {
		h.fail(r.Context(), w, op, err)
		return "", "", false
	}
	accountID, err := pathParam(r, "providerAccountId")
	if err != nil {
		h.fail(r.Context(), w, op, err)
		return "", "", false
	}
	return provider, accountID, true
}

func (h *Handler) HandleGetAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider, accountID, ok := h.accountKey(w, r, "get account")
	if !ok {
		return
	}
	res, err := h.identity.GetAccount(ctx, provider, accountID)
	if err != nil {
		h.fail(ctx, w, "get account", err, "provider", provider)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleGetUserByAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider, accountID, ok := h.accountKey(w, r, "get user by account")
	if !ok {
		return
	}
	res, err := h.identity.GetUserByProviderAccount(ctx, provider, accountID)
	if err != nil {
		h.fail(ctx, w, "get user by account", err, "provider", provider)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleUnlinkAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider, accountID, ok := h.accountKey(w, r, "unlink account")
	if !ok {
		return
	}
	if err := h.identity.UnlinkAccount(ctx, provider, accountID); err != nil {
		h.fail(ctx, w, "unlink account", err, "provider", provider)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeJSON[models.CreateSessionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	req.UserAgent = r.UserAgent()
	res, err := h.identity.CreateSession(ctx, req)
	if err != nil {
		h.fail(ctx, w, "create session", err, "user_id", req.UserID.String())
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token, err := pathParam(r, "token")
	if err != nil {
		h.fail(ctx, w, "get session", err)
		return
	}
	res, err := h.identity.GetSession(ctx, token)
	if err != nil {
		h.fail(ctx, w, "get session", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleUpdateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	token, err := pathParam(r, "token")
	if err != nil {
		h.fail(ctx, w, "update session", err)
		return
	}
	req, ok := httputil.DecodeJSON[models.UpdateSessionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.identity.UpdateSession(ctx, token, req)
	if err != nil {
		h.fail(ctx, w, "update session", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// HandleDeleteSession is logout. A token that matches nothing is 404 nothing_to_delete.
func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token, err := pathParam(r, "token")
	if err != nil {
		h.fail(ctx, w, "delete session", err)
		return
	}
	if err := h.identity.DeleteSession(ctx, token); err != nil {
		h.fail(ctx, w, "delete session", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *Handler) HandleGetSessionAndUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token, err := pathParam(r, "token")
	if err != nil {
		h.fail(ctx, w, "get session and user", err)
		return
	}
	res, err := h.identity.GetSessionAndUser(ctx, token)
	if err != nil {
		h.fail(ctx, w, "get session and user", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleIssueVerificationToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeJSON[models.IssueVerificationTokenRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.identity.IssueVerificationToken(ctx, req)
	if err != nil {
		h.fail(ctx, w, "issue verification token", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

// HandleConsumeVerificationToken redeems a token exactly once.
func (h *Handler) HandleConsumeVerificationToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeJSON[models.ConsumeVerificationTokenRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.identity.ConsumeVerificationToken(ctx, req)
	if err != nil {
		h.fail(ctx, w, "consume verification token", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}
