package http

import (
	"encoding/json"
	"net/http"

	"github.com/campusops/lostfound/internal/directory/service"
	"github.com/campusops/lostfound/pkg/httpx"
	"github.com/campusops/lostfound/pkg/slogx"
)

// AuthHandler serves the self-service authentication endpoints.
type AuthHandler struct {
	AuthService *service.AuthService
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Verifies an identifier/secret pair and issues a 24h session token.
//	@Description	Three consecutive failures freeze the account. The response flags
//	@Description	logins that still use the initial default secret.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest	true	"credentials"
//	@Success		200		{object}	service.LoginResult
//	@Failure		400		{object}	ErrorResponse	"validation failed"
//	@Failure		401		{object}	ErrorResponse	"invalid credentials, includes remaining_attempts"
//	@Failure		403		{object}	ErrorResponse	"account frozen"
//	@Failure		404		{object}	ErrorResponse	"unknown identifier"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	result, err := h.AuthService.Login(ctx, req.Identifier, req.Secret)
	if err != nil {
		log.Info("login rejected", "identifier", req.Identifier, "err", err)
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, result)
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Revokes the bearer session token. Always succeeds.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Success		204	"session revoked"
//	@Router			/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if token, ok := httpx.BearerToken(r); ok {
		h.AuthService.Logout(r.Context(), token)
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRefresh godoc
//
//	@Summary		Refresh session
//	@Description	Swaps a live session token for a fresh one with a full TTL.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	service.LoginResult
//	@Failure		401	{object}	ErrorResponse	"invalid or expired token"
//	@Router			/v1/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	token, ok := httpx.BearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "missing bearer token")
		return
	}

	result, err := h.AuthService.RefreshToken(r.Context(), token)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, result)
}

// HandleMe godoc
//
//	@Summary		Current account
//	@Description	Returns the account behind the bearer session token.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	service.AccountSummary
//	@Failure		401	{object}	ErrorResponse
//	@Router			/v1/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	token, ok := httpx.BearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "missing bearer token")
		return
	}

	summary, err := h.AuthService.CurrentUser(r.Context(), token)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, summary)
}

// HandlePermissions godoc
//
//	@Summary		Current permissions
//	@Description	Lists the permissions granted by the account's role.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	map[string][]string
//	@Failure		401	{object}	ErrorResponse
//	@Router			/v1/auth/permissions [get].
func (h *AuthHandler) HandlePermissions(w http.ResponseWriter, r *http.Request) {
	token, ok := httpx.BearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "missing bearer token")
		return
	}

	perms, err := h.AuthService.Permissions(r.Context(), token)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string][]string{"permissions": perms})
}

type changePasswordRequest struct {
	OldSecret     string `json:"old_secret"`
	NewSecret     string `json:"new_secret"`
	ConfirmSecret string `json:"confirm_secret,omitempty"`
}

// HandleChangePassword godoc
//
//	@Summary		Change secret
//	@Description	Replaces the caller's secret after re-verifying the current one.
//	@Description	A wrong current secret does not count toward the lockout.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Success		204	"secret changed"
//	@Failure		400	{object}	ErrorResponse	"validation failed or secret mismatch"
//	@Failure		401	{object}	ErrorResponse
//	@Router			/v1/auth/password [post].
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := httpx.PrincipalFromContext(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "missing bearer token")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	err := h.AuthService.ChangePassword(ctx, principal.AccountID, req.OldSecret, req.NewSecret, req.ConfirmSecret)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
