package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/campusops/lostfound/internal/directory/domain"
	"github.com/campusops/lostfound/internal/directory/service"
	"github.com/campusops/lostfound/internal/directory/store"
	"github.com/campusops/lostfound/pkg/httpx"
	"github.com/campusops/lostfound/pkg/slogx"
)

// AccountsHandler serves the administrative account endpoints.
type AccountsHandler struct {
	AccountService *service.AccountService
	AuthService    *service.AuthService
}

type listResponse struct {
	Accounts []service.AccountSummary `json:"accounts"`
	Total    int64                    `json:"total"`
	Offset   int                      `json:"offset"`
	Limit    int                      `json:"limit"`
}

// HandleCreate godoc
//
//	@Summary		Create account
//	@Description	Creates a directory account. When the secret is omitted the
//	@Description	account starts on the default secret derived from its identifier.
//	@Tags			Accounts
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		service.CreateAccountInput	true	"account"
//	@Success		201		{object}	service.AccountSummary
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse	"identifier taken"
//	@Router			/v1/accounts [post].
func (h *AccountsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.CreateAccountInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	summary, err := h.AccountService.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, summary)
}

// HandleBatchCreate godoc
//
//	@Summary		Batch import accounts
//	@Description	Imports many accounts in one call. Invalid or duplicate entries
//	@Description	are reported per entry and never abort the batch.
//	@Tags			Accounts
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		[]service.CreateAccountInput	true	"accounts"
//	@Success		200		{object}	service.BatchResult
//	@Failure		400		{object}	ErrorResponse
//	@Router			/v1/accounts/batch [post].
func (h *AccountsHandler) HandleBatchCreate(w http.ResponseWriter, r *http.Request) {
	var inputs []service.CreateAccountInput
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if len(inputs) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "empty batch")
		return
	}

	result := h.AccountService.BatchCreate(r.Context(), inputs)
	httpx.WriteJSON(w, http.StatusOK, result)
}

// HandleList godoc
//
//	@Summary		List accounts
//	@Description	Returns a filtered, paged account listing with the total match count.
//	@Tags			Accounts
//	@Security		BearerAuth
//	@Produce		json
//	@Param			identifier	query		string	false	"identifier substring"
//	@Param			real_name	query		string	false	"real name substring"
//	@Param			role		query		string	false	"student, staff or admin"
//	@Param			status		query		string	false	"active or frozen"
//	@Param			college		query		string	false	"exact college"
//	@Param			offset		query		int		false	"page offset"
//	@Param			limit		query		int		false	"page size (default 20)"
//	@Success		200			{object}	listResponse
//	@Router			/v1/accounts [get].
func (h *AccountsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := store.AccountFilter{
		Identifier: q.Get("identifier"),
		RealName:   q.Get("real_name"),
		College:    q.Get("college"),
	}
	if role := q.Get("role"); role != "" {
		parsed, ok := domain.ParseRole(role)
		if !ok {
			writeError(w, http.StatusBadRequest, "validation_failed", "unknown role")
			return
		}
		filter.Role = parsed
	}
	if status := q.Get("status"); status != "" {
		if status != string(domain.StatusActive) && status != string(domain.StatusFrozen) {
			writeError(w, http.StatusBadRequest, "validation_failed", "unknown status")
			return
		}
		filter.Status = domain.Status(status)
	}

	page := store.Page{Limit: 20}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			page.Offset = n
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			page.Limit = n
		}
	}

	accounts, total, err := h.AccountService.List(r.Context(), filter, page)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, listResponse{
		Accounts: accounts,
		Total:    total,
		Offset:   page.Offset,
		Limit:    page.Limit,
	})
}

// HandleGet godoc
//
//	@Summary		Get account
//	@Tags			Accounts
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"account ID"
//	@Success		200	{object}	service.AccountSummary
//	@Failure		404	{object}	ErrorResponse
//	@Router			/v1/accounts/{id} [get].
func (h *AccountsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	summary, err := h.AccountService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, summary)
}

// HandleUpdate godoc
//
//	@Summary		Update account
//	@Description	Overwrites the profile fields. The identifier is immutable.
//	@Tags			Accounts
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"account ID"
//	@Param			request	body		service.UpdateAccountInput	true	"profile fields"
//	@Success		200		{object}	service.AccountSummary
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/v1/accounts/{id} [put].
func (h *AccountsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateAccountInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	summary, err := h.AccountService.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, summary)
}

// HandleDelete godoc
//
//	@Summary		Delete account
//	@Description	Removes the account and revokes any sessions it still holds.
//	@Tags			Accounts
//	@Security		BearerAuth
//	@Param			id	path	string	true	"account ID"
//	@Success		204	"deleted"
//	@Failure		404	{object}	ErrorResponse
//	@Router			/v1/accounts/{id} [delete].
func (h *AccountsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.AccountService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setStatusRequest struct {
	Status string `json:"status"`
}

// HandleSetStatus godoc
//
//	@Summary		Freeze or unfreeze account
//	@Description	Freezing revokes every live session; unfreezing clears the
//	@Description	failed-attempt counter.
//	@Tags			Accounts
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"account ID"
//	@Param			request	body		setStatusRequest	true	"active or frozen"
//	@Success		200		{object}	service.AccountSummary
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/v1/accounts/{id}/status [post].
func (h *AccountsHandler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	summary, err := h.AccountService.SetStatus(r.Context(), r.PathValue("id"), domain.Status(req.Status))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, summary)
}

// HandleResetSecret godoc
//
//	@Summary		Reset secret to default
//	@Description	Puts the account back on the default secret derived from its
//	@Description	identifier and returns that secret once.
//	@Tags			Accounts
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"account ID"
//	@Success		200	{object}	map[string]string
//	@Failure		404	{object}	ErrorResponse
//	@Router			/v1/accounts/{id}/reset-secret [post].
func (h *AccountsHandler) HandleResetSecret(w http.ResponseWriter, r *http.Request) {
	secret, err := h.AccountService.ResetSecret(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"secret": secret})
}

// HandleForceLogout godoc
//
//	@Summary		Revoke all sessions of an account
//	@Tags			Accounts
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"account ID"
//	@Success		200	{object}	map[string]int
//	@Router			/v1/accounts/{id}/force-logout [post].
func (h *AccountsHandler) HandleForceLogout(w http.ResponseWriter, r *http.Request) {
	dropped := h.AuthService.ForceLogout(r.Context(), r.PathValue("id"))
	httpx.WriteJSON(w, http.StatusOK, map[string]int{"revoked": dropped})
}

// HandleStatistics godoc
//
//	@Summary		Directory statistics
//	@Description	Totals plus status, role and college distribution. The
//	@Description	high-failure bucket counts accounts at the lockout threshold.
//	@Tags			Accounts
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	store.Statistics
//	@Router			/v1/accounts/stats [get].
func (h *AccountsHandler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.AccountService.Statistics(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}

// HandleSearch godoc
//
//	@Summary		Search accounts
//	@Description	Keyword search across identifier, real name and college.
//	@Tags			Accounts
//	@Security		BearerAuth
//	@Produce		json
//	@Param			q		query		string	true	"keyword"
//	@Param			limit	query		int		false	"max results (default 50)"
//	@Success		200		{object}	map[string][]service.AccountSummary
//	@Failure		400		{object}	ErrorResponse
//	@Router			/v1/accounts/search [get].
func (h *AccountsHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	hits, err := h.AccountService.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string][]service.AccountSummary{"accounts": hits})
}

// HandleExport godoc
//
//	@Summary		Export accounts
//	@Description	Returns every account matching the filter, unpaged.
//	@Tags			Accounts
//	@Security		BearerAuth
//	@Produce		json
//	@Param			role	query		string	false	"student, staff or admin"
//	@Param			college	query		string	false	"exact college"
//	@Success		200		{object}	map[string][]service.AccountSummary
//	@Router			/v1/accounts/export [get].
func (h *AccountsHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	filter := store.AccountFilter{College: r.URL.Query().Get("college")}
	if role := r.URL.Query().Get("role"); role != "" {
		parsed, ok := domain.ParseRole(role)
		if !ok {
			writeError(w, http.StatusBadRequest, "validation_failed", "unknown role")
			return
		}
		filter.Role = parsed
	}

	accounts, err := h.AccountService.Export(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	log.Info("directory exported", "count", len(accounts))
	httpx.WriteJSON(w, http.StatusOK, map[string][]service.AccountSummary{"accounts": accounts})
}

// HandleColleges godoc
//
//	@Summary		List colleges
//	@Tags			Accounts
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	map[string][]string
//	@Router			/v1/colleges [get].
func (h *AccountsHandler) HandleColleges(w http.ResponseWriter, r *http.Request) {
	colleges, err := h.AccountService.Colleges(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if colleges == nil {
		colleges = []string{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string][]string{"colleges": colleges})
}
