// Package http wires the directory services onto a net/http mux.
package http

import (
	"errors"
	"net/http"

	"github.com/campusops/lostfound/internal/directory/service"
	"github.com/campusops/lostfound/pkg/httpx"
)

// ErrorResponse is the JSON error body every endpoint shares.
type ErrorResponse struct {
	Error             string `json:"error"`
	ErrorDescription  string `json:"error_description,omitempty"`
	RemainingAttempts *int   `json:"remaining_attempts,omitempty"`
}

// HealthResponse is the body of the health probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
}

func writeError(w http.ResponseWriter, code int, errCode, desc string) {
	httpx.WriteJSON(w, code, ErrorResponse{Error: errCode, ErrorDescription: desc})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses. The
// invalid-credentials case includes how many attempts remain before a freeze.
func writeServiceError(w http.ResponseWriter, err error) {
	var ice *service.InvalidCredentialsError
	if errors.As(err, &ice) {
		remaining := ice.Remaining
		httpx.WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:             "invalid_credentials",
			ErrorDescription:  "identifier or secret is incorrect",
			RemainingAttempts: &remaining,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "account_not_found", "no account matches the request")
	case errors.Is(err, service.ErrAccountLocked):
		writeError(w, http.StatusForbidden, "account_locked", "account is frozen; contact an administrator")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "identifier or secret is incorrect")
	case errors.Is(err, service.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "invalid_token", "session token is invalid or expired")
	case errors.Is(err, service.ErrSecretMismatch):
		writeError(w, http.StatusBadRequest, "secret_mismatch", "current secret is incorrect")
	case errors.Is(err, service.ErrIdentifierTaken):
		writeError(w, http.StatusConflict, "identifier_taken", "identifier already exists")
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_failed", "request failed validation")
	default:
		writeError(w, http.StatusInternalServerError, "server_error", "unexpected server error")
	}
}
