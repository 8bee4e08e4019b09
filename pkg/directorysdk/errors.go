package directorysdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes returned by the directory service.
const (
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeInvalidToken       = "invalid_token"
	ErrorCodeAccountNotFound    = "account_not_found"
	ErrorCodeAccountLocked      = "account_locked"
	ErrorCodeSecretMismatch     = "secret_mismatch"
	ErrorCodeIdentifierTaken    = "identifier_taken"
	ErrorCodeValidationFailed   = "validation_failed"
	ErrorCodeInsufficientScope  = "insufficient_scope"
	ErrorCodeRateLimitExceeded  = "rate_limit_exceeded"
	ErrorCodeServerError        = "server_error"
)

// APIError represents an error response from the directory service.
type APIError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int `json:"-"`

	// Code is the machine-readable error code (e.g. "invalid_credentials").
	Code string `json:"error"`

	// Description is a human-readable description of the error.
	Description string `json:"error_description"`

	// RemainingAttempts is set on failed logins and counts how many more
	// failures the account can absorb before it is frozen.
	RemainingAttempts *int `json:"remaining_attempts,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.RemainingAttempts != nil {
		return fmt.Sprintf("%s: %s (%d attempts remaining)", e.Code, e.Description, *e.RemainingAttempts)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// parseErrorResponse turns a non-2xx HTTP response body into a typed APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
