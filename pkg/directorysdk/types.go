package directorysdk

import "time"

// AccountSummary is the public view of a directory account.
type AccountSummary struct {
	ID         string    `json:"id"`
	Identifier string    `json:"identifier"`
	RealName   string    `json:"real_name"`
	Phone      string    `json:"phone,omitempty"`
	Role       string    `json:"role"`
	College    string    `json:"college,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// LoginResult is the response to a successful login or token refresh.
// ExpiresIn is the token lifetime in seconds; ExpiresAt the absolute expiry.
type LoginResult struct {
	Token                 string         `json:"token"`
	ExpiresAt             time.Time      `json:"expires_at"`
	ExpiresIn             int64          `json:"expires_in"`
	Account               AccountSummary `json:"account"`
	RequirePasswordChange bool           `json:"require_password_change"`
}

// CreateAccountInput describes a new account. Secret is optional; when empty
// the service derives the default secret from the identifier.
type CreateAccountInput struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"secret,omitempty"`
	RealName   string `json:"real_name"`
	Phone      string `json:"phone,omitempty"`
	Role       string `json:"role"`
	College    string `json:"college,omitempty"`
}

// UpdateAccountInput carries the profile fields an administrator can change.
type UpdateAccountInput struct {
	RealName string `json:"real_name"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role"`
	College  string `json:"college,omitempty"`
}

// BatchFailure records one rejected row of a batch import.
type BatchFailure struct {
	Identifier string `json:"identifier"`
	Reason     string `json:"reason"`
}

// BatchResult summarizes a batch import.
type BatchResult struct {
	Created  int            `json:"created"`
	Failures []BatchFailure `json:"failures,omitempty"`
}

// AccountList is a paged account listing.
type AccountList struct {
	Accounts []AccountSummary `json:"accounts"`
	Total    int64            `json:"total"`
	Offset   int              `json:"offset"`
	Limit    int              `json:"limit"`
}

// ListAccountsOptions filters and pages an account listing. Zero values are
// omitted from the query.
type ListAccountsOptions struct {
	Identifier string
	RealName   string
	Role       string
	Status     string
	College    string
	Offset     int
	Limit      int
}

// Statistics aggregates directory-wide account counts.
type Statistics struct {
	Total       int64
	Active      int64
	Frozen      int64
	ByRole      map[string]int64
	ByCollege   map[string]int64
	HighFailure int64
}

// HealthResponse is the body of the health probe endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of the service's dependencies.
type HealthChecks struct {
	Database string `json:"database"`
}
