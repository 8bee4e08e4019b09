package directorysdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Administrative account management. All of these require a session whose
// account holds the admin role; the service rejects everyone else with 403.

// CreateAccount registers a single account in the directory.
func (s *Session) CreateAccount(ctx context.Context, input CreateAccountInput) (*AccountSummary, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/accounts", bytes.NewReader(payload), map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return nil, err
	}

	var summary AccountSummary
	if err := decodeJSON(resp, &summary, http.StatusCreated); err != nil {
		return nil, err
	}

	return &summary, nil
}

// BatchCreateAccounts imports several accounts at once. Rows that fail
// validation are reported in the result without aborting the rest.
func (s *Session) BatchCreateAccounts(ctx context.Context, inputs []CreateAccountInput) (*BatchResult, error) {
	payload, err := json.Marshal(inputs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/accounts/batch", bytes.NewReader(payload), map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return nil, err
	}

	var result BatchResult
	if err := decodeJSON(resp, &result, http.StatusOK); err != nil {
		return nil, err
	}

	return &result, nil
}

// ListAccounts returns a filtered, paged account listing.
func (s *Session) ListAccounts(ctx context.Context, opts ListAccountsOptions) (*AccountList, error) {
	query := url.Values{}
	if opts.Identifier != "" {
		query.Set("identifier", opts.Identifier)
	}
	if opts.RealName != "" {
		query.Set("real_name", opts.RealName)
	}
	if opts.Role != "" {
		query.Set("role", opts.Role)
	}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}
	if opts.College != "" {
		query.Set("college", opts.College)
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}

	path := "/v1/accounts"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	resp, err := s.doAuthRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var list AccountList
	if err := decodeJSON(resp, &list, http.StatusOK); err != nil {
		return nil, err
	}

	return &list, nil
}

// GetAccount returns one account by its ID.
func (s *Session) GetAccount(ctx context.Context, id string) (*AccountSummary, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/accounts/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}

	var summary AccountSummary
	if err := decodeJSON(resp, &summary, http.StatusOK); err != nil {
		return nil, err
	}

	return &summary, nil
}

// UpdateAccount replaces an account's profile fields.
func (s *Session) UpdateAccount(ctx context.Context, id string, input UpdateAccountInput) (*AccountSummary, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPut, "/v1/accounts/"+url.PathEscape(id), bytes.NewReader(payload), map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return nil, err
	}

	var summary AccountSummary
	if err := decodeJSON(resp, &summary, http.StatusOK); err != nil {
		return nil, err
	}

	return &summary, nil
}

// DeleteAccount removes an account and revokes all of its sessions.
func (s *Session) DeleteAccount(ctx context.Context, id string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/v1/accounts/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return err
	}

	return checkStatusNoContent(resp)
}

// SetAccountStatus freezes ("frozen") or unfreezes ("active") an account.
// Unfreezing resets the failed-attempt counter; freezing revokes sessions.
func (s *Session) SetAccountStatus(ctx context.Context, id, status string) (*AccountSummary, error) {
	payload, err := json.Marshal(map[string]string{"status": status})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/accounts/"+url.PathEscape(id)+"/status", bytes.NewReader(payload), map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return nil, err
	}

	var summary AccountSummary
	if err := decodeJSON(resp, &summary, http.StatusOK); err != nil {
		return nil, err
	}

	return &summary, nil
}

// ResetAccountSecret resets an account's secret to the identifier-derived
// default and returns that default so it can be handed to the owner.
func (s *Session) ResetAccountSecret(ctx context.Context, id string) (string, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/accounts/"+url.PathEscape(id)+"/reset-secret", nil, nil)
	if err != nil {
		return "", err
	}

	var body struct {
		Secret string `json:"secret"`
	}
	if err := decodeJSON(resp, &body, http.StatusOK); err != nil {
		return "", err
	}

	return body.Secret, nil
}

// ForceLogout revokes every session belonging to an account and returns how
// many were dropped.
func (s *Session) ForceLogout(ctx context.Context, id string) (int, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/accounts/"+url.PathEscape(id)+"/force-logout", nil, nil)
	if err != nil {
		return 0, err
	}

	var body struct {
		Revoked int `json:"revoked"`
	}
	if err := decodeJSON(resp, &body, http.StatusOK); err != nil {
		return 0, err
	}

	return body.Revoked, nil
}

// GetStatistics returns directory-wide account counts.
func (s *Session) GetStatistics(ctx context.Context) (*Statistics, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/accounts/stats", nil, nil)
	if err != nil {
		return nil, err
	}

	var stats Statistics
	if err := decodeJSON(resp, &stats, http.StatusOK); err != nil {
		return nil, err
	}

	return &stats, nil
}

// SearchAccounts searches identifiers, names and colleges for a substring.
func (s *Session) SearchAccounts(ctx context.Context, q string, limit int) ([]AccountSummary, error) {
	query := url.Values{}
	query.Set("q", q)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/accounts/search?"+query.Encode(), nil, nil)
	if err != nil {
		return nil, err
	}

	var body struct {
		Accounts []AccountSummary `json:"accounts"`
	}
	if err := decodeJSON(resp, &body, http.StatusOK); err != nil {
		return nil, err
	}

	return body.Accounts, nil
}

// ExportAccounts returns the full, unpaged account listing, optionally
// filtered by role and college.
func (s *Session) ExportAccounts(ctx context.Context, role, college string) ([]AccountSummary, error) {
	query := url.Values{}
	if role != "" {
		query.Set("role", role)
	}
	if college != "" {
		query.Set("college", college)
	}

	path := "/v1/accounts/export"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	resp, err := s.doAuthRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var body struct {
		Accounts []AccountSummary `json:"accounts"`
	}
	if err := decodeJSON(resp, &body, http.StatusOK); err != nil {
		return nil, err
	}

	return body.Accounts, nil
}

// ListColleges returns the distinct colleges present in the directory. This
// one is open to any authenticated account, not just administrators.
func (s *Session) ListColleges(ctx context.Context) ([]string, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/colleges", nil, nil)
	if err != nil {
		return nil, err
	}

	var body struct {
		Colleges []string `json:"colleges"`
	}
	if err := decodeJSON(resp, &body, http.StatusOK); err != nil {
		return nil, err
	}

	return body.Colleges, nil
}
