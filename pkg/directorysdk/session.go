package directorysdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Session represents an authenticated session with the directory service.
// It is safe for concurrent use; Refresh rotates the token in place so all
// goroutines sharing the session pick up the new one.
type Session struct {
	client *Client

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
}

func newSession(client *Client, token string, expiresAt time.Time) *Session {
	return &Session{
		client:    client,
		token:     token,
		expiresAt: expiresAt,
	}
}

// Token returns the current session token.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// ExpiresAt returns when the current token expires.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// Me returns the account behind this session.
func (s *Session) Me(ctx context.Context) (*AccountSummary, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/auth/me", nil, nil)
	if err != nil {
		return nil, err
	}

	var summary AccountSummary
	if err := decodeJSON(resp, &summary, http.StatusOK); err != nil {
		return nil, err
	}

	return &summary, nil
}

// Permissions lists the permissions granted by the session account's role.
func (s *Session) Permissions(ctx context.Context) ([]string, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/auth/permissions", nil, nil)
	if err != nil {
		return nil, err
	}

	var body struct {
		Permissions []string `json:"permissions"`
	}
	if err := decodeJSON(resp, &body, http.StatusOK); err != nil {
		return nil, err
	}

	return body.Permissions, nil
}

// Refresh swaps the session token for a fresh one with a full TTL. The old
// token is revoked server-side.
func (s *Session) Refresh(ctx context.Context) (*LoginResult, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/auth/refresh", nil, nil)
	if err != nil {
		return nil, err
	}

	var result LoginResult
	if err := decodeJSON(resp, &result, http.StatusOK); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.token = result.Token
	s.expiresAt = result.ExpiresAt
	s.mu.Unlock()

	return &result, nil
}

// Logout revokes the session token. The session must not be used afterwards.
func (s *Session) Logout(ctx context.Context) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/auth/logout", nil, nil)
	if err != nil {
		return err
	}

	return checkStatusNoContent(resp)
}

// ChangePassword replaces the session account's secret after re-verifying the
// current one. A wrong current secret does not count toward the lockout.
func (s *Session) ChangePassword(ctx context.Context, oldSecret, newSecret, confirmSecret string) error {
	payload, err := json.Marshal(map[string]string{
		"old_secret":     oldSecret,
		"new_secret":     newSecret,
		"confirm_secret": confirmSecret,
	})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/auth/password", bytes.NewReader(payload), map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return err
	}

	return checkStatusNoContent(resp)
}
