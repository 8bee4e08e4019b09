package directorysdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client is a client for the campus directory service. It provides access to
// unauthenticated operations and can create authenticated Sessions.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new directory service client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Login verifies an identifier/secret pair and returns an authenticated
// Session carrying the issued token. The returned LoginResult includes the
// account summary and whether the account still uses its default secret.
func (c *Client) Login(ctx context.Context, identifier, secret string) (*Session, *LoginResult, error) {
	payload, err := json.Marshal(map[string]string{
		"identifier": identifier,
		"secret":     secret,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode login request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/login", bytes.NewReader(payload), map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return nil, nil, err
	}

	var result LoginResult
	if err := decodeJSON(resp, &result, http.StatusOK); err != nil {
		return nil, nil, err
	}

	return newSession(c, result.Token, result.ExpiresAt), &result, nil
}

// SessionFromToken creates a Session from a previously issued token, for
// example one stored by an earlier login.
func (c *Client) SessionFromToken(token string, expiresAt time.Time) *Session {
	return newSession(c, token, expiresAt)
}
