package directorysdk

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoginParsesResult(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/auth/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"token": "tok-123",
			"expires_at": "2026-01-02T15:04:05Z",
			"expires_in": 86400,
			"account": {"id": "acc-1", "identifier": "20230001", "real_name": "Zhang Wei", "role": "student", "status": "active"},
			"require_password_change": true
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	session, result, err := client.Login(t.Context(), "20230001", "230001")
	require.NoError(t, err)

	require.Equal(t, "tok-123", session.Token())
	require.Equal(t, "tok-123", result.Token)
	require.True(t, result.RequirePasswordChange)
	require.Equal(t, "20230001", result.Account.Identifier)
	require.EqualValues(t, 86400, result.ExpiresIn)
	require.Equal(t, time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC), session.ExpiresAt())
}

func TestLoginErrorCarriesRemainingAttempts(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "invalid_credentials", "error_description": "identifier or secret is incorrect", "remaining_attempts": 2}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, _, err := client.Login(t.Context(), "20230001", "wrong")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, ErrorCodeInvalidCredentials, apiErr.Code)
	require.NotNil(t, apiErr.RemainingAttempts)
	require.Equal(t, 2, *apiErr.RemainingAttempts)
	require.Contains(t, err.Error(), "2 attempts remaining")
}

func TestSessionAddsBearerHeader(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-xyz", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "acc-1", "identifier": "T1001", "real_name": "Li Hua", "role": "staff", "status": "active"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	session := client.SessionFromToken("tok-xyz", time.Now().Add(time.Hour))

	me, err := session.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, "T1001", me.Identifier)
	require.Equal(t, "staff", me.Role)
}

func TestUnparseableErrorFallsBack(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.GetLiveness(t.Context())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Equal(t, ErrorCodeServerError, apiErr.Code)
}
