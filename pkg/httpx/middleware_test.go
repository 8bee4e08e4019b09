package httpx_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campusops/lostfound/pkg/httpx"
	"github.com/stretchr/testify/require"
)

type staticAuthenticator struct {
	token     string
	principal httpx.Principal
}

func (a staticAuthenticator) Authenticate(_ context.Context, token string) (httpx.Principal, error) {
	if token != a.token {
		return httpx.Principal{}, errors.New("invalid_token")
	}
	return a.principal, nil
}

func TestPrincipalAllows(t *testing.T) {
	p := httpx.Principal{Permissions: []string{"items:read", "claims:create"}}
	require.True(t, p.Allows("items:read"))
	require.False(t, p.Allows("items:write"))

	admin := httpx.Principal{Permissions: []string{httpx.PermissionAll}}
	require.True(t, admin.Allows("anything:at-all"))
}

func TestBearerToken(t *testing.T) {
	t.Run("extracts token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer abc123")

		token, ok := httpx.BearerToken(req)
		require.True(t, ok)
		require.Equal(t, "abc123", token)
	})

	t.Run("rejects missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		_, ok := httpx.BearerToken(req)
		require.False(t, ok)
	})

	t.Run("rejects non-bearer scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

		_, ok := httpx.BearerToken(req)
		require.False(t, ok)
	})
}

func TestAuthnMiddleware(t *testing.T) {
	auth := staticAuthenticator{
		token: "good-token",
		principal: httpx.Principal{
			AccountID:   "01ARZ3NDEKTSV4RRFFQ69G5FAV",
			Identifier:  "20230001",
			Role:        "student",
			Permissions: []string{"items:read"},
		},
	}

	var seen httpx.Principal
	handler := httpx.AuthnMiddleware(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = httpx.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid token attaches principal", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "20230001", seen.Identifier)
	})

	t.Run("missing token yields 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
	})

	t.Run("unknown token yields 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequirePermission(t *testing.T) {
	auth := staticAuthenticator{
		token: "student-token",
		principal: httpx.Principal{
			Identifier:  "20230001",
			Role:        "student",
			Permissions: []string{"items:read"},
		},
	}

	protected := httpx.Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
		httpx.AuthnMiddleware(auth),
		httpx.RequirePermission("items:write"),
	)

	t.Run("denied without permission", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer student-token")
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("denied without principal", func(t *testing.T) {
		bare := httpx.RequirePermission("items:write")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		rec := httptest.NewRecorder()

		bare.ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("allowed with wildcard", func(t *testing.T) {
		admin := staticAuthenticator{
			token:     "admin-token",
			principal: httpx.Principal{Role: "admin", Permissions: []string{httpx.PermissionAll}},
		}
		adminProtected := httpx.Chain(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}),
			httpx.AuthnMiddleware(admin),
			httpx.RequirePermission("items:write"),
		)

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer admin-token")
		rec := httptest.NewRecorder()

		adminProtected.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}
