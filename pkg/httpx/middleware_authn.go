package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/campusops/lostfound/pkg/slogx"
)

// PermissionAll is the wildcard permission that matches every check.
const PermissionAll = "*"

// Principal describes the authenticated caller attached to a request.
type Principal struct {
	AccountID   string
	Identifier  string
	Role        string
	Permissions []string
}

// Allows reports whether the principal holds the permission, honouring the
// wildcard.
func (p Principal) Allows(permission string) bool {
	for _, granted := range p.Permissions {
		if granted == PermissionAll || granted == permission {
			return true
		}
	}
	return false
}

// Authenticator resolves a bearer session token to a principal. Expired,
// revoked or never-issued tokens must produce an error.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Principal, error)
}

// AuthnMiddleware validates the bearer session token on each request and
// injects the resulting principal into the request context.
func AuthnMiddleware(a Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			token, ok := BearerToken(r)
			if !ok {
				writeBearerError(w, "missing bearer token")
				return
			}

			principal, err := a.Authenticate(ctx, token)
			if err != nil {
				log.Warn("session authentication failed", "err", err)
				writeBearerError(w, "invalid or expired session token")
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithPrincipal(ctx, principal)))
		})
	}
}

// BearerToken extracts the bearer token from the Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
	return token, token != ""
}

// RFC 6750-style error response for bearer auth failures, with the service's
// JSON envelope in the body.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             "invalid_token",
		"error_description": desc,
	})
}
