package httpx

import "net/http"

// RequirePermission rejects requests whose principal does not hold the
// permission. Must run after AuthnMiddleware.
func RequirePermission(permission string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok || !principal.Allows(permission) {
				writePermissionError(w, permission)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writePermissionError(w http.ResponseWriter, permission string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="insufficient_scope", scope="`+permission+`"`)
	WriteJSON(w, http.StatusForbidden, map[string]string{
		"error":             "insufficient_scope",
		"error_description": "the session does not hold the required permission",
	})
}
