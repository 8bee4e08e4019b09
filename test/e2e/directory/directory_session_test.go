package directory_test

import (
	"net/http"
	"testing"

	"github.com/campusops/lostfound/pkg/directorysdk"
	"github.com/stretchr/testify/require"
)

// TestSessionLifecycle covers the whoami, refresh and logout flow of a
// session token.
func TestSessionLifecycle(t *testing.T) {
	client := setupDirectoryServer(t)
	session := loginAs(t, client, staffIdentifier, staffSecret)

	me, err := session.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, staffIdentifier, me.Identifier)
	require.Equal(t, "staff", me.Role)

	perms, err := session.Permissions(t.Context())
	require.NoError(t, err)
	require.Contains(t, perms, "items:write")
	require.Contains(t, perms, "claims:review")
	require.NotContains(t, perms, "*")

	oldToken := session.Token()
	result, err := session.Refresh(t.Context())
	require.NoError(t, err)
	require.NotEqual(t, oldToken, session.Token())
	require.Equal(t, result.Token, session.Token())

	// The rotated-out token must be dead.
	stale := client.SessionFromToken(oldToken, result.ExpiresAt)
	_, err = stale.Me(t.Context())
	assertAPIError(t, err, http.StatusUnauthorized, directorysdk.ErrorCodeInvalidToken)

	require.NoError(t, session.Logout(t.Context()))

	_, err = session.Me(t.Context())
	assertAPIError(t, err, http.StatusUnauthorized, directorysdk.ErrorCodeInvalidToken)
}

// TestStudentPermissions verifies the student role carries only the read and
// claim scopes.
func TestStudentPermissions(t *testing.T) {
	client := setupDirectoryServer(t)
	session := loginAs(t, client, studentIdentifier, studentSecret)

	perms, err := session.Permissions(t.Context())
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"profile:read", "profile:write", "items:read", "claims:create"}, perms)
}

// TestChangePassword covers the full secret rotation flow, including the
// rule that a wrong current secret does not trip the lockout.
func TestChangePassword(t *testing.T) {
	client := setupDirectoryServer(t)
	session := loginAs(t, client, studentIdentifier, studentSecret)

	// Wrong current secret is a mismatch, not a lockout strike.
	err := session.ChangePassword(t.Context(), "not-the-secret", "fresh-secret-1", "fresh-secret-1")
	assertAPIError(t, err, http.StatusBadRequest, directorysdk.ErrorCodeSecretMismatch)

	// Too short.
	err = session.ChangePassword(t.Context(), studentSecret, "abc", "abc")
	assertAPIError(t, err, http.StatusBadRequest, directorysdk.ErrorCodeValidationFailed)

	// Confirmation mismatch.
	err = session.ChangePassword(t.Context(), studentSecret, "fresh-secret-1", "fresh-secret-2")
	assertAPIError(t, err, http.StatusBadRequest, directorysdk.ErrorCodeValidationFailed)

	require.NoError(t, session.ChangePassword(t.Context(), studentSecret, "fresh-secret-1", "fresh-secret-1"))

	// The earlier mismatch must not have burned lockout attempts; the new
	// secret logs in first try and is no longer flagged as default.
	_, result, err := client.Login(t.Context(), studentIdentifier, "fresh-secret-1")
	require.NoError(t, err)
	require.False(t, result.RequirePasswordChange)
}
