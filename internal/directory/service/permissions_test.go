package service

import (
	"testing"

	"github.com/campusops/lostfound/internal/directory/domain"
	"github.com/stretchr/testify/require"
)

func TestPermissionsFor(t *testing.T) {
	t.Run("student", func(t *testing.T) {
		perms := PermissionsFor(domain.RoleStudent)
		require.ElementsMatch(t, []string{
			PermissionProfileRead,
			PermissionProfileWrite,
			PermissionItemsRead,
			PermissionClaimsCreate,
		}, perms)
	})

	t.Run("staff holds everything students hold", func(t *testing.T) {
		student := PermissionsFor(domain.RoleStudent)
		staff := PermissionsFor(domain.RoleStaff)

		require.Subset(t, staff, student)
		require.Contains(t, staff, PermissionItemsWrite)
		require.Contains(t, staff, PermissionItemsDelete)
		require.Contains(t, staff, PermissionClaimsReview)
	})

	t.Run("admin gets the wildcard", func(t *testing.T) {
		require.Equal(t, []string{PermissionAll}, PermissionsFor(domain.RoleAdmin))
	})

	t.Run("unknown role gets nothing", func(t *testing.T) {
		require.Empty(t, PermissionsFor(domain.Role("janitor")))
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		perms := PermissionsFor(domain.RoleStudent)
		perms[0] = "tampered"
		require.NotContains(t, PermissionsFor(domain.RoleStudent), "tampered")
	})
}

func TestHasPermission(t *testing.T) {
	require.True(t, HasPermission(domain.RoleStudent, PermissionItemsRead))
	require.False(t, HasPermission(domain.RoleStudent, PermissionItemsWrite))

	require.True(t, HasPermission(domain.RoleStaff, PermissionItemsWrite))
	require.True(t, HasPermission(domain.RoleStaff, PermissionClaimsReview))
	require.False(t, HasPermission(domain.RoleStaff, "accounts:admin"))

	// Wildcard covers permissions that were never enumerated.
	require.True(t, HasPermission(domain.RoleAdmin, PermissionItemsWrite))
	require.True(t, HasPermission(domain.RoleAdmin, "anything:else"))

	require.False(t, HasPermission(domain.Role("janitor"), PermissionItemsRead))
}
