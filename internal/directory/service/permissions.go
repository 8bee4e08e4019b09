package service

import "github.com/campusops/lostfound/internal/directory/domain"

// Permission names understood by the authorization layer. The wildcard
// grants everything and is reserved for administrators.
const (
	PermissionAll = "*"

	PermissionProfileRead  = "profile:read"
	PermissionProfileWrite = "profile:write"
	PermissionItemsRead    = "items:read"
	PermissionItemsWrite   = "items:write"
	PermissionItemsDelete  = "items:delete"
	PermissionClaimsCreate = "claims:create"
	PermissionClaimsReview = "claims:review"
)

var studentPermissions = []string{
	PermissionProfileRead,
	PermissionProfileWrite,
	PermissionItemsRead,
	PermissionClaimsCreate,
}

// Staff hold everything students hold plus the curation permissions.
var staffOnlyPermissions = []string{
	PermissionItemsWrite,
	PermissionItemsDelete,
	PermissionClaimsReview,
}

// PermissionsFor returns the permission set granted to a role. The returned
// slice is a fresh copy; callers may mutate it freely. Unknown roles get
// nothing.
func PermissionsFor(role domain.Role) []string {
	switch role {
	case domain.RoleStudent:
		out := make([]string, len(studentPermissions))
		copy(out, studentPermissions)
		return out
	case domain.RoleStaff:
		out := make([]string, 0, len(studentPermissions)+len(staffOnlyPermissions))
		out = append(out, studentPermissions...)
		out = append(out, staffOnlyPermissions...)
		return out
	case domain.RoleAdmin:
		return []string{PermissionAll}
	default:
		return nil
	}
}

// HasPermission reports whether a role grants the permission, honouring the
// admin wildcard.
func HasPermission(role domain.Role, permission string) bool {
	for _, granted := range PermissionsFor(role) {
		if granted == PermissionAll || granted == permission {
			return true
		}
	}
	return false
}
