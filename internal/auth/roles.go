package auth

// Admin role constants.
const (
	RoleViewer     = "viewer"
	RoleModerator  = "moderator"
	RoleSuperAdmin = "superadmin"
)

// AllAdminRoles returns all valid admin roles.
func AllAdminRoles() []string {
	return []string{RoleViewer, RoleModerator, RoleSuperAdmin}
}

// WriteRoles returns roles that can modify data.
func WriteRoles() []string {
	return []string{RoleModerator, RoleSuperAdmin}
}
