package auth

import "strings"

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// NormalizeRole maps stored role strings onto the known roles. Anything
// unrecognised is treated as a plain admin.
func NormalizeRole(role string) Role {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case string(RoleSuperAdmin), "superadmin", "super-admin":
		return RoleSuperAdmin
	default:
		return RoleAdmin
	}
}
