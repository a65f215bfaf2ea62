package auth

import "errors"

// Roles known to the admin panel.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
)

// HasAdminCapability reports whether the role may receive admin
// notifications. Global notifications fan out to every identity with
// this capability.
func HasAdminCapability(role string) bool {
	return role == RoleAdmin || role == RoleManager
}

func ValidateRole(role string) error {
	switch role {
	case RoleAdmin, RoleManager:
		return nil
	default:
		return errors.New("invalid role")
	}
}
