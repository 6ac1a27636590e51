package domain

import "fmt"

// Role gates which operations a principal may invoke.
type Role string

// Known roles. The string values are persisted and embedded in tokens.
const (
	RoleManager    Role = "Manager"
	RoleTechnician Role = "Technician"
)

// ParseRole converts a string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleManager, RoleTechnician:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleManager || r == RoleTechnician
}

// Principal is the identity reconstructed from a verified bearer token.
// It is never persisted.
type Principal struct {
	ID          int64
	Email       string
	DisplayName string
	Role        Role
}

// IsTechnician reports whether the principal acts as a technician.
func (p Principal) IsTechnician() bool {
	return p.Role == RoleTechnician
}
