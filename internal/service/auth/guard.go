package auth

import (
	"slices"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/domain"
)

// Authorize reports whether the principal holds one of the required roles.
func Authorize(p domain.Principal, required ...domain.Role) bool {
	return slices.Contains(required, p.Role)
}

// Policy names a set of roles allowed to reach an operation together with
// the message returned when a caller falls outside it.
type Policy struct {
	Name    string
	Roles   []domain.Role
	Message string
}

// Named policies used by the routes and services.
var (
	TechniciansOnly = Policy{
		Name:    "TechniciansOnly",
		Roles:   []domain.Role{domain.RoleTechnician},
		Message: "This content is only accessible for technicians.",
	}
	ManagersOnly = Policy{
		Name:    "ManagersOnly",
		Roles:   []domain.Role{domain.RoleManager},
		Message: "This content is only accessible for managers.",
	}
	TaskUsers = Policy{
		Name:    "TaskUsers",
		Roles:   []domain.Role{domain.RoleTechnician, domain.RoleManager},
		Message: "This content is only accessible for task users.",
	}
)

// Check returns a *RoleDeniedError when p is not allowed by the policy.
func (pol Policy) Check(p domain.Principal) error {
	if Authorize(p, pol.Roles...) {
		return nil
	}
	return &RoleDeniedError{
		Policy:  pol.Name,
		Role:    p.Role,
		Allowed: pol.Roles,
		Message: pol.Message,
	}
}
