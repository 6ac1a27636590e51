package auth

import (
	"errors"
	"strings"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/domain"
)

// Common authentication service errors
var (
	// ErrMissingCredential indicates no bearer token was supplied.
	ErrMissingCredential = errors.New("authentication token is missing")

	// ErrInvalidCredential indicates the token is malformed, expired, signed with
	// another key or algorithm, or carries claims that do not describe a principal.
	ErrInvalidCredential = errors.New("invalid authentication token")

	// ErrRoleDenied is matched by every *RoleDeniedError.
	ErrRoleDenied = errors.New("role not permitted")
)

// RoleDeniedError is returned when a verified principal lacks the role a
// policy requires. Message is safe to show to the client.
type RoleDeniedError struct {
	Policy  string
	Role    domain.Role
	Allowed []domain.Role
	Message string
}

func (e *RoleDeniedError) Error() string {
	allowed := make([]string, len(e.Allowed))
	for i, r := range e.Allowed {
		allowed[i] = string(r)
	}
	return "role " + string(e.Role) + " denied by policy " + e.Policy +
		" (allowed: " + strings.Join(allowed, ", ") + ")"
}

// Is allows errors.Is(err, ErrRoleDenied).
func (e *RoleDeniedError) Is(target error) bool {
	return target == ErrRoleDenied
}
