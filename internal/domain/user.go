package domain

import (
	"time"
)

// User is an account able to log in. Only the user subsystem writes users;
// the task core references them by ID.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// FullName is the display name carried in issued tokens.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Principal returns the request identity corresponding to this user.
func (u *User) Principal() Principal {
	return Principal{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.FullName(),
		Role:        u.Role,
	}
}

// Validate checks the fields required before the user is stored.
func (u *User) Validate() error {
	verr := &ValidationError{}
	if u.Email == "" {
		verr.Add("email", "Email cannot be empty.")
	}
	if u.FirstName == "" {
		verr.Add("firstName", "First name cannot be empty.")
	}
	if u.LastName == "" {
		verr.Add("lastName", "Last name cannot be empty.")
	}
	if u.PasswordHash == "" {
		verr.Add("password", "Password cannot be empty.")
	}
	if !u.Role.Valid() {
		verr.Add("role", "Role must be a valid value.")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}
