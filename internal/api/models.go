package api

import (
	"strings"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/domain"
)

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse defines the successful response of the login endpoint.
type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// CreateUserRequest defines the payload for the user registration endpoint.
type CreateUserRequest struct {
	Email     string `json:"email"     validate:"required,email"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"  validate:"required"`
	Password  string `json:"password"  validate:"required"`
	Role      string `json:"role"      validate:"required,oneof=Manager Technician"`
}

// Normalize trims every field and lowercases the email.
func (r *CreateUserRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Password = strings.TrimSpace(r.Password)
	r.Role = strings.TrimSpace(r.Role)
}

// ValidationMessages implements shared.ValidationMessages.
func (r *CreateUserRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"email.required":     "Email cannot be empty.",
		"email.email":        "Email is not in a valid format.",
		"email.type":         "Email is not in a valid format.",
		"firstName.required": "First name cannot be empty.",
		"lastName.required":  "Last name cannot be empty.",
		"password.required":  "Password cannot be empty.",
		"role.required":      "Role cannot be empty.",
		"role.oneof":         "Role must be a valid value.",
	}
}

// CreateUserResponse wraps the stored user. The password hash is never serialized.
type CreateUserResponse struct {
	NewUser *domain.User `json:"newUser"`
}

// taskFieldMessages are shared by the create and update payloads.
var taskFieldMessages = map[string]string{
	"performedAt.type":      "PerformedAt is not a valid date.",
	"performedAt.required":  "PerformedAt is not a valid date.",
	"performedAt.isodate":   "PerformedAt is not a valid date.",
	"performedAt.notfuture": "Task cannot have been performed in the future!",
	"summary.type":          "Summary must be text.",
	"summary.required":      "Summary cannot be empty.",
	"summary.max":           "Summary has exceeded max length of 2500 characters.",
}

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	PerformedAt string `json:"performedAt" validate:"required,isodate,notfuture"`
	Summary     string `json:"summary"     validate:"required,max=2500"`
}

// Normalize trims the summary.
func (r *CreateTaskRequest) Normalize() {
	r.PerformedAt = strings.TrimSpace(r.PerformedAt)
	r.Summary = strings.TrimSpace(r.Summary)
}

// ValidationMessages implements shared.ValidationMessages.
func (r *CreateTaskRequest) ValidationMessages() map[string]string {
	return taskFieldMessages
}

// UpdateTaskRequest defines the payload for updating a task. Empty fields
// are left unchanged.
type UpdateTaskRequest struct {
	PerformedAt string `json:"performedAt" validate:"omitempty,isodate,notfuture"`
	Summary     string `json:"summary"     validate:"omitempty,max=2500"`
}

// Normalize trims the summary.
func (r *UpdateTaskRequest) Normalize() {
	r.PerformedAt = strings.TrimSpace(r.PerformedAt)
	r.Summary = strings.TrimSpace(r.Summary)
}

// ValidationMessages implements shared.ValidationMessages.
func (r *UpdateTaskRequest) ValidationMessages() map[string]string {
	return taskFieldMessages
}

// UpdateTaskResponse reports the outcome of an update.
type UpdateTaskResponse struct {
	Message      string `json:"message"`
	UpdatedCount *int64 `json:"updatedCount,omitempty"`
}
