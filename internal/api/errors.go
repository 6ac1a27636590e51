package api

import (
	"errors"
	"net/http"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/api/shared"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/domain"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/service"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/service/auth"
)

// Client-facing messages.
const (
	msgTaskNotFound     = "Task not found."
	msgNotTaskOwner     = "Cannot update another technicians task."
	msgUserNotFound     = "User not found."
	msgWrongCredentials = "Unauthorized request. Wrong email or password."
	msgEmailExists      = "Email already exists."
	msgInvalidRequest   = "Invalid request format."
)

// MapErrorToStatusCode maps service errors to HTTP status codes. Anything
// not recognized is an internal error.
func MapErrorToStatusCode(err error) int {
	var roleDenied *auth.RoleDeniedError
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity

	case errors.Is(err, auth.ErrMissingCredential),
		errors.Is(err, auth.ErrInvalidCredential),
		errors.As(err, &roleDenied),
		errors.Is(err, service.ErrWrongPassword):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrNotTaskOwner):
		return http.StatusForbidden

	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrEmailExists):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns the client-facing message for a mapped error.
func GetSafeErrorMessage(err error) string {
	var roleDenied *auth.RoleDeniedError
	switch {
	case errors.As(err, &roleDenied):
		return roleDenied.Message
	case errors.Is(err, auth.ErrMissingCredential),
		errors.Is(err, auth.ErrInvalidCredential):
		return shared.NotAuthorizedMessage
	case errors.Is(err, service.ErrWrongPassword):
		return msgWrongCredentials
	case errors.Is(err, service.ErrNotTaskOwner):
		return msgNotTaskOwner
	case errors.Is(err, service.ErrTaskNotFound):
		return msgTaskNotFound
	case errors.Is(err, service.ErrUserNotFound):
		return msgUserNotFound
	case errors.Is(err, service.ErrEmailExists):
		return msgEmailExists
	default:
		return "A problem has occurred. Please try again."
	}
}

// errorName identifies err in the 500 envelope.
func errorName(err error) string {
	var named interface{ Name() string }
	if errors.As(err, &named) {
		return named.Name()
	}
	return "Error"
}

// HandleAPIError writes the response for an error returned by a service.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		shared.RespondWithValidationErrors(w, r, verr)
		return
	}

	status := MapErrorToStatusCode(err)
	if status == http.StatusInternalServerError {
		shared.RespondWithInternalError(w, r, errorName(err), err)
		return
	}

	var opts []shared.ResponseOption
	if status == http.StatusForbidden || status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err, opts...)
}
