package service

import (
	"errors"
	"fmt"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/store"
)

// Service errors callers check with errors.Is. The API layer maps each to a
// status code; anything else becomes a 500.
var (
	// ErrTaskNotFound indicates the task does not exist. Maps to 404.
	ErrTaskNotFound = errors.New("task not found")

	// ErrNotTaskOwner indicates a technician tried to modify another
	// technician's task. Maps to 403.
	ErrNotTaskOwner = errors.New("task is owned by another technician")

	// ErrUserNotFound indicates no account matches the login email. Maps to 404.
	ErrUserNotFound = errors.New("user not found")

	// ErrWrongPassword indicates the password does not match. Maps to 401.
	ErrWrongPassword = errors.New("wrong password")

	// ErrEmailExists indicates the email is already registered. Maps to 409.
	ErrEmailExists = errors.New("email already registered")
)

// PersistenceError wraps a storage failure. It is never retried by the
// service; the request fails and the client may try again.
type PersistenceError struct {
	// Operation is the service operation that failed (e.g., "create_task")
	Operation string
	// Err is the underlying store error
	Err error
}

// Error implements the error interface for PersistenceError.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s failed: persistence error: %v", e.Operation, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Name identifies the error kind in API error envelopes.
func (e *PersistenceError) Name() string {
	return "PersistenceError"
}

// wrapStoreError translates store sentinels into service sentinels and wraps
// everything else in a PersistenceError.
func wrapStoreError(operation string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, store.ErrTaskNotFound):
		return ErrTaskNotFound
	case errors.Is(err, store.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, store.ErrEmailExists):
		return ErrEmailExists
	}

	return &PersistenceError{
		Operation: operation,
		Err:       err,
	}
}
