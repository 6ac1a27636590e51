// Package service contains the application use cases: creating, updating,
// deleting and listing tasks, registering users and authenticating them.
//
// Services receive an already verified domain.Principal and enforce the role
// policies from internal/service/auth themselves, so every entry point is
// protected regardless of how it is reached. Task summaries are encrypted
// before they are handed to the store and decrypted only when a response is
// assembled.
//
// Error handling:
//   - expected conditions are sentinel errors (ErrTaskNotFound, ErrNotTaskOwner, ...)
//   - storage failures are wrapped in *PersistenceError
//   - role failures are *auth.RoleDeniedError
//   - input problems are *domain.ValidationError
package service
