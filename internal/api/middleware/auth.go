package middleware

import (
	"errors"
	"net/http"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/api/shared"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/platform/logger"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/redact"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/service/auth"
)

// AuthMiddleware provides JWT authentication and role checks for routes.
type AuthMiddleware struct {
	tokens auth.TokenService
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(tokens auth.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
	}
}

// Authenticate verifies the bearer token in the Authorization header and
// stores the resulting principal in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := m.tokens.Verify(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			log := logger.FromContext(r.Context())
			switch {
			case errors.Is(err, auth.ErrMissingCredential):
				log.Debug("request without credential", "path", r.URL.Path)
			case errors.Is(err, auth.ErrInvalidCredential):
				log.Info("rejected credential", "path", r.URL.Path, "error", redact.Error(err))
			default:
				log.Error("failed to verify credential", "error", redact.Error(err))
			}
			shared.RespondWithError(w, r, http.StatusUnauthorized, shared.NotAuthorizedMessage)
			return
		}

		ctx := shared.WithPrincipal(r.Context(), principal)
		ctx = logger.WithLogger(ctx, logger.FromContext(ctx).With(
			"user_id", principal.ID,
			"role", string(principal.Role)))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Require returns middleware admitting only principals allowed by policy.
// It must run after Authenticate.
func (m *AuthMiddleware) Require(policy auth.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := shared.PrincipalFromContext(r.Context())
			if !ok {
				shared.RespondWithError(w, r, http.StatusUnauthorized, shared.NotAuthorizedMessage)
				return
			}

			if err := policy.Check(principal); err != nil {
				var denied *auth.RoleDeniedError
				message := policy.Message
				if errors.As(err, &denied) {
					message = denied.Message
				}
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, message, err,
					shared.WithElevatedLogLevel())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
