package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/api/shared"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/platform/logger"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/service"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/service/auth"
)

const msgMissingLoginParams = "Invalid request. Missing parameters: email or password."

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	users  service.UserService
	tokens auth.TokenService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	users service.UserService,
	tokens auth.TokenService,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		users:  users,
		tokens: tokens,
		logger: logger.With("component", "auth_handler"),
	}
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req LoginRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, msgMissingLoginParams, err)
		return
	}

	// Missing parameters are rejected before storage is consulted.
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, msgMissingLoginParams)
		return
	}

	user, err := h.users.Authenticate(r.Context(), email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(r.Context(), user)
	if err != nil {
		log.Error("failed to issue token", "error", err, "user_id", user.ID)
		HandleAPIError(w, r, err)
		return
	}

	log.Info("user logged in", "user_id", user.ID)
	shared.RespondWithJSON(w, r, http.StatusOK, LoginResponse{
		Message: "Login successful.",
		Token:   token,
	})
}
