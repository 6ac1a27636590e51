package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/api/shared"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/domain"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/mocks"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	user := &domain.User{ID: 3, Email: "tech@example.com", Role: domain.RoleTechnician}

	tests := []struct {
		name       string
		body       any
		authErr    error
		issueErr   error
		wantStatus int
		wantMsg    string
		wantCalls  int
	}{
		{name: "success", body: LoginRequest{Email: "tech@example.com", Password: "pw"},
			wantStatus: http.StatusOK, wantMsg: "Login successful.", wantCalls: 1},
		{name: "missing password", body: LoginRequest{Email: "tech@example.com"},
			wantStatus: http.StatusBadRequest, wantMsg: "Invalid request. Missing parameters: email or password."},
		{name: "missing email", body: LoginRequest{Password: "pw"},
			wantStatus: http.StatusBadRequest, wantMsg: "Invalid request. Missing parameters: email or password."},
		{name: "malformed body", body: `{"email":`,
			wantStatus: http.StatusBadRequest, wantMsg: "Invalid request. Missing parameters: email or password."},
		{name: "unknown user", body: LoginRequest{Email: "ghost@example.com", Password: "pw"}, authErr: service.ErrUserNotFound,
			wantStatus: http.StatusNotFound, wantMsg: "User not found.", wantCalls: 1},
		{name: "wrong password", body: LoginRequest{Email: "tech@example.com", Password: "nope"}, authErr: service.ErrWrongPassword,
			wantStatus: http.StatusUnauthorized, wantMsg: "Unauthorized request. Wrong email or password.", wantCalls: 1},
		{name: "token failure", body: LoginRequest{Email: "tech@example.com", Password: "pw"}, issueErr: errors.New("signing failed"),
			wantStatus: http.StatusInternalServerError, wantMsg: "A problem has occurred. Please try again.", wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &mocks.MockUserService{
				AuthenticateFn: func(_ context.Context, email, password string) (*domain.User, error) {
					if tt.authErr != nil {
						return nil, tt.authErr
					}
					return user, nil
				},
			}
			tokens := &mocks.MockTokenService{Token: "signed.jwt.token", Err: tt.issueErr}
			h := NewAuthHandler(users, tokens, nil)

			w := doRequest(t, http.HandlerFunc(h.Login), http.MethodPost, "/login", tt.body)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.wantCalls, users.AuthenticateCalls)
			if tt.wantStatus == http.StatusOK {
				resp := decodeBody[LoginResponse](t, w)
				assert.Equal(t, tt.wantMsg, resp.Message)
				assert.Equal(t, "signed.jwt.token", resp.Token)
				return
			}
			assert.Equal(t, tt.wantMsg, decodeBody[shared.MessageResponse](t, w).Message)
		})
	}
}
