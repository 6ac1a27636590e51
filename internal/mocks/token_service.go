package mocks

import (
	"context"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/domain"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/service/auth"
)

// MockTokenService implements auth.TokenService for testing
type MockTokenService struct {
	// IssueFn allows test cases to mock the Issue behavior
	IssueFn func(ctx context.Context, user *domain.User) (string, error)

	// VerifyFn allows test cases to mock the Verify behavior
	VerifyFn func(ctx context.Context, rawHeader string) (domain.Principal, error)

	// Default values used when functions aren't explicitly defined
	Token     string
	Err       error
	Principal domain.Principal
	VerifyErr error
}

var _ auth.TokenService = (*MockTokenService)(nil)

// Issue implements the auth.TokenService interface
func (m *MockTokenService) Issue(ctx context.Context, user *domain.User) (string, error) {
	if m.IssueFn != nil {
		return m.IssueFn(ctx, user)
	}
	return m.Token, m.Err
}

// Verify implements the auth.TokenService interface
func (m *MockTokenService) Verify(ctx context.Context, rawHeader string) (domain.Principal, error) {
	if m.VerifyFn != nil {
		return m.VerifyFn(ctx, rawHeader)
	}
	return m.Principal, m.VerifyErr
}
