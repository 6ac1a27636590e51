package mocks

import (
	"context"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/domain"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/service"
)

// MockUserService implements service.UserService for testing
type MockUserService struct {
	CreateUserFn   func(ctx context.Context, in service.CreateUserInput) (*domain.User, error)
	AuthenticateFn func(ctx context.Context, email, password string) (*domain.User, error)

	// AuthenticateCalls counts Authenticate invocations
	AuthenticateCalls int
}

var _ service.UserService = (*MockUserService)(nil)

// CreateUser implements the service.UserService interface
func (m *MockUserService) CreateUser(ctx context.Context, in service.CreateUserInput) (*domain.User, error) {
	if m.CreateUserFn != nil {
		return m.CreateUserFn(ctx, in)
	}
	return &domain.User{ID: 1, Email: in.Email, FirstName: in.FirstName, LastName: in.LastName, Role: in.Role}, nil
}

// Authenticate implements the service.UserService interface
func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	m.AuthenticateCalls++
	if m.AuthenticateFn != nil {
		return m.AuthenticateFn(ctx, email, password)
	}
	return nil, service.ErrUserNotFound
}
