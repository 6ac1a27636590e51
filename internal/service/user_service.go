package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/domain"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/platform/logger"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/service/auth"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/store"
	"github.com/jmoiron/sqlx"
)

// CreateUserInput holds the fields of a new account.
type CreateUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      domain.Role
}

// UserService provides account registration and login checks.
type UserService interface {
	// CreateUser hashes the password and stores a new user.
	// Returns ErrEmailExists if the email is already registered.
	CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error)

	// Authenticate returns the user matching email and password.
	// Returns ErrUserNotFound or ErrWrongPassword.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore store.UserStore
	hasher    auth.PasswordHasher
	db        *sqlx.DB
	logger    *slog.Logger
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService
func NewUserService(
	userStore store.UserStore,
	hasher auth.PasswordHasher,
	db *sqlx.DB,
	logger *slog.Logger,
) *UserServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		userStore: userStore,
		hasher:    hasher,
		db:        db,
		logger:    logger.With("component", "user_service"),
	}
}

// CreateUser creates a new user inside a transaction.
func (s *UserServiceImpl) CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if in.Password == "" {
		return nil, domain.NewValidationError("password", "Password cannot be empty.")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		log.Error("failed to hash password", "error", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user := &domain.User{
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         in.Role,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		return s.userStore.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			return nil, err
		case errors.Is(err, store.ErrEmailExists):
			log.Debug("attempted to create user with existing email")
		default:
			log.Error("failed to save user to database", "error", err)
		}
		return nil, wrapStoreError("create_user", err)
	}

	log.Info("user created successfully",
		"user_id", user.ID,
		"role", string(user.Role))

	return user, nil
}

// Authenticate implements UserService.
func (s *UserServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			log.Error("failed to look up user for login", "error", err)
		}
		return nil, wrapStoreError("authenticate", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		log.Debug("password mismatch", "user_id", user.ID)
		return nil, ErrWrongPassword
	}

	return user, nil
}
