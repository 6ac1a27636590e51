package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/config"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/domain"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/platform/logger"
	"github.com/golang-jwt/jwt/v5"
)

const bearerScheme = "Bearer"

// TokenService issues and verifies the bearer tokens that identify callers.
type TokenService interface {
	// Issue signs a token describing user. Used by the login endpoint.
	Issue(ctx context.Context, user *domain.User) (string, error)

	// Verify checks the raw Authorization header value (with or without the
	// "Bearer " prefix) and reconstructs the principal from its claims.
	// It never consults storage, so a role change takes effect only once
	// previously issued tokens expire.
	Verify(ctx context.Context, rawHeader string) (domain.Principal, error)
}

// tokenClaims is the claim set shared with other services using the same secret.
type tokenClaims struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	UserID   int64  `json:"id"`
	jwt.RegisteredClaims
}

// hmacTokenService is an implementation of TokenService using HMAC-SHA256 signing.
type hmacTokenService struct {
	signingKey    []byte
	tokenLifetime time.Duration    // zero issues tokens without exp
	timeFunc      func() time.Time // Injectable for testing
	clockSkew     time.Duration
}

var _ TokenService = (*hmacTokenService)(nil)

// NewTokenService creates a TokenService using HMAC-SHA256 signing.
func NewTokenService(cfg config.AuthConfig) (TokenService, error) {
	return newTokenService(cfg, time.Now)
}

func newTokenService(cfg config.AuthConfig, timeFunc func() time.Time) (*hmacTokenService, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}
	if cfg.TokenLifetimeMinutes < 0 {
		return nil, fmt.Errorf("token lifetime must not be negative")
	}

	return &hmacTokenService{
		signingKey:    []byte(cfg.JWTSecret),
		tokenLifetime: time.Duration(cfg.TokenLifetimeMinutes) * time.Minute,
		timeFunc:      timeFunc,
		clockSkew:     2 * time.Minute,
	}, nil
}

// Issue creates a signed token carrying the user's identity and role.
func (s *hmacTokenService) Issue(ctx context.Context, user *domain.User) (string, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()

	claims := tokenClaims{
		Email:    user.Email,
		FullName: user.FullName(),
		Role:     string(user.Role),
		UserID:   user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.tokenLifetime > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.tokenLifetime))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		log.Error("failed to sign token",
			"error", err,
			"user_id", user.ID,
			"signing_method", jwt.SigningMethodHS256.Name)
		return "", fmt.Errorf("failed to sign token with HMAC-SHA256: %w", err)
	}

	return signed, nil
}

// Verify validates the bearer token and returns the principal it describes.
func (s *hmacTokenService) Verify(ctx context.Context, rawHeader string) (domain.Principal, error) {
	log := logger.FromContext(ctx)

	tokenString := stripBearer(rawHeader)
	if tokenString == "" {
		return domain.Principal{}, ErrMissingCredential
	}

	now := s.timeFunc()
	token, err := jwt.ParseWithClaims(
		tokenString,
		&tokenClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("token verification failed: token expired", "error", err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			log.Debug("token verification failed: malformed token", "error", err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			log.Debug("token verification failed: invalid signature", "error", err)
		default:
			log.Debug("token verification failed",
				"error", err,
				"error_type", fmt.Sprintf("%T", err))
		}
		return domain.Principal{}, ErrInvalidCredential
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		log.Debug("token verification failed: invalid claims")
		return domain.Principal{}, ErrInvalidCredential
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil || claims.UserID <= 0 {
		log.Debug("token verification failed: claims do not describe a principal",
			"role", claims.Role,
			"user_id", claims.UserID)
		return domain.Principal{}, ErrInvalidCredential
	}

	return domain.Principal{
		ID:          claims.UserID,
		Email:       claims.Email,
		DisplayName: claims.FullName,
		Role:        role,
	}, nil
}

// stripBearer removes an optional "Bearer" scheme and surrounding whitespace.
// A header carrying only the scheme yields an empty token.
func stripBearer(rawHeader string) string {
	header := strings.TrimSpace(rawHeader)
	rest, ok := strings.CutPrefix(header, bearerScheme)
	if !ok {
		return header
	}
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return header
	}
	return strings.TrimSpace(rest)
}
