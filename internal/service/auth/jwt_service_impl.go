package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/workboard-api/internal/config"
	"github.com/phrazzld/workboard-api/internal/platform/logger"
)

const (
	minSecretLength = 32
	allowedSkew     = 2 * time.Minute
)

// hmacJWTService signs and verifies HS256 access tokens.
type hmacJWTService struct {
	key      []byte
	lifetime time.Duration
	now      func() time.Time
}

// tokenClaims is the on-the-wire claim set. Name becomes the audit actor.
type tokenClaims struct {
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

var _ JWTService = (*hmacJWTService)(nil)

// NewJWTService builds the HS256 token service from auth configuration.
func NewJWTService(cfg config.AuthConfig) (JWTService, error) {
	if len(cfg.JWTSecret) < minSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", minSecretLength)
	}
	lifetime := time.Duration(cfg.TokenLifetimeMinutes) * time.Minute
	return newHMACJWTService(cfg.JWTSecret, lifetime, time.Now), nil
}

func newHMACJWTService(secret string, lifetime time.Duration, now func() time.Time) *hmacJWTService {
	return &hmacJWTService{key: []byte(secret), lifetime: lifetime, now: now}
}

// GenerateToken issues a token for id. An empty role is issued as member.
func (s *hmacJWTService) GenerateToken(ctx context.Context, id Identity) (string, error) {
	if id.Subject == "" {
		return "", errors.New("token subject cannot be empty")
	}
	if id.Role == "" {
		id.Role = RoleMember
	}

	issued := s.now()
	claims := tokenClaims{
		Name: id.Name,
		Role: id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.Subject,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(s.lifetime)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		logger.FromContext(ctx).Error("failed to sign access token",
			"error", err,
			"subject", id.Subject)
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies the signature and time claims of raw.
func (s *hmacJWTService) ValidateToken(ctx context.Context, raw string) (*Claims, error) {
	log := logger.FromContext(ctx)
	at := s.now()

	var parsed tokenClaims
	token, err := jwt.ParseWithClaims(raw, &parsed,
		func(*jwt.Token) (any, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(allowedSkew),
		jwt.WithTimeFunc(func() time.Time { return at }),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		log.Debug("rejected expired token")
		return nil, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		log.Debug("rejected token that is not yet valid")
		return nil, ErrTokenNotYetValid
	case err != nil:
		log.Debug("rejected token", "error", err)
		return nil, ErrInvalidToken
	case !token.Valid || parsed.Subject == "":
		log.Debug("rejected token without subject")
		return nil, ErrInvalidToken
	}

	out := &Claims{
		Subject: parsed.Subject,
		Name:    parsed.Name,
		Role:    parsed.Role,
		ID:      parsed.ID,
	}
	if parsed.IssuedAt != nil {
		out.IssuedAt = parsed.IssuedAt.Time
	}
	if parsed.ExpiresAt != nil {
		out.ExpiresAt = parsed.ExpiresAt.Time
	}
	return out, nil
}
