package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/workboard-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func TestNewJWTService(t *testing.T) {
	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short", TokenLifetimeMinutes: 60})
	assert.Error(t, err)

	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	svc := newHMACJWTService(testSecret, time.Hour, func() time.Time { return fixedTime })

	token, err := svc.GenerateToken(context.Background(), Identity{Subject: "u-42", Name: "Bob", Role: RoleAdmin})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u-42", claims.Subject)
	assert.Equal(t, "Bob", claims.Actor())
	assert.True(t, claims.IsAdmin())
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestGenerateToken_Defaults(t *testing.T) {
	svc := newHMACJWTService(testSecret, time.Hour, time.Now)

	_, err := svc.GenerateToken(context.Background(), Identity{})
	assert.Error(t, err)

	token, err := svc.GenerateToken(context.Background(), Identity{Subject: "u-1"})
	require.NoError(t, err)
	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, RoleMember, claims.Role)
	assert.False(t, claims.IsAdmin())
	assert.Equal(t, "u-1", claims.Actor())
}

func TestValidateToken_Failures(t *testing.T) {
	t.Parallel()

	issued := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	issuer := newHMACJWTService(testSecret, time.Hour, func() time.Time { return issued })
	token, err := issuer.GenerateToken(context.Background(), Identity{Subject: "u-1"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		svc     *hmacJWTService
		token   string
		wantErr error
	}{
		{
			name:    "expired",
			svc:     newHMACJWTService(testSecret, time.Hour, func() time.Time { return issued.Add(3 * time.Hour) }),
			token:   token,
			wantErr: ErrExpiredToken,
		},
		{
			name:    "wrong secret",
			svc:     newHMACJWTService("wrong-secret-that-is-long-enough-for-testing", time.Hour, func() time.Time { return issued }),
			token:   token,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "malformed",
			svc:     issuer,
			token:   "not.a.token",
			wantErr: ErrInvalidToken,
		},
		{
			name:    "tampered",
			svc:     issuer,
			token:   token[:strings.LastIndex(token, ".")] + ".c2lnbmF0dXJl",
			wantErr: ErrInvalidToken,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.ValidateToken(context.Background(), tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateToken_RejectsOtherAlgorithms(t *testing.T) {
	svc := newHMACJWTService(testSecret, time.Hour, time.Now)
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "u-1"})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
