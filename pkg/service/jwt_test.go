package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/abikoy/ddu-rims/pkg/errors"
)

func newTestService(accessTTL time.Duration) JWTService {
	return NewJWTService("test-secret", accessTTL, time.Hour*24, zap.NewNop())
}

func TestGenerateAndValidateTokens(t *testing.T) {
	svc := newTestService(time.Hour)

	access, refresh, err := svc.GenerateTokens(42, "assetmanager")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	claims, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, "assetmanager", claims.Role)
	assert.False(t, claims.IsRefreshToken)

	claims, err = svc.ValidateToken(refresh)
	require.NoError(t, err)
	assert.True(t, claims.IsRefreshToken)
}

func TestValidateTokenExpired(t *testing.T) {
	svc := newTestService(-time.Minute)

	access, _, err := svc.GenerateTokens(1, "staff")
	require.NoError(t, err)

	_, err = svc.ValidateToken(access)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestValidateTokenTampered(t *testing.T) {
	svc := newTestService(time.Hour)

	access, _, err := svc.GenerateTokens(1, "staff")
	require.NoError(t, err)

	_, err = svc.ValidateToken(access + "x")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	issuer := NewJWTService("secret-a", time.Hour, time.Hour, zap.NewNop())
	verifier := NewJWTService("secret-b", time.Hour, time.Hour, zap.NewNop())

	access, _, err := issuer.GenerateTokens(1, "admin")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(access)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
