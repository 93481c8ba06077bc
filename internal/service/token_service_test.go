package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/receptia/scheduling-api/internal/models"
	"github.com/receptia/scheduling-api/pkg/config"
	appErrors "github.com/receptia/scheduling-api/pkg/errors"
)

func signTestToken(t *testing.T, secret string, claims *models.AccessClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidateToken(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "test-secret"})
	signed := signTestToken(t, "test-secret", &models.AccessClaims{
		UserID:     "user-1",
		BusinessID: "biz-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := svc.ValidateToken(signed)

	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "biz-1", claims.BusinessID)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "test-secret"})
	signed := signTestToken(t, "other-secret", &models.AccessClaims{BusinessID: "biz-1"})

	_, err := svc.ValidateToken(signed)

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenExpired(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "test-secret"})
	signed := signTestToken(t, "test-secret", &models.AccessClaims{
		BusinessID: "biz-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	_, err := svc.ValidateToken(signed)

	require.Error(t, err)
}

func TestValidateTokenMissingBusinessScope(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "test-secret"})
	signed := signTestToken(t, "test-secret", &models.AccessClaims{UserID: "user-1"})

	_, err := svc.ValidateToken(signed)

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
