package service

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/receptia/scheduling-api/internal/models"
	"github.com/receptia/scheduling-api/pkg/config"
	appErrors "github.com/receptia/scheduling-api/pkg/errors"
)

// TokenService verifies access tokens issued by the account service.
type TokenService struct {
	secret []byte
}

// NewTokenService constructs the service.
func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{secret: []byte(cfg.Secret)}
}

// ValidateToken parses and validates an access token returning the claims.
func (s *TokenService) ValidateToken(tokenString string) (*models.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.AccessClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if claims.BusinessID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token has no business scope")
	}

	return claims, nil
}
