package models

import "github.com/golang-jwt/jwt/v5"

// AccessClaims is the JWT payload for API access tokens. Tokens are issued by
// the account service; this API only verifies them and scopes every query to
// the embedded business.
type AccessClaims struct {
	UserID     string `json:"user_id"`
	BusinessID string `json:"business_id"`
	jwt.RegisteredClaims
}
