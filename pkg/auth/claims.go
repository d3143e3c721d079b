package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/mercantile-app/mercantile-backend/pkg/enums"
)

// AccessTokenPayload carries the identity data minted into an access token.
type AccessTokenPayload struct {
	UserID int64
	Role   enums.UserRole
	JTI    string
}

// AccessTokenClaims is the JWT claim set used across the API.
type AccessTokenClaims struct {
	UserID int64          `json:"uid"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
