package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload carries the fields minted into an access token.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Phone  string
	JTI    string
}

// AccessTokenClaims is the JWT claim set for API access tokens.
type AccessTokenClaims struct {
	UserID uuid.UUID `json:"uid"`
	Phone  string    `json:"phone"`
	jwt.RegisteredClaims
}
