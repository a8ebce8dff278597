package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/alphasup/alphasup-backend/pkg/enums"
)

// AccessTokenPayload is the input for minting an access token.
type AccessTokenPayload struct {
	CustomerID uuid.UUID
	Role       enums.ActorRole
	JTI        string
}

// AccessTokenClaims is the typed JWT claim set carried by access tokens.
type AccessTokenClaims struct {
	CustomerID uuid.UUID       `json:"customer_id"`
	Role       enums.ActorRole `json:"actor_role"`
	jwt.RegisteredClaims
}
