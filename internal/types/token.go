package types

import (
	"github.com/google/uuid"
)

// TokenClaims represents the claims carried by a JWT token
type TokenClaims struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}
