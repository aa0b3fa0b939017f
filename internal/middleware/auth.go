package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/platefull/backend/internal/types"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// AuthMiddleware creates a middleware that requires a valid JWT token
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromHeader(c, validator)
		if !ok {
			return
		}
		if claims == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication required."})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves the caller when a token is present but
// lets anonymous requests through. Needed by endpoints whose output is
// viewer-relative (favorite flags, is_subscribed, favorite filters).
func OptionalAuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromHeader(c, validator)
		if !ok {
			return
		}
		if claims != nil {
			c.Set("user_id", claims.UserID)
			c.Set("username", claims.Username)
		}
		c.Next()
	}
}

// claimsFromHeader parses the Authorization header. A missing header
// yields (nil, true); a malformed or invalid token aborts with 401.
func claimsFromHeader(c *gin.Context, validator TokenValidator) (*types.TokenClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, true
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid authorization header format."})
		c.Abort()
		return nil, false
	}

	claims, err := validator.ValidateToken(parts[1])
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid or expired token."})
		c.Abort()
		return nil, false
	}
	return claims, true
}
