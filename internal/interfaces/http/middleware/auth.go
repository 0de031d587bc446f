// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/atelier-textile/storefront-api/internal/pkg/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	userIDKey    = "user_id"
	userEmailKey = "user_email"
)

// AuthMiddleware requires a valid access token issued by the hosted auth provider
func AuthMiddleware(verifier *auth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		if !setClaims(c, verifier, tokenString) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// OptionalAuthMiddleware identifies the user when a valid token is sent and
// lets anonymous requests through
func OptionalAuthMiddleware(verifier *auth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := auth.ExtractTokenFromHeader(c.GetHeader("Authorization")); tokenString != "" {
			setClaims(c, verifier, tokenString)
		}
		c.Next()
	}
}

// AdminMiddleware requires the static admin bearer token
func AdminMiddleware(admin *auth.AdminAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !admin.Enabled() {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "Admin access is not configured",
			})
			c.Abort()
			return
		}

		tokenString := auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		if err := admin.Verify(tokenString); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid admin token",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func setClaims(c *gin.Context, verifier *auth.TokenVerifier, tokenString string) bool {
	if verifier == nil {
		return false
	}
	claims, err := verifier.Verify(tokenString)
	if err != nil {
		return false
	}
	userID, err := claims.UserID()
	if err != nil {
		return false
	}
	c.Set(userIDKey, userID)
	c.Set(userEmailKey, claims.Email)
	return true
}

// GetUserIDFromContext returns the authenticated user id
func GetUserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetUserEmailFromContext returns the e-mail carried by the access token
func GetUserEmailFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(userEmailKey)
	if !ok {
		return "", false
	}
	email, ok := v.(string)
	return email, ok
}
