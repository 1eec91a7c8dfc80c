package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/okaneren/inkpost/internal/models"
	"github.com/okaneren/inkpost/internal/utils"
)

// Context keys populated by AuthMiddleware.
const (
	CtxUserID = "user_id"
	CtxRole   = "user_role"
	CtxClaims = "claims"
)

// AuthMiddleware validates the bearer token on protected routes and attaches
// the authenticated identity to the request context. A failed token always
// terminates the request; there is no fallthrough.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"msg": "Authorization header required",
			})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{
				"msg": "Invalid authorization format. Use: Bearer <token>",
			})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"msg": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, claims.Role)
		c.Set(CtxClaims, claims)

		c.Next()
	}
}

// RequireRole declares the role an operation needs. Routes attach it after
// AuthMiddleware instead of re-checking roles inline in every handler.
func RequireRole(required models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(CtxRole)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"msg": "Unauthorized",
			})
			c.Abort()
			return
		}

		if role != required {
			c.JSON(http.StatusForbidden, gin.H{
				"msg": "Forbidden: Only " + string(required) + " can access this route",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
