package middleware

import (
	"net/http"
	"strings"
	"time"

	"go-topup-store/internal/auth"
	"go-topup-store/internal/database"
	"go-topup-store/internal/models"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware checks if the user has a valid JWT token
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get the token from the "Authorization" header
		// Format: "Bearer <token>"
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		// 2. Remove the "Bearer " prefix
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with Bearer"})
			c.Abort()
			return
		}

		// 3. Validate the token using our auth package
		claims, err := auth.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		// 4. Store user info in the context for the next handler to use
		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid Bearer token is present
// but never rejects the request. Public routes use it to personalize the
// response (e.g. VIP prices in the catalog).
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString != "" && tokenString != authHeader {
			if claims, err := auth.ValidateToken(tokenString); err == nil {
				c.Set("userID", claims.UserID)
				c.Set("role", claims.Role)
			}
		}
		c.Next()
	}
}

// RequireRole is a secondary guard that checks for specific permissions
func RequireRole(allowedRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists || role != allowedRole {
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// ApiTokenAuth guards the partner-facing v1 API. Partners authenticate with
// an opaque bearer token (ApiToken row), optionally pinned to an IP allowlist.
func ApiTokenAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" || tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Bearer token is required"})
			c.Abort()
			return
		}

		// 1. Look up the token
		var token models.ApiToken
		if err := database.DB.Where("token = ? AND active = ?", tokenString, true).First(&token).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API token"})
			c.Abort()
			return
		}

		// 2. Enforce the IP allowlist (empty list = any IP)
		if token.IPAllowlist != "" {
			allowed := false
			for _, ip := range strings.Split(token.IPAllowlist, ",") {
				if strings.TrimSpace(ip) == c.ClientIP() {
					allowed = true
					break
				}
			}
			if !allowed {
				c.JSON(http.StatusForbidden, gin.H{"error": "IP address not allowed for this token"})
				c.Abort()
				return
			}
		}

		// 3. Touch last_used_at (best effort, don't block the request on it)
		now := time.Now()
		database.DB.Model(&token).Update("last_used_at", &now)

		c.Set("apiTokenID", token.ID)
		c.Set("userID", token.UserID)
		c.Next()
	}
}

// MaintenanceGate returns 503 to non-admins while maintenance mode is on.
// The flag lives in the settings row so admins can flip it without a restart.
func MaintenanceGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		var settings models.Settings
		if err := database.DB.First(&settings).Error; err != nil {
			// No settings row yet: let traffic through
			c.Next()
			return
		}
		if settings.MaintenanceMode {
			role, _ := c.Get("role")
			if role != "admin" {
				msg := settings.MaintenanceMessage
				if msg == "" {
					msg = "The store is under maintenance. Please try again later."
				}
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": msg})
				c.Abort()
				return
			}
		}
		c.Next()
	}
}
