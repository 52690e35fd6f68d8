package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/thilinahansana/university-scheduler-console/internal/service"
	appErrors "github.com/thilinahansana/university-scheduler-console/pkg/errors"
	"github.com/thilinahansana/university-scheduler-console/pkg/response"
)

const (
	// ContextUserKey is the gin context key storing JWT claims.
	ContextUserKey = "currentUser"
	// ContextTokenKey stores the raw bearer token forwarded to the timetable backend.
	ContextTokenKey = "accessToken"

	logUserIDKey = "user_id"
	logRoleKey   = "user_role"
)

// JWT protects routes by requiring a valid access token.
func JWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		token, ok := bearerToken(header)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Set(ContextTokenKey, token)
		c.Set(logUserIDKey, claims.UserID)
		c.Set(logRoleKey, string(claims.Role))
		c.Next()
	}
}

// OptionalJWT attaches claims when present but does not block.
func OptionalJWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}
		claims, err := authService.ValidateToken(token)
		if err != nil {
			c.Next()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Set(ContextTokenKey, token)
		c.Set(logUserIDKey, claims.UserID)
		c.Set(logRoleKey, string(claims.Role))
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
