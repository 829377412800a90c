package middleware

import (
	"ethioheritage_backend/internal/policy"
	"ethioheritage_backend/internal/util"
	"ethioheritage_backend/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	// browsers cannot set headers on websocket upgrades
	if c.IsWebsocket() {
		return c.Query("token")
	}
	return ""
}

// AuthMiddleware requires a valid access token and stores its claims under "user".
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, secret)
		if err != nil {
			logger.Log.Debug("Rejected access token", zap.Error(err), zap.String("path", c.FullPath()))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set(util.ContextUserKey, claims)
		c.Next()
	}
}

// OptionalAuth attaches claims when a valid token is present and never rejects.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := bearerToken(c); tokenString != "" {
			if claims, err := util.ParseJWT(tokenString, secret); err == nil {
				c.Set(util.ContextUserKey, claims)
			}
		}
		c.Next()
	}
}

// Subject converts the request's claims for policy checks.
func Subject(c *gin.Context) *policy.Subject {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		return nil
	}
	return &policy.Subject{UserID: claims.UserID, Role: claims.Role}
}

// Authorize checks an action on an unowned resource kind, e.g. creating a course or
// revoking a certificate. Ownership-dependent checks happen where the owner is known.
func Authorize(action policy.Action, kind policy.ResourceKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := Subject(c)
		if subject == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		if !policy.Evaluate(*subject, action, policy.Resource{Kind: kind}) {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
