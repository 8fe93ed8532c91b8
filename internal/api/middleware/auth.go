package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"shiftdesk/pkg/jwt"
	"shiftdesk/pkg/redis"
	"shiftdesk/pkg/response"
)

// JWTAuth extracts and verifies the access token from
// Authorization: Bearer <token>, then injects the caller's identity into the
// request context. Revoked tokens are rejected via the Redis blacklist; a nil
// rdb skips the check.
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "malformed authorization header")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "token invalid or expired")
			c.Abort()
			return
		}
		if claims.TokenType != "access" {
			response.Unauthorized(c, 10002, "wrong token type")
			c.Abort()
			return
		}

		if revoked, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID); err == nil && revoked {
			response.Unauthorized(c, 10002, "token has been revoked")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("is_admin", claims.IsAdmin)
		c.Set("token_jti", claims.ID)
		c.Set("token_expires_at", claims.ExpiresAt.Time)

		c.Next()
	}
}

// AdminOnly rejects non-admin callers. Must run after JWTAuth.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdmin, exists := c.Get("is_admin")
		if !exists {
			response.Unauthorized(c, 10002, "not authenticated")
			c.Abort()
			return
		}
		if admin, ok := isAdmin.(bool); !ok || !admin {
			response.Forbidden(c, 10003, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
