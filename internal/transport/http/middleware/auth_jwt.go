package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-social-api/internal/core/auth"
	resp "go-social-api/internal/transport/http/response"
)

const (
	KeyUserID = "userId"
	KeyEmail  = "email"
)

// OptionalAuth 解析 Bearer；缺失或无效不拦截，只留下未登录的上下文，
// 由后面的 RequireAuth / resolver 决定要不要拒绝
func OptionalAuth(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.Next()
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			c.Next()
			return
		}
		c.Set(KeyUserID, claims.UID)
		c.Set(KeyEmail, claims.Email)
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), claims))
		c.Next()
	}
}

// RequireAuth 未登录直接 401
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(KeyUserID) == "" {
			resp.Abort(c, http.StatusUnauthorized, "Not authenticated.")
			return
		}
		c.Next()
	}
}
