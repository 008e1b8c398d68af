package middleware

import (
	"net/http"
	"strings"

	"sitebackend/internal/domain"

	"github.com/gin-gonic/gin"
)

func abortJSON(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":      msg,
		"code":       code,
		"request_id": GetRequestID(c),
	})
}

// RequireRoles only lets through authenticated callers whose role is listed.
// AuthOptional must run first.
func RequireRoles(allowedRoles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
	}

	return func(c *gin.Context) {
		rc := Identity(c)
		if !rc.Authenticated() {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		if _, ok := allowed[strings.ToLower(strings.TrimSpace(rc.Role))]; !ok {
			abortJSON(c, http.StatusForbidden, "forbidden", "role not allowed")
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return RequireRoles(domain.RoleAdmin)
}
