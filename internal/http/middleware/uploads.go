package middleware

import (
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

// UploadHeaders hardens user uploaded files served from the site origin.
// SVG can carry script, so it is sandboxed and downloaded rather than
// rendered inline.
func UploadHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		if strings.EqualFold(path.Ext(c.Request.URL.Path), ".svg") {
			c.Header("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; sandbox")
			c.Header("Content-Disposition", "attachment")
		}
		c.Next()
	}
}
