package middleware

import (
	"strings"

	"sitebackend/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	identityKey = "identity"
	// SessionCookie carries the admin token for browser clients.
	SessionCookie = "session"
)

type TokenParser interface {
	Parse(token string) (domain.RequestContext, error)
}

func bearer(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if v, err := c.Cookie(SessionCookie); err == nil {
		return v
	}
	return ""
}

// AuthOptional attaches the caller identity when a valid bearer token or
// session cookie is present. Invalid tokens are ignored, leaving the request
// anonymous.
func AuthOptional(p TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p == nil {
			c.Next()
			return
		}
		if tok := bearer(c); tok != "" {
			if rc, err := p.Parse(tok); err == nil {
				c.Set(identityKey, rc)
			}
		}
		c.Next()
	}
}

// Identity returns the authenticated caller, or a zero value when anonymous.
func Identity(c *gin.Context) domain.RequestContext {
	if v, ok := c.Get(identityKey); ok {
		if rc, ok := v.(domain.RequestContext); ok {
			return rc
		}
	}
	return domain.RequestContext{}
}
