package handlers

import (
	"context"
	"errors"
	"io"
	"strconv"

	"sitebackend/internal/domain"
	"sitebackend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// Handlers wires HTTP endpoints to the services.
type Handlers struct {
	Bookings services.BookingService
	Content  services.ContentService
	Views    services.ViewService
	Auth     services.AuthService
	Uploads  services.UploadService
	Docs     services.DocsService
	Export   services.ExportService
	// Ping checks the content store; nil reports it as unavailable.
	Ping func(ctx context.Context) error
	// SecureCookies marks session and visitor cookies Secure.
	SecureCookies bool
}

// BindJSONOrError decodes the body into dst. Field rules are enforced by the
// services; only malformed JSON is rejected here.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil {
		RespondDomainError(c, domain.ValidationError{Msg: "request body is required"})
		return false
	}
	if err := c.ShouldBindBodyWith(dst, binding.JSON); err != nil {
		msg := "invalid JSON payload"
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		}
		RespondDomainError(c, domain.ValidationError{Msg: msg, Err: err})
		return false
	}
	return true
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 0 {
		return def
	}
	return v
}
