package handlers

import (
	"net/http"
	"time"

	"sitebackend/internal/domain/models"
	"sitebackend/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	res, err := h.Auth.Login(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	maxAge := int(time.Until(res.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, res.Token, maxAge, "/", "", h.SecureCookies, true)
	c.JSON(http.StatusOK, res)
}

// POST /api/auth/logout
func (h *Handlers) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.SecureCookies, true)
	c.Status(http.StatusNoContent)
}

// GET /api/auth/me
func (h *Handlers) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": middleware.Identity(c)})
}
