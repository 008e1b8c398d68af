package handlers

import (
	"net/http"

	"sitebackend/internal/utils"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handlers) DBCheck(c *gin.Context) {
	if h.Ping == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database not connected"})
		return
	}
	if err := h.Ping(c.Request.Context()); err != nil {
		utils.LogCtx(c.Request.Context(), "system", "db_check", err.Error())
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
