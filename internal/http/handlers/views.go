package handlers

import (
	"net/http"

	"sitebackend/internal/domain/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// VisitorCookie identifies a browser for repeat-view throttling.
const VisitorCookie = "visitor_id"

const visitorMaxAge = 365 * 24 * 60 * 60

func (h *Handlers) visitorID(c *gin.Context) string {
	if v, err := c.Cookie(VisitorCookie); err == nil {
		if _, perr := uuid.Parse(v); perr == nil {
			return v
		}
	}
	v := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(VisitorCookie, v, visitorMaxAge, "/", "", h.SecureCookies, true)
	return v
}

func (h *Handlers) recordView(c *gin.Context, kind models.ContentKind) {
	res, err := h.Views.Record(c.Request.Context(), kind, c.Param("id"), h.visitorID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/blogs/:id/view
func (h *Handlers) BlogView(c *gin.Context) { h.recordView(c, models.KindBlog) }

// POST /api/case-studies/:id/view
func (h *Handlers) CaseStudyView(c *gin.Context) { h.recordView(c, models.KindCaseStudy) }
