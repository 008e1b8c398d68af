package handlers

import (
	"net/http"
	"strings"

	"sitebackend/internal/domain/models"
	"sitebackend/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// contentFilter reads listing params. Group comes from ?category= for blogs
// and ?industry= for case studies.
func contentFilter(c *gin.Context, groupParam string) models.ContentFilter {
	return models.ContentFilter{
		Status: strings.ToLower(strings.TrimSpace(c.Query("status"))),
		Group:  strings.TrimSpace(c.Query(groupParam)),
		Search: strings.TrimSpace(c.Query("search")),
		Limit:  queryInt(c, "limit", 0),
		Offset: queryInt(c, "offset", 0),
	}
}

// GET /api/blogs
func (h *Handlers) ListBlogs(c *gin.Context) {
	list, err := h.Content.ListBlogs(c.Request.Context(), contentFilter(c, "category"), middleware.Identity(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blogs": list, "count": len(list)})
}

// GET /api/blogs/:id
func (h *Handlers) GetBlog(c *gin.Context) {
	b, err := h.Content.GetBlog(c.Request.Context(), c.Param("id"), middleware.Identity(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blog": b})
}

// POST /api/blogs
func (h *Handlers) CreateBlog(c *gin.Context) {
	var req models.BlogRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := h.Content.CreateBlog(c.Request.Context(), req, middleware.Identity(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"blog": b})
}

// PUT /api/blogs/:id
func (h *Handlers) UpdateBlog(c *gin.Context) {
	var req models.BlogRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := h.Content.UpdateBlog(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blog": b})
}

// DELETE /api/blogs/:id
func (h *Handlers) DeleteBlog(c *gin.Context) {
	if err := h.Content.DeleteBlog(c.Request.Context(), c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "blog deleted"})
}

// GET /api/case-studies
func (h *Handlers) ListCaseStudies(c *gin.Context) {
	list, err := h.Content.ListCaseStudies(c.Request.Context(), contentFilter(c, "industry"), middleware.Identity(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"case_studies": list, "count": len(list)})
}

// GET /api/case-studies/:id
func (h *Handlers) GetCaseStudy(c *gin.Context) {
	cs, err := h.Content.GetCaseStudy(c.Request.Context(), c.Param("id"), middleware.Identity(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"case_study": cs})
}

// POST /api/case-studies
func (h *Handlers) CreateCaseStudy(c *gin.Context) {
	var req models.CaseStudyRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	cs, err := h.Content.CreateCaseStudy(c.Request.Context(), req, middleware.Identity(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"case_study": cs})
}

// PUT /api/case-studies/:id
func (h *Handlers) UpdateCaseStudy(c *gin.Context) {
	var req models.CaseStudyRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	cs, err := h.Content.UpdateCaseStudy(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"case_study": cs})
}

// DELETE /api/case-studies/:id
func (h *Handlers) DeleteCaseStudy(c *gin.Context) {
	if err := h.Content.DeleteCaseStudy(c.Request.Context(), c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "case study deleted"})
}
