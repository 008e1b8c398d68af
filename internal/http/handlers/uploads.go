package handlers

import (
	"errors"
	"net/http"

	"sitebackend/internal/domain"
	"sitebackend/internal/utils"

	"github.com/gin-gonic/gin"
)

// POST /api/uploads
func (h *Handlers) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			RespondDomainError(c, domain.ValidationError{Field: "file", Msg: "is required"})
			return
		}
		RespondDomainError(c, domain.ValidationError{Msg: "invalid multipart form", Err: err})
		return
	}

	res, err := h.Uploads.Save(fh, c.PostForm("folder"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	utils.LogCtx(c.Request.Context(), "upload", "save", "path="+res.Path)
	c.JSON(http.StatusCreated, res)
}

// DELETE /api/uploads?path=
func (h *Handlers) DeleteUpload(c *gin.Context) {
	p := c.Query("path")
	if err := h.Uploads.Delete(p); err != nil {
		RespondDomainError(c, err)
		return
	}
	utils.LogCtx(c.Request.Context(), "upload", "delete", "path="+p)
	c.JSON(http.StatusOK, gin.H{"message": "upload deleted"})
}
