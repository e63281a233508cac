package handler

import (
	"github.com/gin-gonic/gin"

	"tiku/internal/service"
)

// TagHandler handles tag vocabulary endpoints.
type TagHandler struct {
	tagService service.TagService
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(tagService service.TagService) *TagHandler {
	return &TagHandler{tagService: tagService}
}

// List handles GET /api/v1/tags
func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.tagService.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, tags)
}
