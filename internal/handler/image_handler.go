package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tiku/internal/config"
	"tiku/internal/port"
)

// ImageHandler serves materialized question images from object storage by
// redirecting to a short-lived presigned URL.
type ImageHandler struct {
	storage port.ObjectStorage
	cfg     *config.S3Config
}

// NewImageHandler creates a new ImageHandler.
func NewImageHandler(storage port.ObjectStorage, cfg *config.S3Config) *ImageHandler {
	return &ImageHandler{storage: storage, cfg: cfg}
}

// Get handles GET /api/v1/images/*key
func (h *ImageHandler) Get(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if !strings.HasPrefix(key, "papers/") {
		RespondError(c, http.StatusNotFound, "NOT_FOUND", "unknown image key")
		return
	}

	url, err := h.storage.GetPresignedURL(c.Request.Context(), h.cfg.Bucket, key, h.cfg.PresignExpiry)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}
