package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tiku/internal/service"
)

// PaperHandler handles scanned exam paper ingestion.
type PaperHandler struct {
	ingestService service.IngestService
}

// NewPaperHandler creates a new PaperHandler.
func NewPaperHandler(ingestService service.IngestService) *PaperHandler {
	return &PaperHandler{ingestService: ingestService}
}

// Parse handles POST /api/v1/papers/parse. The request is multipart with a
// "file" image field, an optional "source" provenance string, and an
// optional "auto_save" flag that stores every segmented question.
func (h *PaperHandler) Parse(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	image, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "could not read uploaded file")
		return
	}

	source := c.PostForm("source")
	autoSave, _ := strconv.ParseBool(c.DefaultPostForm("auto_save", "false"))

	result, err := h.ingestService.ParsePaper(c.Request.Context(), header.Filename, image, source, autoSave)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}
