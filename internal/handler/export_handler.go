package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tiku/internal/domain"
	"tiku/internal/service"
)

// ExportHandler handles paper export endpoints.
type ExportHandler struct {
	exportService service.ExportService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exportService service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

type exportRequest struct {
	Title       string   `json:"title"`
	QuestionIDs []string `json:"question_ids" binding:"required"`
	Format      string   `json:"format"`
	Mode        string   `json:"mode"`
}

// Create handles POST /api/v1/exports
func (h *ExportHandler) Create(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "question_ids is required")
		return
	}

	ids := make([]uuid.UUID, 0, len(req.QuestionIDs))
	for _, raw := range req.QuestionIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid question id: "+raw)
			return
		}
		ids = append(ids, id)
	}

	format := domain.ExportFormat(req.Format)
	if req.Format == "" {
		format = domain.ExportFormatLatex
	}
	mode := domain.ExportMode(req.Mode)
	if req.Mode == "" {
		mode = domain.ExportModeQuestions
	}

	out, err := h.exportService.Export(c.Request.Context(), service.ExportInput{
		Title:       req.Title,
		QuestionIDs: ids,
		Format:      format,
		Mode:        mode,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, out)
}

// List handles GET /api/v1/exports
func (h *ExportHandler) List(c *gin.Context) {
	recs, err := h.exportService.History(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, recs)
}

// Get handles GET /api/v1/exports/:id, re-rendering the recorded selection.
func (h *ExportHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	out, err := h.exportService.Replay(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, out)
}
