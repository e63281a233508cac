package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tiku/internal/service"
)

// QuestionHandler handles question bank endpoints.
type QuestionHandler struct {
	questionService service.QuestionService
	annotateService service.AnnotateService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService service.QuestionService, annotateService service.AnnotateService) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
		annotateService: annotateService,
	}
}

type createQuestionRequest struct {
	LatexContent    string   `json:"latex_content" binding:"required"`
	Tags            []string `json:"tags"`
	ReferenceAnswer string   `json:"reference_answer"`
	Source          string   `json:"source"`
	Images          []string `json:"images"`
}

// Create handles POST /api/v1/questions
func (h *QuestionHandler) Create(c *gin.Context) {
	var req createQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "latex_content is required")
		return
	}

	q, err := h.questionService.Create(c.Request.Context(), service.QuestionCreateInput{
		LatexContent:    req.LatexContent,
		Tags:            req.Tags,
		ReferenceAnswer: req.ReferenceAnswer,
		Source:          req.Source,
		Images:          req.Images,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, q)
}

// Get handles GET /api/v1/questions/:id
func (h *QuestionHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	q, err := h.questionService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, q)
}

// GetAnswer handles GET /api/v1/questions/:id/answer
func (h *QuestionHandler) GetAnswer(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	answer, err := h.questionService.GetAnswer(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"id": id, "reference_answer": answer})
}

// List handles GET /api/v1/questions with optional keyword and tag filters.
// Tag search takes precedence over keyword search when both are present.
func (h *QuestionHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)
	keyword := strings.TrimSpace(c.Query("keyword"))
	tags := splitTagsParam(c.Query("tags"))

	questions, total, err := h.questionService.Search(c.Request.Context(), keyword, tags, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, questions, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Delete handles DELETE /api/v1/questions/:id
func (h *QuestionHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.questionService.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": id})
}

// Stats handles GET /api/v1/questions/stats
func (h *QuestionHandler) Stats(c *gin.Context) {
	stats, err := h.questionService.Stats(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, stats)
}

type annotateRequest struct {
	LatexContent string `json:"latex_content" binding:"required"`
	Source       string `json:"source"`
}

// Annotate handles POST /api/v1/questions/annotate
func (h *QuestionHandler) Annotate(c *gin.Context) {
	var req annotateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "latex_content is required")
		return
	}

	result, err := h.annotateService.Annotate(c.Request.Context(), req.LatexContent, req.Source)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return offset, limit
}

func splitTagsParam(raw string) []string {
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
