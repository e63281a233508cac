package service

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"tiku/internal/config"
	"tiku/internal/domain"
	"tiku/internal/exam"
	"tiku/internal/port"
)

// ParseResult is the outcome of ingesting one scanned exam paper.
type ParseResult struct {
	RequestID string                  `json:"request_id"`
	Questions []domain.ParsedQuestion `json:"questions"`
	Saved     []uuid.UUID             `json:"saved,omitempty"`
	Warnings  []string                `json:"warnings,omitempty"`
}

// IngestService runs the scanned-paper pipeline: OCR recognition, image
// materialization, LLM segmentation, and an optional save of every
// segmented question into the bank.
type IngestService interface {
	ParsePaper(ctx context.Context, filename string, image []byte, source string, autoSave bool) (*ParseResult, error)
}

type ingestService struct {
	ocr          port.OCRClient
	materializer *Materializer
	segmenter    *exam.Segmenter
	questionRepo port.QuestionRepository
	tagSvc       TagService
	maxFileSize  int64
}

// NewIngestService wires the pipeline stages together.
func NewIngestService(
	ocr port.OCRClient,
	materializer *Materializer,
	segmenter *exam.Segmenter,
	questionRepo port.QuestionRepository,
	tagSvc TagService,
	cfg *config.S3Config,
) IngestService {
	return &ingestService{
		ocr:          ocr,
		materializer: materializer,
		segmenter:    segmenter,
		questionRepo: questionRepo,
		tagSvc:       tagSvc,
		maxFileSize:  cfg.MaxFileSizeMB * 1024 * 1024,
	}
}

func (s *ingestService) ParsePaper(ctx context.Context, filename string, image []byte, source string, autoSave bool) (*ParseResult, error) {
	if err := s.validateUpload(filename, image); err != nil {
		return nil, err
	}

	ocrRes, err := s.ocr.Recognize(ctx, filename, image)
	if err != nil {
		return nil, fmt.Errorf("recognizing scanned paper: %w", err)
	}
	if strings.TrimSpace(ocrRes.Markdown) == "" {
		return nil, fmt.Errorf("recognition produced an empty transcript")
	}

	requestID := ocrRes.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	imageMap := s.materializer.Materialize(ctx, requestID, ocrRes.Images)

	vocabulary := s.tagSvc.Vocabulary(ctx)
	questions, report, err := s.segmenter.ParseExamPaper(ctx, ocrRes.Markdown, imageMap, vocabulary)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		RequestID: requestID,
		Questions: questions,
		Warnings:  report.Warnings,
	}
	if autoSave && len(questions) > 0 {
		result.Saved = s.saveAll(ctx, questions, source, result)
	}
	return result, nil
}

// saveAll persists every segmented question. Individual save failures are
// recorded as warnings; partial batches are deliberate, a half-ingested
// paper beats a lost one.
func (s *ingestService) saveAll(ctx context.Context, questions []domain.ParsedQuestion, source string, result *ParseResult) []uuid.UUID {
	saved := make([]uuid.UUID, 0, len(questions))
	allTags := []string{}
	now := time.Now().UTC()
	for i, pq := range questions {
		q := &domain.Question{
			ID:              uuid.New(),
			LatexContent:    pq.Question,
			Tags:            domain.StringList(pq.Tags),
			ReferenceAnswer: pq.Answer,
			Source:          source,
			Images:          domain.StringList(pq.Images),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.questionRepo.Create(ctx, q); err != nil {
			msg := fmt.Sprintf("saving question %d failed: %v", i+1, err)
			result.Warnings = append(result.Warnings, msg)
			log.Printf("service.IngestService: %s", msg)
			continue
		}
		saved = append(saved, q.ID)
		allTags = append(allTags, pq.Tags...)
	}
	if err := s.tagSvc.Record(ctx, allTags); err != nil {
		log.Printf("service.IngestService: recording tag usage failed: %v", err)
	}
	return saved
}

func (s *ingestService) validateUpload(filename string, image []byte) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if _, ok := domain.AllowedImageExtensions[ext]; !ok {
		return domain.ErrUnsupportedImageType
	}
	if len(image) == 0 {
		return fmt.Errorf("empty upload")
	}
	if s.maxFileSize > 0 && int64(len(image)) > s.maxFileSize {
		return domain.ErrImageTooLarge
	}
	// The extension is caller-supplied; the sniffed content type is not.
	if _, ok := domain.AllowedImageContentTypes[http.DetectContentType(image)]; !ok {
		return domain.ErrUnsupportedImageType
	}
	return nil
}
