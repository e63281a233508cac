package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"tiku/internal/config"
	"tiku/internal/domain"
	"tiku/internal/port"
)

// QuestionCreateInput is the DTO for manual question entry.
type QuestionCreateInput struct {
	LatexContent    string
	Tags            []string
	ReferenceAnswer string
	Source          string
	Images          []string
}

// TagUsage is one entry of the per-tag usage distribution.
type TagUsage struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// QuestionStats summarizes the question bank.
type QuestionStats struct {
	Total int        `json:"total"`
	Tags  []TagUsage `json:"tags"`
}

// QuestionService defines the question bank contract.
type QuestionService interface {
	Create(ctx context.Context, input QuestionCreateInput) (*domain.Question, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Question, error)
	GetAnswer(ctx context.Context, id uuid.UUID) (string, error)
	Search(ctx context.Context, keyword string, tags []string, offset, limit int) ([]domain.Question, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*QuestionStats, error)
}

type questionService struct {
	questionRepo port.QuestionRepository
	tagSvc       TagService
	storage      port.ObjectStorage
	s3cfg        *config.S3Config
}

// NewQuestionService creates a QuestionService implementation. storage may
// be nil, in which case deleted questions leave their images behind.
func NewQuestionService(questionRepo port.QuestionRepository, tagSvc TagService, storage port.ObjectStorage, s3cfg *config.S3Config) QuestionService {
	return &questionService{
		questionRepo: questionRepo,
		tagSvc:       tagSvc,
		storage:      storage,
		s3cfg:        s3cfg,
	}
}

func (s *questionService) Create(ctx context.Context, input QuestionCreateInput) (*domain.Question, error) {
	if input.LatexContent == "" {
		return nil, domain.ErrEmptyQuestionBody
	}
	if len(input.LatexContent) > domain.MaxQuestionLength {
		return nil, domain.ErrQuestionTooLong
	}
	if len(input.ReferenceAnswer) > domain.MaxAnswerLength {
		return nil, domain.ErrAnswerTooLong
	}

	tags := restrictToVocabulary(input.Tags, s.tagSvc.Vocabulary(ctx))

	now := time.Now().UTC()
	q := &domain.Question{
		ID:              uuid.New(),
		LatexContent:    input.LatexContent,
		Tags:            tags,
		ReferenceAnswer: input.ReferenceAnswer,
		Source:          input.Source,
		Images:          normalizeImages(input.Images),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.questionRepo.Create(ctx, q); err != nil {
		return nil, err
	}

	if err := s.tagSvc.Record(ctx, tags); err != nil {
		// Usage counts are advisory; the question is already saved.
		log.Printf("service.QuestionService: recording tag usage for %s failed: %v", q.ID, err)
	}
	return q, nil
}

func (s *questionService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	return s.questionRepo.GetByID(ctx, id)
}

func (s *questionService) GetAnswer(ctx context.Context, id uuid.UUID) (string, error) {
	q, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if q.ReferenceAnswer == "" {
		return "", domain.ErrNotFound
	}
	return q.ReferenceAnswer, nil
}

func (s *questionService) Search(ctx context.Context, keyword string, tags []string, offset, limit int) ([]domain.Question, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	switch {
	case len(tags) > 0:
		return s.questionRepo.SearchByTags(ctx, tags, offset, limit)
	case keyword != "":
		return s.questionRepo.SearchByKeyword(ctx, keyword, offset, limit)
	default:
		return s.questionRepo.List(ctx, offset, limit)
	}
}

func (s *questionService) Delete(ctx context.Context, id uuid.UUID) error {
	q, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.questionRepo.Delete(ctx, id); err != nil {
		return err
	}

	// Image cleanup is best-effort; an orphaned object is preferable to a
	// failed delete.
	if s.storage != nil {
		for _, img := range q.Images {
			key, ok := s.objectKey(img)
			if !ok {
				continue
			}
			if err := s.storage.Delete(ctx, s.s3cfg.Bucket, key); err != nil {
				log.Printf("service.QuestionService: deleting image %s for %s failed: %v", key, id, err)
			}
		}
	}
	return nil
}

// objectKey recovers the storage key from a stable image path. Paths that
// were not produced by the materializer are skipped.
func (s *questionService) objectKey(path string) (string, bool) {
	if s.s3cfg.PublicBaseURL != "" {
		path = strings.TrimPrefix(path, s.s3cfg.PublicBaseURL)
	}
	path = strings.TrimPrefix(path, "/")
	if !strings.HasPrefix(path, "papers/") {
		return "", false
	}
	return path, true
}

func (s *questionService) Stats(ctx context.Context) (*QuestionStats, error) {
	total, err := s.questionRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats := &QuestionStats{Total: total}
	tags, err := s.tagSvc.List(ctx)
	if err != nil {
		log.Printf("service.QuestionService: tag usage lookup failed: %v", err)
		return stats, nil
	}
	for _, t := range tags {
		stats.Tags = append(stats.Tags, TagUsage{Name: t.Name, Count: t.UsageCount})
	}
	return stats, nil
}

func restrictToVocabulary(proposed, vocabulary []string) domain.StringList {
	vocab := make(map[string]bool, len(vocabulary))
	for _, tag := range vocabulary {
		vocab[tag] = true
	}
	out := domain.StringList{}
	seen := make(map[string]bool)
	for _, tag := range proposed {
		if vocab[tag] && !seen[tag] {
			seen[tag] = true
			out = append(out, tag)
		}
	}
	return out
}

func normalizeImages(in []string) domain.StringList {
	out := domain.StringList{}
	for _, img := range in {
		if img != "" {
			out = append(out, img)
		}
	}
	return out
}
