package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"tiku/internal/config"
	"tiku/internal/domain"
	"tiku/internal/export"
	"tiku/internal/port"
)

// exportHistoryLimit caps how many history entries the listing returns.
const exportHistoryLimit = 50

// ExportInput selects and shapes one paper export.
type ExportInput struct {
	Title       string
	QuestionIDs []uuid.UUID
	Format      domain.ExportFormat
	Mode        domain.ExportMode
}

// ExportOutput is a rendered paper plus its history record.
type ExportOutput struct {
	Record  *domain.ExportRecord `json:"record"`
	Content string               `json:"content"`
}

// ExportService renders question selections into exam-paper text and keeps
// an export history.
type ExportService interface {
	Export(ctx context.Context, input ExportInput) (*ExportOutput, error)
	History(ctx context.Context) ([]domain.ExportRecord, error)
	Replay(ctx context.Context, id uuid.UUID) (*ExportOutput, error)
}

type exportService struct {
	questionRepo port.QuestionRepository
	exportRepo   port.ExportRepository
	maxQuestions int
}

// NewExportService creates an ExportService implementation.
func NewExportService(questionRepo port.QuestionRepository, exportRepo port.ExportRepository, cfg *config.ExportConfig) ExportService {
	return &exportService{
		questionRepo: questionRepo,
		exportRepo:   exportRepo,
		maxQuestions: cfg.MaxQuestions,
	}
}

func (s *exportService) Export(ctx context.Context, input ExportInput) (*ExportOutput, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	questions, err := s.fetchOrdered(ctx, input.QuestionIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	title := input.Title
	if title == "" {
		title = "数学试卷"
	}

	content, err := export.Render(questions, input.Format, input.Mode, title, now)
	if err != nil {
		return nil, err
	}

	rec := &domain.ExportRecord{
		ID:          uuid.New(),
		Title:       title,
		QuestionIDs: questionIDs(questions),
		Format:      input.Format,
		Mode:        input.Mode,
		CreatedAt:   now,
	}
	if err := s.exportRepo.Create(ctx, rec); err != nil {
		// History is bookkeeping; the rendered paper is still usable.
		log.Printf("service.ExportService: recording export history failed: %v", err)
	}

	return &ExportOutput{Record: rec, Content: content}, nil
}

func (s *exportService) History(ctx context.Context) ([]domain.ExportRecord, error) {
	return s.exportRepo.List(ctx, exportHistoryLimit)
}

// Replay re-renders a past export from its recorded selection. Questions
// deleted since the original export are silently absent.
func (s *exportService) Replay(ctx context.Context, id uuid.UUID) (*ExportOutput, error) {
	rec, err := s.exportRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	questions, err := s.fetchOrdered(ctx, rec.QuestionIDs)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, domain.ErrExportEmpty
	}

	content, err := export.Render(questions, rec.Format, rec.Mode, rec.Title, rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &ExportOutput{Record: rec, Content: content}, nil
}

// fetchOrdered loads the selected questions, preserving the caller's order.
// Unknown IDs are dropped rather than failing the whole export.
func (s *exportService) fetchOrdered(ctx context.Context, ids []uuid.UUID) ([]domain.Question, error) {
	fetched, err := s.questionRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]domain.Question, len(fetched))
	for _, q := range fetched {
		byID[q.ID] = q
	}
	ordered := make([]domain.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}
	return ordered, nil
}

func (s *exportService) validate(input ExportInput) error {
	if len(input.QuestionIDs) == 0 {
		return domain.ErrExportEmpty
	}
	if s.maxQuestions > 0 && len(input.QuestionIDs) > s.maxQuestions {
		return domain.ErrExportTooLarge
	}
	switch input.Format {
	case domain.ExportFormatLatex, domain.ExportFormatMarkdown:
	default:
		return domain.ErrInvalidExportFormat
	}
	switch input.Mode {
	case domain.ExportModeQuestions, domain.ExportModeWithAnswers:
	default:
		return domain.ErrInvalidExportMode
	}
	return nil
}

func questionIDs(questions []domain.Question) domain.UUIDList {
	ids := make(domain.UUIDList, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	return ids
}
