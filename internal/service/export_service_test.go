package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"tiku/internal/config"
	"tiku/internal/domain"
	"tiku/internal/service"
	"tiku/mocks"
)

func newTestExportService(questionRepo *mocks.MockQuestionRepo, exportRepo *mocks.MockExportRepo) service.ExportService {
	return service.NewExportService(questionRepo, exportRepo, &config.ExportConfig{MaxQuestions: 3})
}

func TestExportService_Export_PreservesSelectionOrder(t *testing.T) {
	first := domain.Question{ID: uuid.New(), LatexContent: "第一题"}
	second := domain.Question{ID: uuid.New(), LatexContent: "第二题"}

	questionRepo := new(mocks.MockQuestionRepo)
	// Repository returns rows in its own order.
	questionRepo.On("GetByIDs", mock.Anything, []uuid.UUID{first.ID, second.ID}).
		Return([]domain.Question{second, first}, nil)

	exportRepo := new(mocks.MockExportRepo)
	exportRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newTestExportService(questionRepo, exportRepo)
	out, err := svc.Export(context.Background(), service.ExportInput{
		Title:       "周测",
		QuestionIDs: []uuid.UUID{first.ID, second.ID},
		Format:      domain.ExportFormatMarkdown,
		Mode:        domain.ExportModeQuestions,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.UUIDList{first.ID, second.ID}, out.Record.QuestionIDs)
	firstPos := strings.Index(out.Content, "第一题")
	secondPos := strings.Index(out.Content, "第二题")
	assert.True(t, firstPos >= 0 && secondPos >= 0 && firstPos < secondPos)
	exportRepo.AssertExpectations(t)
}

func TestExportService_Export_DroppedUnknownIDs(t *testing.T) {
	known := domain.Question{ID: uuid.New(), LatexContent: "题目"}
	unknown := uuid.New()

	questionRepo := new(mocks.MockQuestionRepo)
	questionRepo.On("GetByIDs", mock.Anything, mock.Anything).
		Return([]domain.Question{known}, nil)

	exportRepo := new(mocks.MockExportRepo)
	exportRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newTestExportService(questionRepo, exportRepo)
	out, err := svc.Export(context.Background(), service.ExportInput{
		QuestionIDs: []uuid.UUID{known.ID, unknown},
		Format:      domain.ExportFormatLatex,
		Mode:        domain.ExportModeWithAnswers,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.UUIDList{known.ID}, out.Record.QuestionIDs)
}

func TestExportService_Export_Validation(t *testing.T) {
	svc := newTestExportService(new(mocks.MockQuestionRepo), new(mocks.MockExportRepo))

	_, err := svc.Export(context.Background(), service.ExportInput{
		Format: domain.ExportFormatLatex,
		Mode:   domain.ExportModeQuestions,
	})
	assert.ErrorIs(t, err, domain.ErrExportEmpty)

	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	_, err = svc.Export(context.Background(), service.ExportInput{
		QuestionIDs: ids,
		Format:      domain.ExportFormatLatex,
		Mode:        domain.ExportModeQuestions,
	})
	assert.ErrorIs(t, err, domain.ErrExportTooLarge)

	_, err = svc.Export(context.Background(), service.ExportInput{
		QuestionIDs: ids[:1],
		Format:      "pdf",
		Mode:        domain.ExportModeQuestions,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidExportFormat)

	_, err = svc.Export(context.Background(), service.ExportInput{
		QuestionIDs: ids[:1],
		Format:      domain.ExportFormatLatex,
		Mode:        "answers_only",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidExportMode)
}

func TestExportService_Export_HistoryFailureIsNotFatal(t *testing.T) {
	q := domain.Question{ID: uuid.New(), LatexContent: "题目"}

	questionRepo := new(mocks.MockQuestionRepo)
	questionRepo.On("GetByIDs", mock.Anything, mock.Anything).
		Return([]domain.Question{q}, nil)

	exportRepo := new(mocks.MockExportRepo)
	exportRepo.On("Create", mock.Anything, mock.Anything).Return(assert.AnError)

	svc := newTestExportService(questionRepo, exportRepo)
	out, err := svc.Export(context.Background(), service.ExportInput{
		QuestionIDs: []uuid.UUID{q.ID},
		Format:      domain.ExportFormatMarkdown,
		Mode:        domain.ExportModeQuestions,
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, out.Content)
}

func TestExportService_Replay(t *testing.T) {
	q := domain.Question{ID: uuid.New(), LatexContent: "题目", ReferenceAnswer: "答案"}
	rec := &domain.ExportRecord{
		ID:          uuid.New(),
		Title:       "月考",
		QuestionIDs: domain.UUIDList{q.ID},
		Format:      domain.ExportFormatMarkdown,
		Mode:        domain.ExportModeWithAnswers,
	}

	questionRepo := new(mocks.MockQuestionRepo)
	questionRepo.On("GetByIDs", mock.Anything, []uuid.UUID{q.ID}).
		Return([]domain.Question{q}, nil)

	exportRepo := new(mocks.MockExportRepo)
	exportRepo.On("GetByID", mock.Anything, rec.ID).Return(rec, nil)

	svc := newTestExportService(questionRepo, exportRepo)
	out, err := svc.Replay(context.Background(), rec.ID)

	assert.NoError(t, err)
	assert.Contains(t, out.Content, "月考")
	assert.Contains(t, out.Content, "答案")
}
