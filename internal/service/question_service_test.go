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

func newTestTagService(tagRepo *mocks.MockTagRepo) service.TagService {
	return service.NewTagService(tagRepo, &config.TagsConfig{
		Vocabulary: []string{"数列", "不等式", "导数题"},
	})
}

func TestQuestionService_Create_Success(t *testing.T) {
	questionRepo := new(mocks.MockQuestionRepo)
	questionRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	tagRepo := new(mocks.MockTagRepo)
	tagRepo.On("List", mock.Anything, mock.Anything).Return([]domain.Tag{}, nil)
	tagRepo.On("IncrementUsage", mock.Anything, []string{"数列"}).Return(nil)

	svc := service.NewQuestionService(questionRepo, newTestTagService(tagRepo), nil, &config.S3Config{})
	q, err := svc.Create(context.Background(), service.QuestionCreateInput{
		LatexContent: "已知数列 $a_n$，求通项公式。",
		Tags:         []string{"数列", "奥数竞赛", "数列"},
		Source:       "2023年某省模拟",
	})

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, q.ID)
	// Out-of-vocabulary and duplicate tags are dropped.
	assert.Equal(t, domain.StringList{"数列"}, q.Tags)
	questionRepo.AssertExpectations(t)
	tagRepo.AssertExpectations(t)
}

func TestQuestionService_Create_EmptyBody(t *testing.T) {
	svc := service.NewQuestionService(new(mocks.MockQuestionRepo), newTestTagService(new(mocks.MockTagRepo)), nil, &config.S3Config{})
	_, err := svc.Create(context.Background(), service.QuestionCreateInput{})
	assert.ErrorIs(t, err, domain.ErrEmptyQuestionBody)
}

func TestQuestionService_Create_TooLong(t *testing.T) {
	svc := service.NewQuestionService(new(mocks.MockQuestionRepo), newTestTagService(new(mocks.MockTagRepo)), nil, &config.S3Config{})

	_, err := svc.Create(context.Background(), service.QuestionCreateInput{
		LatexContent: strings.Repeat("a", domain.MaxQuestionLength+1),
	})
	assert.ErrorIs(t, err, domain.ErrQuestionTooLong)

	_, err = svc.Create(context.Background(), service.QuestionCreateInput{
		LatexContent:    "题目",
		ReferenceAnswer: strings.Repeat("a", domain.MaxAnswerLength+1),
	})
	assert.ErrorIs(t, err, domain.ErrAnswerTooLong)
}

func TestQuestionService_GetAnswer(t *testing.T) {
	id := uuid.New()
	questionRepo := new(mocks.MockQuestionRepo)
	questionRepo.On("GetByID", mock.Anything, id).Return(&domain.Question{
		ID:              id,
		LatexContent:    "题目",
		ReferenceAnswer: "$x = 2$",
	}, nil)

	svc := service.NewQuestionService(questionRepo, newTestTagService(new(mocks.MockTagRepo)), nil, &config.S3Config{})
	answer, err := svc.GetAnswer(context.Background(), id)

	assert.NoError(t, err)
	assert.Equal(t, "$x = 2$", answer)
}

func TestQuestionService_GetAnswer_Missing(t *testing.T) {
	id := uuid.New()
	questionRepo := new(mocks.MockQuestionRepo)
	questionRepo.On("GetByID", mock.Anything, id).Return(&domain.Question{ID: id, LatexContent: "题目"}, nil)

	svc := service.NewQuestionService(questionRepo, newTestTagService(new(mocks.MockTagRepo)), nil, &config.S3Config{})
	_, err := svc.GetAnswer(context.Background(), id)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestQuestionService_Search_TagsTakePrecedence(t *testing.T) {
	questionRepo := new(mocks.MockQuestionRepo)
	questionRepo.On("SearchByTags", mock.Anything, []string{"数列"}, 0, 20).
		Return([]domain.Question{}, 0, nil)

	svc := service.NewQuestionService(questionRepo, newTestTagService(new(mocks.MockTagRepo)), nil, &config.S3Config{})
	_, _, err := svc.Search(context.Background(), "关键词", []string{"数列"}, 0, 20)

	assert.NoError(t, err)
	questionRepo.AssertExpectations(t)
	questionRepo.AssertNotCalled(t, "SearchByKeyword")
}

func TestQuestionService_Search_DefaultsToList(t *testing.T) {
	questionRepo := new(mocks.MockQuestionRepo)
	questionRepo.On("List", mock.Anything, 0, 20).Return([]domain.Question{}, 0, nil)

	svc := service.NewQuestionService(questionRepo, newTestTagService(new(mocks.MockTagRepo)), nil, &config.S3Config{})
	_, _, err := svc.Search(context.Background(), "", nil, -5, 1000)

	assert.NoError(t, err)
	questionRepo.AssertExpectations(t)
}

func TestQuestionService_Delete_CleansUpImages(t *testing.T) {
	id := uuid.New()
	questionRepo := new(mocks.MockQuestionRepo)
	questionRepo.On("GetByID", mock.Anything, id).Return(&domain.Question{
		ID: id,
		Images: domain.StringList{
			"https://cdn.example.com/papers/req-1/fig.png",
			"https://other.example.com/outside.png",
		},
	}, nil)
	questionRepo.On("Delete", mock.Anything, id).Return(nil)

	storage := new(mocks.MockObjectStorage)
	storage.On("Delete", mock.Anything, "tiku-test", "papers/req-1/fig.png").Return(nil)

	svc := service.NewQuestionService(questionRepo, newTestTagService(new(mocks.MockTagRepo)), storage, &config.S3Config{
		Bucket:        "tiku-test",
		PublicBaseURL: "https://cdn.example.com",
	})

	assert.NoError(t, svc.Delete(context.Background(), id))
	storage.AssertNumberOfCalls(t, "Delete", 1)
}

func TestQuestionService_Delete_Missing(t *testing.T) {
	id := uuid.New()
	questionRepo := new(mocks.MockQuestionRepo)
	questionRepo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrNotFound)

	svc := service.NewQuestionService(questionRepo, newTestTagService(new(mocks.MockTagRepo)), nil, &config.S3Config{})
	assert.ErrorIs(t, svc.Delete(context.Background(), id), domain.ErrNotFound)
}

func TestQuestionService_Stats(t *testing.T) {
	questionRepo := new(mocks.MockQuestionRepo)
	questionRepo.On("Count", mock.Anything).Return(42, nil)

	tagRepo := new(mocks.MockTagRepo)
	tagRepo.On("List", mock.Anything, mock.Anything).Return([]domain.Tag{
		{Name: "数列", UsageCount: 7},
		{Name: "不等式", UsageCount: 3},
	}, nil)

	svc := service.NewQuestionService(questionRepo, newTestTagService(tagRepo), nil, &config.S3Config{})
	stats, err := svc.Stats(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 42, stats.Total)
	assert.Equal(t, []service.TagUsage{
		{Name: "数列", Count: 7},
		{Name: "不等式", Count: 3},
	}, stats.Tags)
}
