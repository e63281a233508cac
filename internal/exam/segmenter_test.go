package exam_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"tiku/internal/config"
	"tiku/internal/exam"
	"tiku/internal/port"
	"tiku/mocks"
)

var testVocabulary = []string{"数列", "不等式", "导数题", "三角函数"}

func newTestSegmenter(llm port.ChatCompleter) *exam.Segmenter {
	return exam.NewSegmenter(llm, &config.LLMConfig{MaxTokens: 4000, Temperature: 0.7})
}

func TestSegmenter_ParseExamPaper_Success(t *testing.T) {
	reply := `{"questions": [
		{"question": "已知数列 $a_n$，求通项公式。", "image": [], "tags": ["数列"], "answer": "$a_n = 2n$"},
		{"question": "求函数 $f(x)$ 的极值。", "image": ["page_img_1.png"], "tags": ["导数题"], "answer": ""}
	]}`

	llm := new(mocks.MockChatCompleter)
	llm.On("Complete", mock.Anything, mock.Anything).Return(reply, nil)

	imageMap := map[string]string{"page_img_1.png": "/papers/req-1/abc.png"}
	questions, report, err := newTestSegmenter(llm).ParseExamPaper(
		context.Background(), "transcript", imageMap, testVocabulary)

	assert.NoError(t, err)
	assert.Len(t, questions, 2)
	assert.Empty(t, report.Warnings)

	assert.Equal(t, "已知数列 $a_n$，求通项公式。", questions[0].Question)
	assert.Equal(t, []string{"数列"}, questions[0].Tags)
	assert.Equal(t, "$a_n = 2n$", questions[0].Answer)

	assert.Equal(t, []string{"/papers/req-1/abc.png"}, questions[1].Images)
}

func TestSegmenter_ParseExamPaper_PromptCarriesTranscriptAndVocabulary(t *testing.T) {
	llm := new(mocks.MockChatCompleter)
	llm.On("Complete", mock.Anything, mock.MatchedBy(func(req port.ChatRequest) bool {
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			return false
		}
		prompt := req.Messages[0].Content
		return strings.Contains(prompt, "求导数") && strings.Contains(prompt, "数列")
	})).Return(`{"questions": []}`, nil)

	_, _, err := newTestSegmenter(llm).ParseExamPaper(
		context.Background(), "求导数", nil, testVocabulary)
	assert.NoError(t, err)
	llm.AssertExpectations(t)
}

func TestSegmenter_ParseExamPaper_InvalidTagDropped(t *testing.T) {
	reply := `{"questions": [{"question": "题目", "image": [], "tags": ["数列", "奥数竞赛"], "answer": "答"}]}`

	llm := new(mocks.MockChatCompleter)
	llm.On("Complete", mock.Anything, mock.Anything).Return(reply, nil)

	questions, report, err := newTestSegmenter(llm).ParseExamPaper(
		context.Background(), "transcript", nil, testVocabulary)

	assert.NoError(t, err)
	assert.Len(t, questions, 1)
	assert.Equal(t, []string{"数列"}, questions[0].Tags)
	assert.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "奥数竞赛")
}

func TestSegmenter_ParseExamPaper_DuplicateTagDeduplicated(t *testing.T) {
	reply := `{"questions": [{"question": "题目", "image": [], "tags": ["数列", "数列", "不等式"], "answer": "答"}]}`

	llm := new(mocks.MockChatCompleter)
	llm.On("Complete", mock.Anything, mock.Anything).Return(reply, nil)

	questions, report, err := newTestSegmenter(llm).ParseExamPaper(
		context.Background(), "transcript", nil, testVocabulary)

	assert.NoError(t, err)
	assert.Len(t, questions, 1)
	assert.Equal(t, []string{"数列", "不等式"}, questions[0].Tags)
	assert.Empty(t, report.Warnings)
}

func TestSegmenter_ParseExamPaper_UnknownImageDropped(t *testing.T) {
	reply := `{"questions": [{"question": "题目", "image": ["missing.png"], "tags": [], "answer": ""}]}`

	llm := new(mocks.MockChatCompleter)
	llm.On("Complete", mock.Anything, mock.Anything).Return(reply, nil)

	questions, report, err := newTestSegmenter(llm).ParseExamPaper(
		context.Background(), "transcript", map[string]string{}, testVocabulary)

	assert.NoError(t, err)
	assert.Len(t, questions, 1)
	assert.Empty(t, questions[0].Images)
	assert.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "missing.png")
}

func TestSegmenter_ParseExamPaper_ImageAsSingleString(t *testing.T) {
	reply := `{"questions": [{"question": "题目", "image": "fig.png", "tags": [], "answer": ""}]}`

	llm := new(mocks.MockChatCompleter)
	llm.On("Complete", mock.Anything, mock.Anything).Return(reply, nil)

	imageMap := map[string]string{"fig.png": "/papers/req-1/fig.png"}
	questions, _, err := newTestSegmenter(llm).ParseExamPaper(
		context.Background(), "transcript", imageMap, testVocabulary)

	assert.NoError(t, err)
	assert.Len(t, questions, 1)
	assert.Equal(t, []string{"/papers/req-1/fig.png"}, questions[0].Images)
}

func TestSegmenter_ParseExamPaper_EmptyBodySkipped(t *testing.T) {
	reply := `{"questions": [
		{"question": "", "image": [], "tags": [], "answer": ""},
		{"question": "有效题目", "image": [], "tags": [], "answer": ""}
	]}`

	llm := new(mocks.MockChatCompleter)
	llm.On("Complete", mock.Anything, mock.Anything).Return(reply, nil)

	questions, report, err := newTestSegmenter(llm).ParseExamPaper(
		context.Background(), "transcript", nil, testVocabulary)

	assert.NoError(t, err)
	assert.Len(t, questions, 1)
	assert.Equal(t, "有效题目", questions[0].Question)
	assert.Len(t, report.Warnings, 1)
}

func TestSegmenter_ParseExamPaper_NoJSONReply(t *testing.T) {
	llm := new(mocks.MockChatCompleter)
	llm.On("Complete", mock.Anything, mock.Anything).Return("抱歉，我无法处理这份试卷。", nil)

	questions, report, err := newTestSegmenter(llm).ParseExamPaper(
		context.Background(), "transcript", nil, testVocabulary)

	assert.NoError(t, err)
	assert.Empty(t, questions)
	assert.NotEmpty(t, report.Warnings)
}

func TestSegmenter_ParseExamPaper_RepairedReply(t *testing.T) {
	// Trailing comma and single quotes: common model defects.
	reply := "```json\n{'questions': [{'question': '题目', 'image': [], 'tags': ['数列',], 'answer': '答',},],}\n```"

	llm := new(mocks.MockChatCompleter)
	llm.On("Complete", mock.Anything, mock.Anything).Return(reply, nil)

	questions, _, err := newTestSegmenter(llm).ParseExamPaper(
		context.Background(), "transcript", nil, testVocabulary)

	assert.NoError(t, err)
	assert.Len(t, questions, 1)
	assert.Equal(t, []string{"数列"}, questions[0].Tags)
}

func TestSegmenter_ParseExamPaper_TransportError(t *testing.T) {
	llm := new(mocks.MockChatCompleter)
	llm.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("connection refused"))

	_, _, err := newTestSegmenter(llm).ParseExamPaper(
		context.Background(), "transcript", nil, testVocabulary)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "segmenting exam paper")
}
