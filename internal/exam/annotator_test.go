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

func newTestAnnotator(llm port.ChatCompleter) *exam.Annotator {
	return exam.NewAnnotator(llm, &config.LLMConfig{MaxTokens: 4000, Temperature: 0.7})
}

func TestAnnotator_AutoTagAndAnswer_Success(t *testing.T) {
	reply := `{"latex_content": "求 $f(x) = x^2$ 的导数。", "tags": ["导数题"], "answer": "$f'(x) = 2x$"}`

	llm := new(mocks.MockChatCompleter)
	llm.On("Complete", mock.Anything, mock.Anything).Return(reply, nil)

	tags, answer, formatted := newTestAnnotator(llm).AutoTagAndAnswer(
		context.Background(), "求f(x)=x^2的导数", "", testVocabulary)

	assert.Equal(t, []string{"导数题"}, tags)
	assert.Equal(t, "$f'(x) = 2x$", answer)
	assert.Equal(t, "求 $f(x) = x^2$ 的导数。", formatted)
}

func TestAnnotator_AutoTagAndAnswer_InvalidTagsFiltered(t *testing.T) {
	reply := `{"latex_content": "题目", "tags": ["导数题", "高等数学", "导数题"], "answer": "答"}`

	llm := new(mocks.MockChatCompleter)
	llm.On("Complete", mock.Anything, mock.Anything).Return(reply, nil)

	tags, _, _ := newTestAnnotator(llm).AutoTagAndAnswer(
		context.Background(), "题目", "", testVocabulary)

	assert.Equal(t, []string{"导数题"}, tags)
}

func TestAnnotator_AutoTagAndAnswer_TransportError(t *testing.T) {
	llm := new(mocks.MockChatCompleter)
	llm.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("timeout"))

	tags, answer, formatted := newTestAnnotator(llm).AutoTagAndAnswer(
		context.Background(), "求导数", "", testVocabulary)

	assert.Empty(t, tags)
	assert.Equal(t, exam.FailedAnswerMessage, answer)
	assert.Equal(t, "求导数", formatted)
}

func TestAnnotator_AutoTagAndAnswer_TextualFallback(t *testing.T) {
	// Not JSON at all, but carries a vocabulary tag and a marked solution.
	reply := "这道题属于三角函数。\n解答：利用和角公式展开。\n最终结果为 1。"

	llm := new(mocks.MockChatCompleter)
	llm.On("Complete", mock.Anything, mock.Anything).Return(reply, nil)

	tags, answer, formatted := newTestAnnotator(llm).AutoTagAndAnswer(
		context.Background(), "原题", "", testVocabulary)

	assert.Equal(t, []string{"三角函数"}, tags)
	assert.Contains(t, answer, "利用和角公式展开")
	assert.Contains(t, answer, "最终结果为 1")
	assert.Equal(t, "原题", formatted)
}

func TestAnnotator_AutoTagAndAnswer_FallbackWithoutAnyUsableText(t *testing.T) {
	llm := new(mocks.MockChatCompleter)
	llm.On("Complete", mock.Anything, mock.Anything).Return("我暂时无法处理这个请求。", nil)

	tags, answer, formatted := newTestAnnotator(llm).AutoTagAndAnswer(
		context.Background(), "求导数", "", testVocabulary)

	assert.Empty(t, tags)
	assert.Equal(t, exam.FailedAnswerMessage, answer)
	assert.Equal(t, "求导数", formatted)
}

func TestAnnotator_AutoTagAndAnswer_EmptyFieldsDegrade(t *testing.T) {
	reply := `{"latex_content": "", "tags": [], "answer": ""}`

	llm := new(mocks.MockChatCompleter)
	llm.On("Complete", mock.Anything, mock.Anything).Return(reply, nil)

	tags, answer, formatted := newTestAnnotator(llm).AutoTagAndAnswer(
		context.Background(), "原题", "", testVocabulary)

	assert.Empty(t, tags)
	assert.Equal(t, exam.FailedAnswerMessage, answer)
	assert.Equal(t, "原题", formatted)
}

func TestAnnotator_AutoTagAndAnswer_SourceInPrompt(t *testing.T) {
	llm := new(mocks.MockChatCompleter)
	llm.On("Complete", mock.Anything, mock.MatchedBy(func(req port.ChatRequest) bool {
		if len(req.Messages) != 1 {
			return false
		}
		prompt := req.Messages[0].Content
		return strings.Contains(prompt, "2023年高考真题") && strings.Contains(prompt, "求导数")
	})).Return(`{"latex_content": "求导数", "tags": [], "answer": "答"}`, nil)

	newTestAnnotator(llm).AutoTagAndAnswer(
		context.Background(), "求导数", "2023年高考真题", testVocabulary)
	llm.AssertExpectations(t)
}
