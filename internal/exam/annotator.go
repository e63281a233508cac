package exam

import (
	"context"
	"log"
	"strings"

	"tiku/internal/config"
	"tiku/internal/jsonrepair"
	"tiku/internal/port"
)

// FailedAnswerMessage is returned as the answer when neither the model reply
// nor the textual fallback yields anything usable.
const FailedAnswerMessage = "自动生成解答失败，请手动输入"

// answerMarkers are the line prefixes the textual fallback treats as the
// start of a worked solution.
var answerMarkers = []string{"解答", "答案", "解：", "Answer:", "Solution:"}

// Annotator formats a single question body, tags it from the controlled
// vocabulary, and drafts a reference answer, in one LLM round trip. It never
// returns an error: any failure degrades to a usable fallback tuple.
type Annotator struct {
	llm         port.ChatCompleter
	maxTokens   int
	temperature float64
}

// NewAnnotator creates an Annotator using the given chat client.
func NewAnnotator(llm port.ChatCompleter, cfg *config.LLMConfig) *Annotator {
	return &Annotator{
		llm:         llm,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// AutoTagAndAnswer returns (tags, answer, formatted body). Tags are always a
// subset of vocabulary. On any failure the original body is returned as the
// formatted content together with FailedAnswerMessage.
func (a *Annotator) AutoTagAndAnswer(
	ctx context.Context,
	latexContent, source string,
	vocabulary []string,
) ([]string, string, string) {
	prompt := buildAnnotatePrompt(latexContent, source, vocabulary)
	reply, err := a.llm.Complete(ctx, port.ChatRequest{
		Messages:    []port.ChatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
	})
	if err != nil {
		log.Printf("exam.Annotator: chat round trip failed, degrading: %v", err)
		return []string{}, FailedAnswerMessage, latexContent
	}

	var parsed struct {
		LatexContent string       `json:"latex_content"`
		Tags         stringOrList `json:"tags"`
		Answer       string       `json:"answer"`
	}
	if err := jsonrepair.DecodeObject(reply, &parsed); err != nil {
		log.Printf("exam.Annotator: reply not parseable, trying textual fallback: %v", err)
		return a.textualFallback(reply, latexContent, vocabulary)
	}

	tags := filterTags(parsed.Tags, vocabulary)

	answer := parsed.Answer
	if answer == "" {
		answer = FailedAnswerMessage
	}
	formatted := parsed.LatexContent
	if formatted == "" {
		formatted = latexContent
	}
	return tags, answer, formatted
}

// textualFallback scavenges the raw reply: vocabulary tags by literal
// substring, the answer from lines following a solution marker. The original
// body is always returned as the formatted content on this path.
func (a *Annotator) textualFallback(reply, latexContent string, vocabulary []string) ([]string, string, string) {
	tags := extractTagsFromText(reply, vocabulary)
	answer := extractAnswerFromText(reply)
	if answer == "" {
		answer = FailedAnswerMessage
	}
	return tags, answer, latexContent
}

func filterTags(proposed []string, vocabulary []string) []string {
	vocab := make(map[string]bool, len(vocabulary))
	for _, tag := range vocabulary {
		vocab[tag] = true
	}
	tags := []string{}
	seen := make(map[string]bool)
	for _, tag := range proposed {
		if vocab[tag] && !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags
}

// extractTagsFromText returns the vocabulary entries that occur literally in
// text, preserving vocabulary order.
func extractTagsFromText(text string, vocabulary []string) []string {
	tags := []string{}
	for _, tag := range vocabulary {
		if strings.Contains(text, tag) {
			tags = append(tags, tag)
		}
	}
	return tags
}

// extractAnswerFromText returns the trimmed lines from the first answer
// marker onward, or "" when no marker is present.
func extractAnswerFromText(text string) string {
	var answerLines []string
	inAnswer := false
	for _, line := range strings.Split(text, "\n") {
		if !inAnswer {
			for _, marker := range answerMarkers {
				if strings.Contains(line, marker) {
					inAnswer = true
					break
				}
			}
		}
		if inAnswer {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				answerLines = append(answerLines, trimmed)
			}
		}
	}
	return strings.Join(answerLines, "\n")
}
