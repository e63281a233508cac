// Package exam drives the LLM that turns OCR transcripts into discrete,
// tagged, solved exam questions. The LLM is treated as an unreliable text
// oracle: its reply goes through jsonrepair, and every malformed piece
// degrades the result instead of failing the request.
package exam

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"tiku/internal/config"
	"tiku/internal/domain"
	"tiku/internal/jsonrepair"
	"tiku/internal/port"
)

// SegmentReport collects the human-readable warnings produced while a
// transcript was segmented. An empty question list always comes with at
// least one warning explaining why.
type SegmentReport struct {
	Warnings []string `json:"warnings"`
}

func (r *SegmentReport) warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.Warnings = append(r.Warnings, msg)
	log.Printf("exam.Segmenter: %s", msg)
}

// Segmenter splits an OCR transcript into question records via one LLM
// round trip. It holds no mutable state; concurrent use is safe.
type Segmenter struct {
	llm         port.ChatCompleter
	maxTokens   int
	temperature float64
}

// NewSegmenter creates a Segmenter using the given chat client.
func NewSegmenter(llm port.ChatCompleter, cfg *config.LLMConfig) *Segmenter {
	return &Segmenter{
		llm:         llm,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// wireQuestion mirrors one element of the LLM's questions array.
type wireQuestion struct {
	Question string       `json:"question"`
	Image    stringOrList `json:"image"`
	Tags     stringOrList `json:"tags"`
	Answer   string       `json:"answer"`
}

// stringOrList accepts either a JSON string or an array of strings; models
// regularly flatten single-element arrays.
type stringOrList []string

func (s *stringOrList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single != "" {
			*s = []string{single}
		}
		return nil
	}
	return fmt.Errorf("expected string or array of strings, got %s", truncate(string(data), 80))
}

// ParseExamPaper segments transcript into question records. imageMap maps
// OCR-original filenames to materialized stable paths; vocabulary is the
// controlled tag set. Parse failures are soft: the returned error is non-nil
// only when the LLM round trip itself fails.
func (s *Segmenter) ParseExamPaper(
	ctx context.Context,
	transcript string,
	imageMap map[string]string,
	vocabulary []string,
) ([]domain.ParsedQuestion, *SegmentReport, error) {
	report := &SegmentReport{}

	filenames := make([]string, 0, len(imageMap))
	for name := range imageMap {
		filenames = append(filenames, name)
	}

	prompt := buildSegmentPrompt(transcript, filenames, vocabulary)
	reply, err := s.llm.Complete(ctx, port.ChatRequest{
		Messages:    []port.ChatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		return nil, report, fmt.Errorf("segmenting exam paper: %w", err)
	}

	var parsed struct {
		Questions []json.RawMessage `json:"questions"`
	}
	if err := jsonrepair.DecodeObject(reply, &parsed); err != nil {
		report.warnf("could not recover a JSON object from the model reply: %v", err)
		return nil, report, nil
	}

	if len(parsed.Questions) == 0 {
		report.warnf("model reply parsed but contained no questions")
		return nil, report, nil
	}

	vocab := make(map[string]bool, len(vocabulary))
	for _, tag := range vocabulary {
		vocab[tag] = true
	}

	questions := make([]domain.ParsedQuestion, 0, len(parsed.Questions))
	for i, raw := range parsed.Questions {
		var wire wireQuestion
		if err := json.Unmarshal(raw, &wire); err != nil {
			report.warnf("question %d is not a valid record, skipping: %v", i+1, err)
			continue
		}
		if wire.Question == "" {
			report.warnf("question %d has an empty body, skipping", i+1)
			continue
		}

		q := domain.ParsedQuestion{
			Question: wire.Question,
			Images:   []string{},
			Tags:     []string{},
			Answer:   wire.Answer,
		}

		for _, name := range wire.Image {
			path, ok := imageMap[name]
			if !ok {
				report.warnf("question %d references unknown image %q, dropping the reference", i+1, name)
				continue
			}
			q.Images = append(q.Images, path)
		}

		seen := make(map[string]bool, len(wire.Tags))
		for _, tag := range wire.Tags {
			if !vocab[tag] {
				report.warnf("question %d proposes tag %q outside the vocabulary, dropping it", i+1, tag)
				continue
			}
			if seen[tag] {
				continue
			}
			seen[tag] = true
			q.Tags = append(q.Tags, tag)
		}

		questions = append(questions, q)
	}

	if len(questions) == 0 && len(report.Warnings) == 0 {
		report.warnf("no usable questions survived validation")
	}
	return questions, report, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
