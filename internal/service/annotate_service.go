package service

import (
	"context"

	"tiku/internal/domain"
	"tiku/internal/exam"
)

// AnnotateResult is a question body enriched by the model: formatted LaTeX,
// vocabulary tags, and a drafted reference answer.
type AnnotateResult struct {
	LatexContent string   `json:"latex_content"`
	Tags         []string `json:"tags"`
	Answer       string   `json:"answer"`
}

// AnnotateService drafts tags and a reference answer for a single question
// body. It degrades instead of failing; only invalid input is an error.
type AnnotateService interface {
	Annotate(ctx context.Context, latexContent, source string) (*AnnotateResult, error)
}

type annotateService struct {
	annotator *exam.Annotator
	tagSvc    TagService
}

// NewAnnotateService creates an AnnotateService implementation.
func NewAnnotateService(annotator *exam.Annotator, tagSvc TagService) AnnotateService {
	return &annotateService{annotator: annotator, tagSvc: tagSvc}
}

func (s *annotateService) Annotate(ctx context.Context, latexContent, source string) (*AnnotateResult, error) {
	if latexContent == "" {
		return nil, domain.ErrEmptyQuestionBody
	}
	if len(latexContent) > domain.MaxQuestionLength {
		return nil, domain.ErrQuestionTooLong
	}

	vocabulary := s.tagSvc.Vocabulary(ctx)
	tags, answer, formatted := s.annotator.AutoTagAndAnswer(ctx, latexContent, source, vocabulary)

	return &AnnotateResult{
		LatexContent: formatted,
		Tags:         tags,
		Answer:       answer,
	}, nil
}
