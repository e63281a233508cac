package service

import (
	"context"
	"log"

	"tiku/internal/config"
	"tiku/internal/domain"
	"tiku/internal/port"
)

// vocabularyLimit caps how many tags the vocabulary can hold.
const vocabularyLimit = 100

// TagService serves the controlled tag vocabulary and tracks usage counts.
type TagService interface {
	Vocabulary(ctx context.Context) []string
	List(ctx context.Context) ([]domain.Tag, error)
	Record(ctx context.Context, tags []string) error
}

type tagService struct {
	tagRepo  port.TagRepository
	fallback []string
}

// NewTagService creates a TagService backed by tagRepo, falling back to the
// configured vocabulary while the tags table is empty.
func NewTagService(tagRepo port.TagRepository, cfg *config.TagsConfig) TagService {
	return &tagService{
		tagRepo:  tagRepo,
		fallback: cfg.Vocabulary,
	}
}

// Vocabulary returns the ordered tag names. Storage errors degrade to the
// configured fallback so segmentation keeps working without the database.
func (s *tagService) Vocabulary(ctx context.Context) []string {
	tags, err := s.tagRepo.List(ctx, vocabularyLimit)
	if err != nil {
		log.Printf("service.TagService: vocabulary query failed, using configured fallback: %v", err)
		return s.fallback
	}
	if len(tags) == 0 {
		return s.fallback
	}
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names
}

func (s *tagService) List(ctx context.Context) ([]domain.Tag, error) {
	tags, err := s.tagRepo.List(ctx, vocabularyLimit)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		tags = make([]domain.Tag, len(s.fallback))
		for i, name := range s.fallback {
			tags[i] = domain.Tag{Name: name}
		}
	}
	return tags, nil
}

// Record bumps usage counts for the given tags. Count maintenance is
// best-effort; failures are logged, not propagated.
func (s *tagService) Record(ctx context.Context, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	if err := s.tagRepo.IncrementUsage(ctx, tags); err != nil {
		log.Printf("service.TagService: incrementing usage counts failed: %v", err)
		return err
	}
	return nil
}
