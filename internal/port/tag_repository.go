package port

import (
	"context"

	"tiku/internal/domain"
)

// TagRepository abstracts the controlled tag vocabulary storage.
type TagRepository interface {
	List(ctx context.Context, limit int) ([]domain.Tag, error)
	Upsert(ctx context.Context, name string) error
	IncrementUsage(ctx context.Context, names []string) error
}
