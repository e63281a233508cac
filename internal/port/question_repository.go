package port

import (
	"context"

	"github.com/google/uuid"

	"tiku/internal/domain"
)

// QuestionRepository abstracts question persistence.
type QuestionRepository interface {
	Create(ctx context.Context, q *domain.Question) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Question, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Question, error)
	List(ctx context.Context, offset, limit int) ([]domain.Question, int, error)
	SearchByKeyword(ctx context.Context, keyword string, offset, limit int) ([]domain.Question, int, error)
	SearchByTags(ctx context.Context, tags []string, offset, limit int) ([]domain.Question, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}
