package port

import (
	"context"

	"github.com/google/uuid"

	"tiku/internal/domain"
)

// ExportRepository abstracts export history persistence.
type ExportRepository interface {
	Create(ctx context.Context, rec *domain.ExportRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ExportRecord, error)
	List(ctx context.Context, limit int) ([]domain.ExportRecord, error)
}
