package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"tiku/internal/domain"
	"tiku/internal/port"
)

type exportRepo struct {
	db *sqlx.DB
}

// NewExportRepo creates a new PostgreSQL-backed ExportRepository.
func NewExportRepo(db *sqlx.DB) port.ExportRepository {
	return &exportRepo{db: db}
}

func (r *exportRepo) Create(ctx context.Context, rec *domain.ExportRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO export_history (id, title, question_ids, format, mode, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.Title, rec.QuestionIDs, rec.Format, rec.Mode, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("exportRepo.Create: %w", err)
	}
	return nil
}

func (r *exportRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ExportRecord, error) {
	var rec domain.ExportRecord
	err := r.db.GetContext(ctx, &rec, "SELECT * FROM export_history WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("exportRepo.GetByID: %w", err)
	}
	return &rec, nil
}

func (r *exportRepo) List(ctx context.Context, limit int) ([]domain.ExportRecord, error) {
	var recs []domain.ExportRecord
	err := r.db.SelectContext(ctx, &recs,
		"SELECT * FROM export_history ORDER BY created_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("exportRepo.List: %w", err)
	}
	return recs, nil
}
