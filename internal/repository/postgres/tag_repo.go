package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"tiku/internal/domain"
	"tiku/internal/port"
)

type tagRepo struct {
	db *sqlx.DB
}

// NewTagRepo creates a new PostgreSQL-backed TagRepository.
func NewTagRepo(db *sqlx.DB) port.TagRepository {
	return &tagRepo{db: db}
}

func (r *tagRepo) List(ctx context.Context, limit int) ([]domain.Tag, error) {
	var tags []domain.Tag
	err := r.db.SelectContext(ctx, &tags,
		"SELECT * FROM tags ORDER BY usage_count DESC, name ASC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("tagRepo.List: %w", err)
	}
	return tags, nil
}

func (r *tagRepo) Upsert(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tags (id, name, usage_count, created_at)
		 VALUES ($1, $2, 0, $3)
		 ON CONFLICT (name) DO NOTHING`,
		uuid.New(), name, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("tagRepo.Upsert: %w", err)
	}
	return nil
}

func (r *tagRepo) IncrementUsage(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}

	// A batch may carry the same tag several times; each occurrence counts.
	counts := make(map[string]int, len(names))
	order := make([]string, 0, len(names))
	for _, name := range names {
		if counts[name] == 0 {
			order = append(order, name)
		}
		counts[name]++
	}

	valueStrings := make([]string, 0, len(order))
	valueArgs := make([]interface{}, 0, len(order)*2)
	for i, name := range order {
		valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d::int)", i*2+1, i*2+2))
		valueArgs = append(valueArgs, name, counts[name])
	}

	query := fmt.Sprintf(
		`UPDATE tags SET usage_count = usage_count + v.cnt
		 FROM (VALUES %s) AS v(name, cnt)
		 WHERE tags.name = v.name`,
		strings.Join(valueStrings, ", "))

	if _, err := r.db.ExecContext(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("tagRepo.IncrementUsage: %w", err)
	}
	return nil
}
