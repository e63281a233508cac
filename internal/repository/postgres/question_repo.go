package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"tiku/internal/domain"
	"tiku/internal/port"
)

type questionRepo struct {
	db *sqlx.DB
}

// NewQuestionRepo creates a new PostgreSQL-backed QuestionRepository.
func NewQuestionRepo(db *sqlx.DB) port.QuestionRepository {
	return &questionRepo{db: db}
}

func (r *questionRepo) Create(ctx context.Context, q *domain.Question) error {
	now := time.Now().UTC()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	q.UpdatedAt = now

	query := `INSERT INTO questions (
		id, latex_content, tags, reference_answer, source, images,
		created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		q.ID, q.LatexContent, q.Tags, q.ReferenceAnswer, q.Source, q.Images,
		q.CreatedAt, q.UpdatedAt)
	if err != nil {
		return fmt.Errorf("questionRepo.Create: %w", err)
	}
	return nil
}

func (r *questionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	var q domain.Question
	err := r.db.GetContext(ctx, &q, "SELECT * FROM questions WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("questionRepo.GetByID: %w", err)
	}
	return &q, nil
}

func (r *questionRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Question, error) {
	if len(ids) == 0 {
		return []domain.Question{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf("SELECT * FROM questions WHERE id IN (%s)",
		strings.Join(placeholders, ", "))

	var questions []domain.Question
	if err := r.db.SelectContext(ctx, &questions, query, args...); err != nil {
		return nil, fmt.Errorf("questionRepo.GetByIDs: %w", err)
	}
	return questions, nil
}

func (r *questionRepo) List(ctx context.Context, offset, limit int) ([]domain.Question, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM questions")
	if err != nil {
		return nil, 0, fmt.Errorf("questionRepo.List count: %w", err)
	}

	var questions []domain.Question
	err = r.db.SelectContext(ctx, &questions,
		"SELECT * FROM questions ORDER BY created_at DESC LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("questionRepo.List: %w", err)
	}
	return questions, total, nil
}

func (r *questionRepo) SearchByKeyword(ctx context.Context, keyword string, offset, limit int) ([]domain.Question, int, error) {
	pattern := "%" + keyword + "%"

	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM questions WHERE latex_content ILIKE $1", pattern)
	if err != nil {
		return nil, 0, fmt.Errorf("questionRepo.SearchByKeyword count: %w", err)
	}

	var questions []domain.Question
	err = r.db.SelectContext(ctx, &questions,
		`SELECT * FROM questions WHERE latex_content ILIKE $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("questionRepo.SearchByKeyword: %w", err)
	}
	return questions, total, nil
}

func (r *questionRepo) SearchByTags(ctx context.Context, tags []string, offset, limit int) ([]domain.Question, int, error) {
	// Tags live in a jsonb array column; a question matches when it carries
	// any of the requested tags.
	const match = `EXISTS (
		SELECT 1 FROM jsonb_array_elements_text(tags) AS t
		JOIN jsonb_array_elements_text($1::jsonb) AS want ON t = want
	)`
	filter := domain.StringList(tags)

	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM questions WHERE "+match, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("questionRepo.SearchByTags count: %w", err)
	}

	var questions []domain.Question
	err = r.db.SelectContext(ctx, &questions,
		`SELECT * FROM questions WHERE `+match+`
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		filter, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("questionRepo.SearchByTags: %w", err)
	}
	return questions, total, nil
}

func (r *questionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM questions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("questionRepo.Delete: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("questionRepo.Delete rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *questionRepo) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM questions"); err != nil {
		return 0, fmt.Errorf("questionRepo.Count: %w", err)
	}
	return total, nil
}
