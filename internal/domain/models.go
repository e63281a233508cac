package domain

import (
	"time"

	"github.com/google/uuid"
)

// Question is a stored exam question with its LaTeX body, topic tags,
// reference answer, and materialized image paths.
type Question struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	LatexContent    string     `db:"latex_content" json:"latex_content"`
	Tags            StringList `db:"tags" json:"tags"`
	ReferenceAnswer string     `db:"reference_answer" json:"reference_answer"`
	Source          string     `db:"source" json:"source"`
	Images          StringList `db:"images" json:"images"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// ParsedQuestion is one question extracted from an OCR transcript by the
// segmentation engine. It has not been persisted yet.
type ParsedQuestion struct {
	Question string   `json:"question"`
	Images   []string `json:"image"`
	Tags     []string `json:"tags"`
	Answer   string   `json:"answer"`
}

// Tag is an entry of the controlled topic vocabulary with its usage count.
type Tag struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	UsageCount int       `db:"usage_count" json:"usage_count"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ExportRecord is one entry of the export history.
type ExportRecord struct {
	ID          uuid.UUID    `db:"id" json:"id"`
	Title       string       `db:"title" json:"title"`
	QuestionIDs UUIDList     `db:"question_ids" json:"question_ids"`
	Format      ExportFormat `db:"format" json:"format"`
	Mode        ExportMode   `db:"mode" json:"mode"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
}
