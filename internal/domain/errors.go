package domain

import "errors"

var (
	ErrNotFound             = errors.New("resource not found")
	ErrEmptyQuestionBody    = errors.New("question body must not be empty")
	ErrQuestionTooLong      = errors.New("question body exceeds maximum length")
	ErrAnswerTooLong        = errors.New("reference answer exceeds maximum length")
	ErrUnsupportedImageType = errors.New("unsupported image type")
	ErrImageTooLarge        = errors.New("image exceeds maximum allowed size")
	ErrInvalidExportFormat  = errors.New("invalid export format")
	ErrInvalidExportMode    = errors.New("invalid export mode")
	ErrExportTooLarge       = errors.New("export exceeds maximum question count")
	ErrExportEmpty          = errors.New("export contains no questions")
)
