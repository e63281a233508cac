package domain

// ImageType represents the allowed image types for paper upload.
type ImageType string

const (
	ImageTypeJPG ImageType = "jpg"
	ImageTypePNG ImageType = "png"
)

// AllowedImageContentTypes maps MIME content types back to ImageType.
var AllowedImageContentTypes = map[string]ImageType{
	"image/jpeg": ImageTypeJPG,
	"image/png":  ImageTypePNG,
}

// AllowedImageExtensions maps file extensions (without dot) to ImageType.
var AllowedImageExtensions = map[string]ImageType{
	"jpg":  ImageTypeJPG,
	"jpeg": ImageTypeJPG,
	"png":  ImageTypePNG,
}

// ExportFormat is the text rendering dialect for question exports.
type ExportFormat string

const (
	ExportFormatLatex    ExportFormat = "latex"
	ExportFormatMarkdown ExportFormat = "markdown"
)

// ExportMode controls whether reference answers are included in an export.
type ExportMode string

const (
	ExportModeQuestions   ExportMode = "questions"
	ExportModeWithAnswers ExportMode = "with_answers"
)

// Limits on user-supplied content, carried over from the original system.
const (
	MaxQuestionLength = 10000
	MaxAnswerLength   = 5000
)
