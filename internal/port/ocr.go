package port

import "context"

// PageImage is an embedded image extracted by the OCR service from a scanned
// page. Data may be raw image bytes or base64 text; consumers normalize it.
type PageImage struct {
	Filename string `json:"filename"`
	Data     []byte `json:"data"`
}

// OCRResult is the output of recognizing one scanned page.
type OCRResult struct {
	RequestID string      `json:"request_id"`
	Markdown  string      `json:"markdown"`
	Images    []PageImage `json:"images"`
}

// OCRClient abstracts the external OCR recognition service.
type OCRClient interface {
	Recognize(ctx context.Context, filename string, image []byte) (*OCRResult, error)
}
