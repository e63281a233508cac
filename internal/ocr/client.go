package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"tiku/internal/config"
	"tiku/internal/port"
)

// Client implements port.OCRClient against the scanned-paper recognition
// service, which returns a markdown transcript plus named image blobs.
type Client struct {
	endpoint string
	client   *http.Client
}

// NewClient creates an OCR client from config.
func NewClient(cfg *config.OCRConfig) *Client {
	return NewClientWithEndpoint(cfg, cfg.BaseURL+"/ocr")
}

// NewClientWithEndpoint creates a client pointing at a custom endpoint (for testing).
func NewClientWithEndpoint(cfg *config.OCRConfig, endpoint string) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// wireResult mirrors the OCR service response. Image data arrives as base64
// text; decoding to raw bytes is deferred to the materializer, which also
// accepts raw payloads.
type wireResult struct {
	RequestID string `json:"request_id"`
	Markdown  string `json:"markdown"`
	Images    []struct {
		Filename string `json:"filename"`
		Data     string `json:"data"`
	} `json:"images"`
	Error string `json:"error"`
}

func (c *Client) Recognize(ctx context.Context, filename string, image []byte) (*port.OCRResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		return nil, fmt.Errorf("unsupported image extension %q: only png/jpg are accepted", ext)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("creating multipart field: %w", err)
	}
	if _, err := fw.Write(image); err != nil {
		return nil, fmt.Errorf("writing multipart payload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling OCR service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading OCR response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OCR service error (status %d): %s", resp.StatusCode, truncate(string(respBody), 500))
	}

	var wire wireResult
	if err := json.Unmarshal(respBody, &wire); err != nil {
		return nil, fmt.Errorf("unmarshaling OCR response: %w", err)
	}
	if wire.Error != "" {
		return nil, fmt.Errorf("OCR service reported failure: %s", wire.Error)
	}

	result := &port.OCRResult{
		RequestID: wire.RequestID,
		Markdown:  wire.Markdown,
	}
	for _, img := range wire.Images {
		result.Images = append(result.Images, port.PageImage{
			Filename: img.Filename,
			Data:     []byte(img.Data),
		})
	}
	return result, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
