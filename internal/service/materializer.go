package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"tiku/internal/config"
	"tiku/internal/port"
)

// materializeConcurrency bounds parallel object writes per request.
const materializeConcurrency = 4

// Materializer persists the image blobs an OCR response carries and maps
// each original filename to a stable, externally addressable path. Object
// names carry a random UUID so concurrent requests never collide.
type Materializer struct {
	storage port.ObjectStorage
	cfg     *config.S3Config
}

// NewMaterializer creates a Materializer writing through the given storage.
func NewMaterializer(storage port.ObjectStorage, cfg *config.S3Config) *Materializer {
	return &Materializer{storage: storage, cfg: cfg}
}

// Materialize stores every decodable blob and returns the filename mapping.
// Blobs that cannot be decoded are skipped and logged; they never abort the
// rest of the batch. Writes run in parallel because destination names are
// collision-free.
func (m *Materializer) Materialize(ctx context.Context, requestID string, images []port.PageImage) map[string]string {
	mapping := make(map[string]string, len(images))
	if len(images) == 0 {
		return mapping
	}
	if requestID == "" {
		requestID = uuid.New().String()
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, materializeConcurrency)
	)

	for _, img := range images {
		wg.Add(1)
		sem <- struct{}{}
		go func(img port.PageImage) {
			defer wg.Done()
			defer func() { <-sem }()

			payload, contentType, err := decodeBlob(img.Data)
			if err != nil {
				log.Printf("service.Materializer: skipping blob %q: %v", img.Filename, err)
				return
			}

			key := fmt.Sprintf("papers/%s/%s%s", requestID, uuid.New().String(), extensionFor(contentType))
			_, err = m.storage.Upload(ctx, port.UploadInput{
				Bucket:      m.cfg.Bucket,
				Key:         key,
				Body:        bytes.NewReader(payload),
				ContentType: contentType,
				Size:        int64(len(payload)),
			})
			if err != nil {
				log.Printf("service.Materializer: storing blob %q failed: %v", img.Filename, err)
				return
			}

			mu.Lock()
			mapping[img.Filename] = m.stablePath(key)
			mu.Unlock()
		}(img)
	}
	wg.Wait()

	return mapping
}

// stablePath returns the externally addressable path for an object key.
func (m *Materializer) stablePath(key string) string {
	if m.cfg.PublicBaseURL != "" {
		return m.cfg.PublicBaseURL + "/" + key
	}
	return "/" + key
}

// decodeBlob normalizes a blob payload to raw bytes. The OCR service sends
// image data base64-encoded inside JSON, but raw bytes are accepted too.
func decodeBlob(data []byte) ([]byte, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty payload")
	}

	payload := data
	if decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data))); err == nil && len(decoded) > 0 {
		payload = decoded
	}

	contentType := http.DetectContentType(payload)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", fmt.Errorf("payload is not an image (detected %s)", contentType)
	}
	return payload, contentType, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/bmp":
		return ".bmp"
	default:
		return ".img"
	}
}
