// Package ocr wraps the external OCR tool behind a small engine interface
// and detects at startup which optional capabilities the host provides.
package ocr

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when no OCR tool is installed on the host.
var ErrUnavailable = errors.New("ocr engine unavailable")

// Engine recognizes text in images. Implementations are opaque external
// tools; failures surface as errors caught per page or per document.
type Engine interface {
	// RecognizeImage runs OCR over encoded image bytes (PNG).
	RecognizeImage(ctx context.Context, img []byte, lang string) (string, error)

	// RecognizeFile runs OCR over an image file on disk.
	RecognizeFile(ctx context.Context, path, lang string) (string, error)
}
