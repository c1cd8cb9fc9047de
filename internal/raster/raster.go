// Package raster renders PDF pages to PNG images for the OCR fallback path.
package raster

import (
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// Renderer rasterizes PDF pages. The zero scale renders at 72 dpi; the
// ingestion pipeline uses 2x for OCR accuracy.
type Renderer struct {
	scale float64
}

// NewRenderer creates a renderer with the given scale factor.
func NewRenderer(scale float64) *Renderer {
	if scale <= 0 {
		scale = 1
	}
	return &Renderer{scale: scale}
}

// PageCount returns the number of pages in the document.
func (r *Renderer) PageCount(path string) (int, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open document for rendering: %w", err)
	}
	defer doc.Close()
	return doc.NumPage(), nil
}

// RenderPNG renders one 0-based page to PNG bytes at the configured scale.
func (r *Renderer) RenderPNG(path string, page int) ([]byte, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document for rendering: %w", err)
	}
	defer doc.Close()

	if page < 0 || page >= doc.NumPage() {
		return nil, fmt.Errorf("render page %d out of range (%d pages)", page, doc.NumPage())
	}

	img, err := doc.ImagePNG(page, 72*r.scale)
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", page, err)
	}
	return img, nil
}
