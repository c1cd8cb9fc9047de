// Package index persists per-document extraction results and OCR status for
// the ingestion pipeline.
package index

import (
	"context"
	"errors"
	"time"
)

// OCRStatus is the closed extraction lifecycle of a cabinet document.
type OCRStatus string

const (
	StatusPending    OCRStatus = "pending"
	StatusProcessing OCRStatus = "processing"
	StatusDone       OCRStatus = "done"
	StatusFailed     OCRStatus = "failed"
)

// Document is one indexed cabinet entry, keyed by vault-relative path.
type Document struct {
	Path      string
	Status    OCRStatus
	Text      string
	PageCount int
	Error     string
	UpdatedAt time.Time
}

// ErrNotFound is returned when a document path has never been indexed.
var ErrNotFound = errors.New("document not indexed")

// Store persists extraction state. The queue's single-consumer discipline
// guarantees at most one writer per document; last writer wins beyond that.
type Store interface {
	// Upsert registers a document as pending, clearing any previous text.
	Upsert(ctx context.Context, path string) error

	// SetProcessing marks extraction as started.
	SetProcessing(ctx context.Context, path string) error

	// SetDone records the extracted text and optional page count.
	SetDone(ctx context.Context, path, text string, pageCount int) error

	// SetFailed records a terminal failure; the text stays empty.
	SetFailed(ctx context.Context, path string, cause error) error

	// Get returns the indexed state of one document.
	Get(ctx context.Context, path string) (*Document, error)

	// ListPending enumerates documents still awaiting extraction, for the
	// reprocess sweep. Failed documents are deliberately excluded.
	ListPending(ctx context.Context) ([]string, error)

	Close() error
}
