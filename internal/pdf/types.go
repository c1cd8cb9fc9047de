// Package pdf implements the document service over PDF files in the vault:
// metadata, reading-order text extraction, annotation, field fill, signature
// placement, flattening and sidecar notes.
package pdf

import (
	"errors"
	"time"
)

// Info is the read-only document metadata surface. It is recomputed on every
// request; the file can be mutated between calls, so nothing here is cached.
type Info struct {
	Path         string    `json:"path"`
	Pages        int       `json:"pages"`
	Title        string    `json:"title,omitempty"`
	Author       string    `json:"author,omitempty"`
	Subject      string    `json:"subject,omitempty"`
	Creator      string    `json:"creator,omitempty"`
	CreationDate time.Time `json:"creation_date,omitempty"`
	ModDate      time.Time `json:"mod_date,omitempty"`
}

// Rect is a rectangle in PDF user-space units, origin bottom-left.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// AnnotationKind is the closed set of annotation variants. Adding a kind is a
// compile-time-checked change at every switch that handles it.
type AnnotationKind int

const (
	AnnotationHighlight AnnotationKind = iota
	AnnotationUnderline
	AnnotationTextNote
	AnnotationTextBox
	AnnotationSignature
)

// String returns the wire name of the annotation kind.
func (k AnnotationKind) String() string {
	switch k {
	case AnnotationHighlight:
		return "highlight"
	case AnnotationUnderline:
		return "underline"
	case AnnotationTextNote:
		return "text-note"
	case AnnotationTextBox:
		return "text-box"
	case AnnotationSignature:
		return "signature"
	}
	return "unknown"
}

// AuthorTag identifies who placed an annotation.
type AuthorTag string

const (
	AuthorUser   AuthorTag = "user"
	AuthorClaude AuthorTag = "claude"
)

// Annotation describes one annotation to apply to a page. It is applied
// destructively to the PDF on disk; the file itself is the source of truth
// afterwards.
type Annotation struct {
	ID     string         `json:"id"`
	Kind   AnnotationKind `json:"kind"`
	Page   int            `json:"page"` // 0-based
	Rect   Rect           `json:"rect"`
	Text   string         `json:"text,omitempty"`
	Color  string         `json:"color,omitempty"` // 6 hex digits, optional leading #
	Author AuthorTag      `json:"author,omitempty"`
}

// PageRange is a 1-based inclusive extraction window, clamped to the
// document's bounds.
type PageRange struct {
	Start int
	End   int
}

// Errors raised before any file write occurs.
var (
	ErrPageOutOfRange = errors.New("page index out of range")
	ErrRectOutOfPage  = errors.New("rectangle exceeds page bounds")
)
