// Package cabinet ingests heterogeneous documents dropped into the vault's
// cabinet directory: classify by type, extract text (falling back to OCR),
// and persist results through the index store.
package cabinet

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Kind is the closed set of ingestible document types.
type Kind int

const (
	KindPDF Kind = iota
	KindImage
	KindDocx
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindPDF:
		return "pdf"
	case KindImage:
		return "image"
	case KindDocx:
		return "docx"
	case KindText:
		return "text"
	}
	return "unknown"
}

// ErrUnsupportedType rejects a file before it ever reaches the queue.
var ErrUnsupportedType = errors.New("unsupported document type")

var imageExts = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "tiff": true, "tif": true,
}

var docxExts = map[string]bool{
	"docx": true, "doc": true,
}

// Extensions read directly as plain text.
var textExts = map[string]bool{
	"txt": true, "md": true, "markdown": true, "csv": true, "tsv": true,
	"json": true, "yaml": true, "yml": true, "xml": true, "html": true,
	"htm": true, "log": true,
}

// Classify decides the extraction strategy from the lowercase file
// extension. Anything outside the allowlist is rejected.
func Classify(path string) (Kind, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch {
	case ext == "pdf":
		return KindPDF, nil
	case imageExts[ext]:
		return KindImage, nil
	case docxExts[ext]:
		return KindDocx, nil
	case textExts[ext]:
		return KindText, nil
	}
	return 0, fmt.Errorf("%w: .%s", ErrUnsupportedType, ext)
}
