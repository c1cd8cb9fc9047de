package cabinet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/Laksmack/kenaz-sub003/internal/docx"
	"github.com/Laksmack/kenaz-sub003/internal/ocr"
	"github.com/Laksmack/kenaz-sub003/internal/pdf"
	"github.com/Laksmack/kenaz-sub003/internal/vault"
)

const (
	// Direct PDF extraction shorter than this suggests a scanned document
	// and triggers the OCR fallback.
	minSignalChars = 50

	// OCR fallback renders at most this many pages.
	ocrPageLimit = 20

	// DOCX and plain-text results are truncated to bound index size.
	charCap = 100000
)

// DocumentReader is the PDF read surface the extractor needs.
type DocumentReader interface {
	ExtractText(path string, pr *pdf.PageRange) (string, error)
	GetInfo(path string) (*pdf.Info, error)
}

// PageRenderer rasterizes PDF pages for the OCR fallback.
type PageRenderer interface {
	PageCount(path string) (int, error)
	RenderPNG(path string, page int) ([]byte, error)
}

// DocxConverter converts Word documents to text.
type DocxConverter interface {
	ConvertFile(path string) (*docx.Result, error)
}

// DefaultDocxConverter adapts the docx package to the converter interface.
type DefaultDocxConverter struct{}

func (DefaultDocxConverter) ConvertFile(path string) (*docx.Result, error) {
	return docx.ConvertFile(path)
}

// ErrFileTooLarge fails documents over the configured size limit before any
// extraction work starts.
var ErrFileTooLarge = errors.New("file exceeds maximum size")

// Extractor turns one cabinet document into text using the strategy for its
// type. Missing capabilities fail the document, never the process.
type Extractor struct {
	resolver    *vault.Resolver
	reader      DocumentReader
	renderer    PageRenderer
	engine      ocr.Engine
	docx        DocxConverter
	caps        ocr.Capabilities
	lang        string
	maxFileSize int64
	logger      *slog.Logger
}

// NewExtractor wires the per-type extraction strategies. engine and renderer
// may be nil when caps.OCR is false. maxFileSize of 0 means unlimited.
func NewExtractor(resolver *vault.Resolver, reader DocumentReader, renderer PageRenderer,
	engine ocr.Engine, conv DocxConverter, caps ocr.Capabilities, lang string,
	maxFileSize int64, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		resolver:    resolver,
		reader:      reader,
		renderer:    renderer,
		engine:      engine,
		docx:        conv,
		caps:        caps,
		lang:        lang,
		maxFileSize: maxFileSize,
		logger:      logger.With("component", "extractor"),
	}
}

// Extract runs the per-type strategy for one vault-relative path and returns
// the text plus a page count when one is known (0 otherwise).
func (e *Extractor) Extract(ctx context.Context, relPath string) (string, int, error) {
	kind, err := Classify(relPath)
	if err != nil {
		return "", 0, err
	}
	abs, err := e.resolver.Ensure(relPath)
	if err != nil {
		return "", 0, err
	}
	if e.maxFileSize > 0 {
		fi, err := os.Stat(abs)
		if err != nil {
			return "", 0, fmt.Errorf("failed to stat document: %w", err)
		}
		if fi.Size() > e.maxFileSize {
			return "", 0, fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, fi.Size(), e.maxFileSize)
		}
	}

	switch kind {
	case KindPDF:
		return e.extractPDF(ctx, relPath, abs)
	case KindImage:
		return e.extractImage(ctx, abs)
	case KindDocx:
		return e.extractDocx(abs)
	case KindText:
		return e.extractPlainText(abs)
	}
	return "", 0, fmt.Errorf("%w: %s", ErrUnsupportedType, relPath)
}

// Synthetic lines the extraction layer adds around page content. They carry
// no document signal and must not count toward the fallback decision.
var (
	bannerLineRe = regexp.MustCompile(`(?m)^--- Page \d+(?: \([^)]*\))? ---$`)
	noTextLineRe = regexp.MustCompile(`(?m)^\[No extractable text\]$`)
	pageNoteRe   = regexp.MustCompile(`(?m)^\[Showing pages \d+-\d+ of \d+ total pages\]$`)
)

// signalText strips page banners, no-text markers and range notes, leaving
// only characters that came out of the document itself. A fully scanned PDF
// reduces to the empty string here no matter how many pages it has.
func signalText(extracted string) string {
	s := bannerLineRe.ReplaceAllString(extracted, "")
	s = noTextLineRe.ReplaceAllString(s, "")
	s = pageNoteRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// extractPDF tries direct extraction first; low-signal results fall back to
// per-page OCR, and the longer of the two texts wins.
func (e *Extractor) extractPDF(ctx context.Context, relPath, abs string) (string, int, error) {
	direct, directErr := e.reader.ExtractText(relPath, nil)
	if directErr != nil {
		e.logger.Warn("direct extraction failed, considering OCR", "path", relPath, "error", directErr)
		direct = ""
	}

	pageCount := 0
	if info, err := e.reader.GetInfo(relPath); err == nil {
		pageCount = info.Pages
	}

	signal := signalText(direct)
	if len(signal) >= minSignalChars {
		return direct, pageCount, nil
	}

	if !e.caps.OCR {
		if directErr != nil {
			return "", 0, fmt.Errorf("direct extraction failed and %w", ocr.ErrUnavailable)
		}
		return direct, pageCount, nil
	}

	ocrText, ocrChars, ocrPages, err := e.ocrPDF(ctx, abs)
	if err != nil {
		e.logger.Warn("OCR fallback failed", "path", relPath, "error", err)
		if directErr != nil {
			return "", 0, fmt.Errorf("both direct extraction and OCR failed: %w", err)
		}
		return direct, pageCount, nil
	}

	// Longer wins, comparing recognized characters against the direct
	// signal with the banners stripped from both sides. A shorter OCR
	// result means the direct text, thin as it is, carries more signal.
	if ocrChars > len(signal) {
		if pageCount == 0 {
			pageCount = ocrPages
		}
		return ocrText, pageCount, nil
	}
	return direct, pageCount, nil
}

// ocrPDF renders up to the page limit and concatenates per-page OCR output
// under dimension-less page banners. chars counts recognized text only.
func (e *Extractor) ocrPDF(ctx context.Context, abs string) (out string, chars, totalPages int, err error) {
	total, err := e.renderer.PageCount(abs)
	if err != nil {
		return "", 0, 0, err
	}
	pages := total
	if pages > ocrPageLimit {
		pages = ocrPageLimit
	}

	var blocks []string
	for p := 0; p < pages; p++ {
		if err := ctx.Err(); err != nil {
			return "", 0, 0, err
		}

		img, err := e.renderer.RenderPNG(abs, p)
		if err != nil {
			e.logger.Warn("page render failed", "page", p, "error", err)
			continue
		}
		text, err := e.engine.RecognizeImage(ctx, img, e.lang)
		if err != nil {
			e.logger.Warn("page OCR failed", "page", p, "error", err)
			continue
		}
		chars += len(text)
		blocks = append(blocks, fmt.Sprintf("--- Page %d ---\n%s", p+1, text))
	}

	return strings.Join(blocks, "\n\n"), chars, total, nil
}

func (e *Extractor) extractImage(ctx context.Context, abs string) (string, int, error) {
	if !e.caps.OCR {
		return "", 0, ocr.ErrUnavailable
	}
	text, err := e.engine.RecognizeFile(ctx, abs, e.lang)
	if err != nil {
		return "", 0, fmt.Errorf("image OCR failed: %w", err)
	}
	return text, 0, nil
}

func (e *Extractor) extractDocx(abs string) (string, int, error) {
	res, err := e.docx.ConvertFile(abs)
	if err != nil {
		return "", 0, fmt.Errorf("docx conversion failed: %w", err)
	}
	for _, w := range res.Warnings {
		e.logger.Warn("docx conversion warning", "path", abs, "warning", w)
	}
	return truncate(res.Text), 0, nil
}

func (e *Extractor) extractPlainText(abs string) (string, int, error) {
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read text file: %w", err)
	}
	return truncate(string(data)), 0, nil
}

func truncate(s string) string {
	if len(s) <= charCap {
		return s
	}
	return s[:charCap]
}
