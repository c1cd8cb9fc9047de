package pdf

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/Laksmack/kenaz-sub003/internal/vault"
)

// Service exposes the document operations over PDFs in the vault. Reads are
// concurrent; mutations serialize through a single writer lock because every
// mutation is a read-modify-replace of the whole file.
type Service struct {
	resolver *vault.Resolver
	logger   *slog.Logger

	mu sync.Mutex // guards all file mutations
}

// NewService creates a document service rooted at the resolver's vault.
func NewService(resolver *vault.Resolver, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		resolver: resolver,
		logger:   logger.With("component", "pdf"),
	}
}

// GetInfo reads document metadata. Always a fresh read; the file can be
// mutated between calls so nothing is cached.
func (s *Service) GetInfo(path string) (*Info, error) {
	abs, err := s.resolver.Ensure(path)
	if err != nil {
		return nil, err
	}
	info, err := readInfo(abs)
	if err != nil {
		return nil, err
	}
	info.Path = s.resolver.Rel(abs)
	return info, nil
}

// ExtractText returns the reconstructed text of the requested pages, one
// banner-headed block per page.
func (s *Service) ExtractText(path string, pr *PageRange) (string, error) {
	abs, err := s.resolver.Ensure(path)
	if err != nil {
		return "", err
	}
	return extractText(abs, pr)
}

// AddAnnotation applies one annotation to the document and returns its ID.
// The page and rectangle are validated before any write; a failed check
// leaves the file untouched.
func (s *Service) AddAnnotation(path string, ann Annotation) (string, error) {
	abs, err := s.resolver.Ensure(path)
	if err != nil {
		return "", err
	}
	if ann.ID == "" {
		ann.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, err := readMutableContext(abs)
	if err != nil {
		return "", err
	}
	if err := checkPageRect(ctx, ann.Page, ann.Rect); err != nil {
		return "", err
	}

	var content []byte
	switch ann.Kind {
	case AnnotationHighlight:
		gs, err := installExtGState(ctx, ann.Page, 0.3)
		if err != nil {
			return "", err
		}
		content = opHighlight(ann.Rect, parseHexColor(ann.Color, colorYellow), gs)

	case AnnotationUnderline:
		gs, err := installExtGState(ctx, ann.Page, 0.8)
		if err != nil {
			return "", err
		}
		content = opUnderline(ann.Rect, parseHexColor(ann.Color, colorRed), gs)

	case AnnotationTextNote, AnnotationTextBox:
		font, err := installHelvetica(ctx, ann.Page)
		if err != nil {
			return "", err
		}
		c := parseHexColor(ann.Color, colorBlack)
		content = opText(ann.Rect, ann.Text, noteFontSize(ann.Rect), c, font)
		if ann.Kind == AnnotationTextBox {
			content = append(opBorder(ann.Rect, c), content...)
		}

	case AnnotationSignature:
		return "", fmt.Errorf("signature annotations are placed via PlaceSignature")

	default:
		return "", fmt.Errorf("unknown annotation kind %d", ann.Kind)
	}

	if err := appendPageContent(ctx, ann.Page, content); err != nil {
		return "", err
	}
	if err := writeContextAtomic(ctx, abs); err != nil {
		return "", err
	}

	s.logger.Info("annotation added",
		"path", s.resolver.Rel(abs), "kind", ann.Kind.String(), "page", ann.Page, "id", ann.ID)
	return ann.ID, nil
}

// PlaceSignature stamps a base64-encoded PNG into the rectangle on the given
// 0-based page, scaled to the rectangle width.
func (s *Service) PlaceSignature(path string, page int, rect Rect, pngBase64 string) error {
	abs, err := s.resolver.Ensure(path)
	if err != nil {
		return err
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(pngBase64))
	if err != nil {
		return fmt.Errorf("failed to decode signature PNG: %w", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid signature PNG: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, err := readMutableContext(abs)
	if err != nil {
		return err
	}
	if err := checkPageRect(ctx, page, rect); err != nil {
		return err
	}

	// PNG pixels map 1:1 to points before scaling; clamp to pdfcpu's valid
	// scale range.
	scale := rect.Width / float64(cfg.Width)
	if scale > 1 {
		scale = 1
	}
	desc := fmt.Sprintf("pos:bl, off:%.1f %.1f, scale:%.4f abs, rot:0", rect.X, rect.Y, scale)

	wm, err := api.ImageWatermarkForReader(bytes.NewReader(data), desc, true, false, types.POINTS)
	if err != nil {
		return fmt.Errorf("failed to build signature stamp: %w", err)
	}

	tmp := filepath.Join(filepath.Dir(abs), "."+filepath.Base(abs)+".tmp")
	pages := []string{strconv.Itoa(page + 1)}
	if err := api.AddWatermarksFile(abs, tmp, pages, wm, pdfConfig()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to place signature: %w", err)
	}
	if err := os.Rename(tmp, abs); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace PDF: %w", err)
	}

	s.logger.Info("signature placed", "path", s.resolver.Rel(abs), "page", page)
	return nil
}

// FillField draws the value as left-aligned text vertically centered in the
// field rectangle on the given 0-based page.
func (s *Service) FillField(path string, page int, fieldRect Rect, value string) error {
	abs, err := s.resolver.Ensure(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, err := readMutableContext(abs)
	if err != nil {
		return err
	}
	if err := checkPageRect(ctx, page, fieldRect); err != nil {
		return err
	}

	font, err := installHelvetica(ctx, page)
	if err != nil {
		return err
	}
	content := opText(fieldRect, value, fieldFontSize(fieldRect), colorBlack, font)

	if err := appendPageContent(ctx, page, content); err != nil {
		return err
	}
	if err := writeContextAtomic(ctx, abs); err != nil {
		return err
	}

	s.logger.Info("field filled", "path", s.resolver.Rel(abs), "page", page)
	return nil
}

// Flatten re-serializes the document so every drawn mark is baked into the
// page content. Defaults the output to "<name> (signed).pdf" beside the
// source and returns the vault-relative output path.
func (s *Service) Flatten(path, outputPath string) (string, error) {
	abs, err := s.resolver.Ensure(path)
	if err != nil {
		return "", err
	}

	var outAbs string
	if outputPath == "" {
		base := strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
		outAbs = filepath.Join(filepath.Dir(abs), base+" (signed).pdf")
	} else {
		outAbs, err = s.resolver.Ensure(outputPath)
		if err != nil {
			return "", err
		}
	}
	if err := vault.MkdirFor(outAbs); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := filepath.Join(filepath.Dir(outAbs), "."+filepath.Base(outAbs)+".tmp")
	if err := api.OptimizeFile(abs, tmp, pdfConfig()); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to flatten PDF: %w", err)
	}
	if err := os.Rename(tmp, outAbs); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to write flattened PDF: %w", err)
	}

	rel := s.resolver.Rel(outAbs)
	s.logger.Info("document flattened", "path", s.resolver.Rel(abs), "output", rel)
	return rel, nil
}

// opBorder strokes a thin black-ish frame for text-box annotations.
func opBorder(rect Rect, c rgb) []byte {
	var b strings.Builder
	b.WriteString("q\n")
	fmt.Fprintf(&b, "%.4f %.4f %.4f RG\n", c.r, c.g, c.b)
	b.WriteString("0.75 w\n")
	fmt.Fprintf(&b, "%.2f %.2f %.2f %.2f re\nS\n", rect.X, rect.Y, rect.Width, rect.Height)
	b.WriteString("Q\n")
	return []byte(b.String())
}
