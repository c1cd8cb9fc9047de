package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Laksmack/kenaz-sub003/internal/vault"
)

// sidecarPath maps document.pdf to document.md beside it.
func sidecarPath(absPDF string) string {
	ext := filepath.Ext(absPDF)
	if strings.EqualFold(ext, ".pdf") {
		return strings.TrimSuffix(absPDF, ext) + ".md"
	}
	return absPDF + ".md"
}

// ReadSidecar returns the freeform markdown notes co-located with the PDF.
// A missing sidecar is not an error; found reports whether one exists.
func (s *Service) ReadSidecar(path string) (content string, found bool, err error) {
	abs, err := s.resolver.Ensure(path)
	if err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(sidecarPath(abs))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read sidecar: %w", err)
	}
	return string(data), true, nil
}

// WriteSidecar replaces the sidecar notes, creating intermediate directories
// as needed.
func (s *Service) WriteSidecar(path, content string) error {
	abs, err := s.resolver.Ensure(path)
	if err != nil {
		return err
	}

	side := sidecarPath(abs)
	if err := vault.MkdirFor(side); err != nil {
		return fmt.Errorf("failed to create sidecar directory: %w", err)
	}
	if err := os.WriteFile(side, []byte(content), 0o640); err != nil {
		return fmt.Errorf("failed to write sidecar: %w", err)
	}
	s.logger.Debug("sidecar written", "path", s.resolver.Rel(side))
	return nil
}
