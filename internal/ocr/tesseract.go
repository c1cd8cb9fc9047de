package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const tesseractBinary = "tesseract"

// Tesseract shells out to the tesseract binary. Construct via NewTesseract
// only after Detect reports the binary present.
type Tesseract struct {
	binary string
}

// NewTesseract returns an engine bound to the tesseract binary on PATH.
func NewTesseract() *Tesseract {
	return &Tesseract{binary: tesseractBinary}
}

func (t *Tesseract) RecognizeImage(ctx context.Context, img []byte, lang string) (string, error) {
	return t.run(ctx, bytes.NewReader(img), "stdin", lang)
}

func (t *Tesseract) RecognizeFile(ctx context.Context, path, lang string) (string, error) {
	return t.run(ctx, nil, path, lang)
}

func (t *Tesseract) run(ctx context.Context, stdin *bytes.Reader, input, lang string) (string, error) {
	args := []string{input, "stdout"}
	if lang != "" {
		args = append(args, "-l", lang)
	}

	cmd := exec.CommandContext(ctx, t.binary, args...)
	if stdin != nil {
		cmd.Stdin = stdin
	}

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("tesseract failed: %s: %w", msg, err)
		}
		return "", fmt.Errorf("tesseract failed: %w", err)
	}
	return strings.TrimSpace(out.String()), nil
}
