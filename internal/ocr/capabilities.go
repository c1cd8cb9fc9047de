package ocr

import (
	"log/slog"
	"os/exec"
)

// Capabilities records which optional extraction paths the host supports.
// Detected once at startup and threaded into the ingestion pipeline, so a
// missing tool degrades individual documents instead of crashing the worker.
type Capabilities struct {
	OCR  bool
	DOCX bool
}

// Detect probes the host for optional tools, logging one warning per missing
// capability. DOCX conversion is built in and always available.
func Detect(logger *slog.Logger) Capabilities {
	if logger == nil {
		logger = slog.Default()
	}

	caps := Capabilities{DOCX: true}
	if _, err := exec.LookPath(tesseractBinary); err == nil {
		caps.OCR = true
	} else {
		logger.Warn("tesseract not found, OCR extraction disabled", "binary", tesseractBinary)
	}
	return caps
}
