// kenaz-doccore ingests the vault's document cabinet: classify, extract,
// OCR-fallback, and persist results to the index. It can also run one-shot
// document operations (info, text extraction, field detection) for scripting.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/Laksmack/kenaz-sub003/internal/cabinet"
	"github.com/Laksmack/kenaz-sub003/internal/config"
	"github.com/Laksmack/kenaz-sub003/internal/fields"
	"github.com/Laksmack/kenaz-sub003/internal/index"
	"github.com/Laksmack/kenaz-sub003/internal/ocr"
	"github.com/Laksmack/kenaz-sub003/internal/pdf"
	"github.com/Laksmack/kenaz-sub003/internal/raster"
	"github.com/Laksmack/kenaz-sub003/internal/vault"
)

var version = "dev" // set by build flags

func main() {
	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogging(cfg)
	logger.Info("kenaz-doccore starting", "version", version, "vault", cfg.VaultRoot)

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

// setupLogging builds the process logger at the configured level.
func setupLogging(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	resolver, err := vault.NewResolver(cfg.VaultRoot)
	if err != nil {
		return err
	}

	store, err := index.OpenSQLite(filepath.Join(resolver.Root(), ".kenaz", "index.db"))
	if err != nil {
		return err
	}
	defer store.Close()

	caps := ocr.Detect(logger)
	var engine ocr.Engine
	if caps.OCR {
		engine = ocr.NewTesseract()
	}

	docs := pdf.NewService(resolver, logger)
	extractor := cabinet.NewExtractor(resolver, docs, raster.NewRenderer(cfg.RenderScale),
		engine, cabinet.DefaultDocxConverter{}, caps, cfg.OCRLang, cfg.MaxFileSize, logger)
	queue := cabinet.NewQueue(store, extractor, cfg.QueueCapacity, logger)
	importer := cabinet.NewImporter(resolver, queue, cfg.CabinetDir, logger)

	args := pflag.Args()
	if len(args) == 0 {
		return runIngest(ctx, logger, queue, importer, false)
	}

	switch args[0] {
	case "ingest":
		return runIngest(ctx, logger, queue, importer, false)
	case "reprocess":
		return runIngest(ctx, logger, queue, importer, true)
	case "import":
		return runImport(ctx, logger, queue, importer, args[1:])
	case "info":
		return runInfo(docs, args[1:])
	case "extract":
		return runExtract(docs, args[1:])
	case "detect-fields":
		return runDetectFields(docs, args[1:])
	default:
		return fmt.Errorf("unknown command %q (expected ingest, reprocess, import, info, extract or detect-fields)", args[0])
	}
}

// runIngest sweeps the cabinet, optionally re-queues stranded pending
// documents, and drains the queue.
func runIngest(ctx context.Context, logger *slog.Logger, queue *cabinet.Queue,
	importer *cabinet.Importer, reprocess bool) error {
	queue.Start(ctx)

	swept, err := importer.Sweep(ctx)
	if err != nil {
		queue.Close()
		return fmt.Errorf("cabinet sweep failed: %w", err)
	}
	logger.Info("cabinet sweep complete", "queued", swept)

	if reprocess {
		n, err := queue.ReprocessPending(ctx)
		if err != nil {
			queue.Close()
			return fmt.Errorf("reprocess sweep failed: %w", err)
		}
		logger.Info("reprocess sweep complete", "requeued", n)
	}

	queue.Close()
	return ctx.Err()
}

// runImport copies outside files into the cabinet and extracts them.
func runImport(ctx context.Context, logger *slog.Logger, queue *cabinet.Queue,
	importer *cabinet.Importer, paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("import requires at least one file path")
	}

	queue.Start(ctx)
	rels, err := importer.ImportFiles(ctx, paths)
	if err != nil {
		queue.Close()
		return err
	}
	logger.Info("files imported", "count", len(rels))

	queue.Close()
	return ctx.Err()
}

func runInfo(docs *pdf.Service, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("info requires exactly one PDF path")
	}
	info, err := docs.GetInfo(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Path:    %s\n", info.Path)
	fmt.Printf("Pages:   %d\n", info.Pages)
	if info.Title != "" {
		fmt.Printf("Title:   %s\n", info.Title)
	}
	if info.Author != "" {
		fmt.Printf("Author:  %s\n", info.Author)
	}
	if !info.CreationDate.IsZero() {
		fmt.Printf("Created: %s\n", info.CreationDate.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runExtract(docs *pdf.Service, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("extract requires exactly one PDF path")
	}
	text, err := docs.ExtractText(args[0], nil)
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

func runDetectFields(docs *pdf.Service, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("detect-fields requires exactly one PDF path")
	}
	text, err := docs.ExtractText(args[0], nil)
	if err != nil {
		return err
	}

	detected := fields.Detect(text)
	if len(detected) == 0 {
		fmt.Println("no fillable fields detected")
		return nil
	}
	for _, f := range detected {
		fmt.Printf("#%d  page %d line %d  %-10s  %s\n", f.ID, f.Page+1, f.Line+1, f.Type, f.Label)
	}
	return nil
}
