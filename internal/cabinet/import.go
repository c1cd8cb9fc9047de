package cabinet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/Laksmack/kenaz-sub003/internal/vault"
)

// Importer copies outside files into the cabinet directory and feeds the
// extraction queue.
type Importer struct {
	resolver *vault.Resolver
	queue    *Queue
	dirName  string
	logger   *slog.Logger
}

// NewImporter creates an importer for the named cabinet directory under the
// vault root.
func NewImporter(resolver *vault.Resolver, queue *Queue, dirName string, logger *slog.Logger) *Importer {
	if dirName == "" {
		dirName = "cabinet"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		resolver: resolver,
		queue:    queue,
		dirName:  dirName,
		logger:   logger.With("component", "importer"),
	}
}

// Dir returns the absolute cabinet directory.
func (im *Importer) Dir() string {
	return filepath.Join(im.resolver.Root(), im.dirName)
}

// ImportFiles copies external files into the cabinet concurrently, then
// enqueues each copy for extraction. Unsupported types are rejected before
// any copy happens.
func (im *Importer) ImportFiles(ctx context.Context, srcPaths []string) ([]string, error) {
	for _, src := range srcPaths {
		if _, err := Classify(src); err != nil {
			return nil, fmt.Errorf("%s: %w", src, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	rels := make([]string, len(srcPaths))
	for i, src := range srcPaths {
		g.Go(func() error {
			dst := filepath.Join(im.Dir(), filepath.Base(src))
			if err := copyFile(gctx, src, dst); err != nil {
				return fmt.Errorf("import %s: %w", src, err)
			}
			rels[i] = im.resolver.Rel(dst)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, rel := range rels {
		if err := im.queue.Enqueue(ctx, rel); err != nil {
			return rels, err
		}
	}
	return rels, nil
}

// Sweep walks the cabinet directory and enqueues every supported file.
// Unsupported files are skipped with a debug log, not an error.
func (im *Importer) Sweep(ctx context.Context) (int, error) {
	dir := im.Dir()
	queued := 0

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == dir {
				return nil // no cabinet yet, nothing to ingest
			}
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel := im.resolver.Rel(path)
		if err := im.queue.Enqueue(ctx, rel); err != nil {
			if errors.Is(err, ErrUnsupportedType) {
				im.logger.Debug("skipping unsupported file", "path", rel)
				return nil
			}
			return err
		}
		queued++
		return nil
	})
	return queued, err
}

func copyFile(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := vault.MkdirFor(dst); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
