package index

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    path        TEXT PRIMARY KEY,
    status      TEXT NOT NULL DEFAULT 'pending',
    text        TEXT,
    page_count  INTEGER,
    error       TEXT,
    updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
`

// SQLiteStore is the on-disk Store implementation, one database per vault.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the index database at path, applying the
// schema and the single-writer connection settings SQLite requires.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open index database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init index schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Upsert(ctx context.Context, path string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (path, status, text, page_count, error, updated_at)
		VALUES (?, 'pending', NULL, NULL, NULL, datetime('now'))
		ON CONFLICT(path) DO UPDATE SET
			status = 'pending', text = NULL, page_count = NULL,
			error = NULL, updated_at = datetime('now')`,
		path)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SetProcessing(ctx context.Context, path string) error {
	return s.setStatus(ctx, path, StatusProcessing, "")
}

func (s *SQLiteStore) SetDone(ctx context.Context, path, text string, pageCount int) error {
	var pages any
	if pageCount > 0 {
		pages = pageCount
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE documents
		SET status = 'done', text = ?, page_count = ?, error = NULL, updated_at = datetime('now')
		WHERE path = ?`,
		text, pages, path)
	if err != nil {
		return fmt.Errorf("mark document done: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SetFailed(ctx context.Context, path string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return s.setStatus(ctx, path, StatusFailed, msg)
}

func (s *SQLiteStore) setStatus(ctx context.Context, path string, status OCRStatus, errMsg string) error {
	var e any
	if errMsg != "" {
		e = errMsg
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE documents
		SET status = ?, error = ?, updated_at = datetime('now')
		WHERE path = ?`,
		string(status), e, path)
	if err != nil {
		return fmt.Errorf("set document status: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, path string) (*Document, error) {
	doc := &Document{}
	var status, updatedAt string
	var text, errMsg sql.NullString
	var pages sql.NullInt64

	err := s.db.QueryRowContext(ctx, `
		SELECT path, status, text, page_count, error, updated_at
		FROM documents WHERE path = ?`,
		path).Scan(&doc.Path, &status, &text, &pages, &errMsg, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}

	doc.Status = OCRStatus(status)
	doc.Text = text.String
	doc.PageCount = int(pages.Int64)
	doc.Error = errMsg.String
	if t, perr := time.Parse("2006-01-02 15:04:05", updatedAt); perr == nil {
		doc.UpdatedAt = t.UTC()
	}
	return doc, nil
}

func (s *SQLiteStore) ListPending(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path FROM documents WHERE status = 'pending' ORDER BY updated_at, path`)
	if err != nil {
		return nil, fmt.Errorf("list pending documents: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
