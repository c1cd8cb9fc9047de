package cabinet

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Laksmack/kenaz-sub003/internal/ocr"
	"github.com/Laksmack/kenaz-sub003/internal/pdf"
	"github.com/Laksmack/kenaz-sub003/internal/vault"
)

type fakeReader struct {
	text  string
	pages int
	err   error
}

func (f *fakeReader) ExtractText(string, *pdf.PageRange) (string, error) {
	return f.text, f.err
}

func (f *fakeReader) GetInfo(string) (*pdf.Info, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &pdf.Info{Pages: f.pages}, nil
}

type fakeRenderer struct {
	pages    int
	rendered int
}

func (f *fakeRenderer) PageCount(string) (int, error) { return f.pages, nil }

func (f *fakeRenderer) RenderPNG(string, int) ([]byte, error) {
	f.rendered++
	return []byte("png"), nil
}

type fakeEngine struct {
	mu       sync.Mutex
	pageText string
	fileText string
	err      error
	calls    int
}

func (f *fakeEngine) RecognizeImage(context.Context, []byte, string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.pageText, f.err
}

func (f *fakeEngine) RecognizeFile(context.Context, string, string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.fileText, f.err
}

func newTestExtractor(t *testing.T, reader DocumentReader, renderer PageRenderer,
	engine ocr.Engine, caps ocr.Capabilities) (*Extractor, string) {
	t.Helper()
	root := t.TempDir()
	resolver, err := vault.NewResolver(root)
	require.NoError(t, err)
	ex := NewExtractor(resolver, reader, renderer, engine, DefaultDocxConverter{}, caps, "eng", 0, nil)
	return ex, root
}

func touch(t *testing.T, root, rel string, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o640))
}

func TestExtractPDFOCRThreshold(t *testing.T) {
	t.Run("49CharsTriggersFallback", func(t *testing.T) {
		engine := &fakeEngine{pageText: strings.Repeat("o", 200)}
		renderer := &fakeRenderer{pages: 1}
		ex, root := newTestExtractor(t, &fakeReader{text: strings.Repeat("d", 49), pages: 1},
			renderer, engine, ocr.Capabilities{OCR: true, DOCX: true})
		touch(t, root, "scan.pdf", "%PDF")

		text, _, err := ex.Extract(context.Background(), "scan.pdf")
		require.NoError(t, err)
		assert.Positive(t, engine.calls, "OCR must run below the signal threshold")
		assert.Contains(t, text, "--- Page 1 ---")
	})

	t.Run("50CharsDoesNot", func(t *testing.T) {
		engine := &fakeEngine{pageText: strings.Repeat("o", 200)}
		direct := strings.Repeat("d", 50)
		ex, root := newTestExtractor(t, &fakeReader{text: direct, pages: 1},
			&fakeRenderer{pages: 1}, engine, ocr.Capabilities{OCR: true, DOCX: true})
		touch(t, root, "doc.pdf", "%PDF")

		text, pages, err := ex.Extract(context.Background(), "doc.pdf")
		require.NoError(t, err)
		assert.Zero(t, engine.calls)
		assert.Equal(t, direct, text)
		assert.Equal(t, 1, pages)
	})
}

func TestExtractPDFScannedBannersAreNotSignal(t *testing.T) {
	// A scanned document yields only page banners and no-text markers, which
	// clear 50 characters on two pages alone. That synthetic framing must not
	// suppress the OCR fallback or win the length comparison.
	direct := "--- Page 1 (612x792) ---\n[No extractable text]\n\n" +
		"--- Page 2 (612x792) ---\n[No extractable text]"
	engine := &fakeEngine{pageText: strings.Repeat("w", 120)}
	renderer := &fakeRenderer{pages: 2}
	ex, root := newTestExtractor(t, &fakeReader{text: direct, pages: 2},
		renderer, engine, ocr.Capabilities{OCR: true, DOCX: true})
	touch(t, root, "scanned.pdf", "%PDF")

	text, pages, err := ex.Extract(context.Background(), "scanned.pdf")
	require.NoError(t, err)
	assert.Positive(t, engine.calls, "OCR must run on a banner-only extraction")
	assert.Contains(t, text, strings.Repeat("w", 120))
	assert.NotContains(t, text, "[No extractable text]")
	assert.Equal(t, 2, pages)
}

func TestExtractPDFLongerWins(t *testing.T) {
	// Direct yields 10 chars, OCR recognizes 5: direct stays, banners
	// notwithstanding.
	engine := &fakeEngine{pageText: "abcde"}
	ex, root := newTestExtractor(t, &fakeReader{text: "ABCDEFGHIJ", pages: 1},
		&fakeRenderer{pages: 1}, engine, ocr.Capabilities{OCR: true, DOCX: true})
	touch(t, root, "thin.pdf", "%PDF")

	text, _, err := ex.Extract(context.Background(), "thin.pdf")
	require.NoError(t, err)
	assert.Equal(t, "ABCDEFGHIJ", text)
	assert.Positive(t, engine.calls, "fallback ran but lost the comparison")
}

func TestExtractPDFOCRPageLimit(t *testing.T) {
	engine := &fakeEngine{pageText: strings.Repeat("o", 100)}
	renderer := &fakeRenderer{pages: 35}
	ex, root := newTestExtractor(t, &fakeReader{text: "", pages: 35},
		renderer, engine, ocr.Capabilities{OCR: true, DOCX: true})
	touch(t, root, "book.pdf", "%PDF")

	text, pages, err := ex.Extract(context.Background(), "book.pdf")
	require.NoError(t, err)
	assert.Equal(t, 20, renderer.rendered, "only the first 20 pages are rendered")
	assert.Equal(t, 35, pages)
	assert.Contains(t, text, "--- Page 20 ---")
	assert.NotContains(t, text, "--- Page 21 ---")
}

func TestExtractPDFWithoutOCRKeepsDirect(t *testing.T) {
	ex, root := newTestExtractor(t, &fakeReader{text: "short", pages: 1},
		nil, nil, ocr.Capabilities{OCR: false, DOCX: true})
	touch(t, root, "doc.pdf", "%PDF")

	text, _, err := ex.Extract(context.Background(), "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "short", text)
}

func TestExtractPDFUnreadableWithoutOCRFails(t *testing.T) {
	ex, root := newTestExtractor(t, &fakeReader{err: errors.New("corrupt")},
		nil, nil, ocr.Capabilities{OCR: false, DOCX: true})
	touch(t, root, "doc.pdf", "junk")

	_, _, err := ex.Extract(context.Background(), "doc.pdf")
	assert.ErrorIs(t, err, ocr.ErrUnavailable)
}

func TestExtractImage(t *testing.T) {
	t.Run("RunsOCRDirectly", func(t *testing.T) {
		engine := &fakeEngine{fileText: "recognized words"}
		ex, root := newTestExtractor(t, &fakeReader{}, nil, engine, ocr.Capabilities{OCR: true, DOCX: true})
		touch(t, root, "scan.png", "img")

		text, pages, err := ex.Extract(context.Background(), "scan.png")
		require.NoError(t, err)
		assert.Equal(t, "recognized words", text)
		assert.Zero(t, pages)
	})

	t.Run("NoOCRCapabilityFails", func(t *testing.T) {
		ex, root := newTestExtractor(t, &fakeReader{}, nil, nil, ocr.Capabilities{DOCX: true})
		touch(t, root, "scan.png", "img")

		_, _, err := ex.Extract(context.Background(), "scan.png")
		assert.ErrorIs(t, err, ocr.ErrUnavailable)
	})
}

func TestExtractPlainText(t *testing.T) {
	ex, root := newTestExtractor(t, &fakeReader{}, nil, nil, ocr.Capabilities{DOCX: true})

	t.Run("ReadDirectly", func(t *testing.T) {
		touch(t, root, "notes.txt", "hello notes")
		text, _, err := ex.Extract(context.Background(), "notes.txt")
		require.NoError(t, err)
		assert.Equal(t, "hello notes", text)
	})

	t.Run("TruncatedAtCap", func(t *testing.T) {
		touch(t, root, "huge.txt", strings.Repeat("x", charCap+500))
		text, _, err := ex.Extract(context.Background(), "huge.txt")
		require.NoError(t, err)
		assert.Len(t, text, charCap)
	})
}

func TestExtractDocx(t *testing.T) {
	ex, root := newTestExtractor(t, &fakeReader{}, nil, nil, ocr.Capabilities{DOCX: true})

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(`<w:document xmlns:w="ns"><w:body><w:p><w:r><w:t>docx body text</w:t></w:r></w:p></w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	touch(t, root, "report.docx", buf.String())

	text, _, err := ex.Extract(context.Background(), "report.docx")
	require.NoError(t, err)
	assert.Contains(t, text, "docx body text")
}

func TestExtractEnforcesFileSizeLimit(t *testing.T) {
	root := t.TempDir()
	resolver, err := vault.NewResolver(root)
	require.NoError(t, err)
	ex := NewExtractor(resolver, &fakeReader{}, nil, nil, DefaultDocxConverter{},
		ocr.Capabilities{DOCX: true}, "eng", 16, nil)

	touch(t, root, "small.txt", "fits")
	touch(t, root, "big.txt", strings.Repeat("x", 64))

	_, _, err = ex.Extract(context.Background(), "small.txt")
	require.NoError(t, err)

	_, _, err = ex.Extract(context.Background(), "big.txt")
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestExtractRejectsUnsupported(t *testing.T) {
	ex, root := newTestExtractor(t, &fakeReader{}, nil, nil, ocr.Capabilities{DOCX: true})
	touch(t, root, "movie.mp4", "data")

	_, _, err := ex.Extract(context.Background(), "movie.mp4")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}
