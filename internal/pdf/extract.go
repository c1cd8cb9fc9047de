package pdf

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/Laksmack/kenaz-sub003/internal/pdf/contentstream"
)

// extractText composes the content-stream decoder and text reconstructor over
// the requested page window. The window is 1-based inclusive and clamped to
// the document bounds; when the requested end exceeds the document length the
// output is annotated with how many pages were shown.
func extractText(absPath string, pr *PageRange) (string, error) {
	f, r, err := pdf.Open(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	total := r.NumPage()
	start, end := 1, total
	truncated := false
	if pr != nil {
		if pr.Start > start {
			start = pr.Start
		}
		if pr.End < end {
			end = pr.End
		}
		truncated = pr.End > total
	}

	var pages []string
	for n := start; n <= end; n++ {
		pages = append(pages, extractPage(r, n))
	}

	out := strings.Join(pages, "\n\n")
	if truncated && end >= start {
		out += fmt.Sprintf("\n\n[Showing pages %d-%d of %d total pages]", start, end, total)
	}
	return out, nil
}

// extractPage returns one page's banner plus reconstructed text. Malformed
// pages degrade to the banner with a no-text marker; extraction never raises.
func extractPage(r *pdf.Reader, pageNum int) (out string) {
	width, height := 612.0, 792.0 // US Letter fallback
	text := ""

	func() {
		defer func() {
			// The underlying reader panics on some malformed page trees;
			// treat that as an unextractable page rather than a failure.
			_ = recover()
		}()

		page := r.Page(pageNum)
		if page.V.IsNull() {
			return
		}
		if w, h, ok := pageDims(page); ok {
			width, height = w, h
		}
		text = contentstream.ExtractText(pageContent(page))
	}()

	banner := fmt.Sprintf("--- Page %d (%.0fx%.0f) ---", pageNum, width, height)
	if strings.TrimSpace(text) == "" {
		return banner + "\n[No extractable text]"
	}
	return banner + "\n" + text
}

// pageContent returns the page's raw content stream bytes, concatenating
// multi-part content arrays in order.
func pageContent(page pdf.Page) []byte {
	contents := page.V.Key("Contents")
	switch contents.Kind() {
	case pdf.Stream:
		return streamBytes(contents)
	case pdf.Array:
		var buf []byte
		for i := 0; i < contents.Len(); i++ {
			part := streamBytes(contents.Index(i))
			if len(buf) > 0 && len(part) > 0 {
				buf = append(buf, '\n')
			}
			buf = append(buf, part...)
		}
		return buf
	}
	return nil
}

func streamBytes(v pdf.Value) []byte {
	if v.Kind() != pdf.Stream {
		return nil
	}
	rc := v.Reader()
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		// Partial reads still feed the decoder; it tolerates truncation.
		return data
	}
	return data
}

// pageDims resolves the page's MediaBox, walking up the page tree for
// inherited boxes the way malformed-writer documents require.
func pageDims(page pdf.Page) (width, height float64, ok bool) {
	if w, h, ok := mediaBoxDims(page.V.Key("MediaBox")); ok {
		return w, h, true
	}

	current := page.V
	for i := 0; i < 10; i++ { // bounded walk, page trees can be cyclic when corrupt
		parent := current.Key("Parent")
		if parent.IsNull() {
			break
		}
		if w, h, ok := mediaBoxDims(parent.Key("MediaBox")); ok {
			return w, h, true
		}
		current = parent
	}
	return 0, 0, false
}

func mediaBoxDims(box pdf.Value) (width, height float64, ok bool) {
	if box.Kind() != pdf.Array || box.Len() != 4 {
		return 0, 0, false
	}
	llx := box.Index(0).Float64()
	lly := box.Index(1).Float64()
	urx := box.Index(2).Float64()
	ury := box.Index(3).Float64()
	if urx <= llx || ury <= lly {
		return 0, 0, false
	}
	return urx - llx, ury - lly, true
}
