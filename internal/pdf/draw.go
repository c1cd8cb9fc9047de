package pdf

import (
	"fmt"
	"strings"
)

// rgb is a normalized color triple for content-stream emission.
type rgb struct {
	r, g, b float64
}

var (
	colorYellow = rgb{1, 0.92, 0.23} // highlight default
	colorRed    = rgb{1, 0, 0}       // underline default
	colorBlack  = rgb{0, 0, 0}
)

// parseHexColor accepts six hex digits with an optional leading #. Anything
// else falls back to the provided default so a bad color never blocks a write.
func parseHexColor(s string, fallback rgb) rgb {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return fallback
	}
	var r, g, b int
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return fallback
	}
	return rgb{float64(r) / 255, float64(g) / 255, float64(b) / 255}
}

// opHighlight fills the rectangle with the color at 30% opacity. The named
// ExtGState must be installed in the page resources by the caller.
func opHighlight(rect Rect, c rgb, gsName string) []byte {
	var b strings.Builder
	b.WriteString("q\n")
	fmt.Fprintf(&b, "/%s gs\n", gsName)
	fmt.Fprintf(&b, "%.4f %.4f %.4f rg\n", c.r, c.g, c.b)
	fmt.Fprintf(&b, "%.2f %.2f %.2f %.2f re\nf\n", rect.X, rect.Y, rect.Width, rect.Height)
	b.WriteString("Q\n")
	return []byte(b.String())
}

// opUnderline strokes a 1.5pt line along the bottom edge of the rectangle at
// 80% opacity.
func opUnderline(rect Rect, c rgb, gsName string) []byte {
	var b strings.Builder
	b.WriteString("q\n")
	fmt.Fprintf(&b, "/%s gs\n", gsName)
	fmt.Fprintf(&b, "%.4f %.4f %.4f RG\n", c.r, c.g, c.b)
	b.WriteString("1.5 w\n")
	fmt.Fprintf(&b, "%.2f %.2f m\n%.2f %.2f l\nS\n", rect.X, rect.Y, rect.X+rect.Width, rect.Y)
	b.WriteString("Q\n")
	return []byte(b.String())
}

// opText draws text with the built-in Helvetica resource. The baseline sits
// inside the rectangle, vertically centered for single-line content.
func opText(rect Rect, text string, size float64, c rgb, fontName string) []byte {
	// Approximate baseline so the glyph box is vertically centered. Cap
	// height is roughly 70% of the font size for Helvetica.
	baseline := rect.Y + (rect.Height-size*0.7)/2
	if baseline < rect.Y {
		baseline = rect.Y
	}

	var b strings.Builder
	b.WriteString("q\nBT\n")
	fmt.Fprintf(&b, "/%s %.2f Tf\n", fontName, size)
	fmt.Fprintf(&b, "%.4f %.4f %.4f rg\n", c.r, c.g, c.b)
	fmt.Fprintf(&b, "%.2f %.2f Td\n", rect.X+2, baseline)
	fmt.Fprintf(&b, "(%s) Tj\n", escapeString(text))
	b.WriteString("ET\nQ\n")
	return []byte(b.String())
}

// noteFontSize caps annotation text at 12pt, shrinking to fit short rects.
func noteFontSize(rect Rect) float64 {
	size := 12.0
	if rect.Height < size {
		size = rect.Height
	}
	if size < 1 {
		size = 1
	}
	return size
}

// fieldFontSize caps form-fill text at 11pt or three quarters of the rect
// height, whichever is smaller.
func fieldFontSize(rect Rect) float64 {
	size := 11.0
	if h := rect.Height * 0.75; h < size {
		size = h
	}
	if size < 1 {
		size = 1
	}
	return size
}

// escapeString makes text safe inside a literal string: backslash, parens and
// the common control characters.
func escapeString(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '(':
			b.WriteString(`\(`)
		case ')':
			b.WriteString(`\)`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\%03o`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}
