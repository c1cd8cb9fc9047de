package contentstream

import (
	"sort"
	"strings"
)

// Reconstruct converts a decoded operator sequence into plain text with
// heuristic line breaks. Operators are ordered by byte offset (their natural
// document order); every show-text appends to the current line, and every
// line-advance or text-block start flushes it. The heuristic deliberately
// over-triggers breaks: an extra blank line is harmless, while a missed break
// merges two semantic lines and degrades downstream field detection.
//
// Given a byte-identical operator sequence the output is identical.
func Reconstruct(ops []Operator) string {
	sorted := make([]Operator, len(ops))
	copy(sorted, ops)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	var out []string
	var line strings.Builder

	flush := func() {
		out = append(out, strings.TrimSpace(line.String()))
		line.Reset()
	}

	for _, op := range sorted {
		switch op.Kind {
		case KindShowText:
			line.WriteString(op.Text)
		case KindNewLine, KindBeginText:
			flush()
		}
	}
	if line.Len() > 0 {
		flush()
	}

	// Leading flushes from the first BT produce empty head lines; drop them
	// so a page never starts with synthetic blanks.
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	return strings.Join(out, "\n")
}

// ExtractText is the full single-page pipeline: decode the stream buffer,
// then reconstruct reading-order text.
func ExtractText(data []byte) string {
	return Reconstruct(Decode(data))
}
