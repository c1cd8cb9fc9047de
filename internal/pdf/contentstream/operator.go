// Package contentstream decodes the text-relevant subset of PDF page content
// streams and reconstructs reading-order text from the decoded operators.
//
// This is not a PDF interpreter. Only the operators needed for reading-order
// text recovery are recognized (Tj, TJ, T*, Td, TD, BT); everything else is
// skipped. Malformed input yields a best-effort partial result, never an error.
package contentstream

// Kind identifies a decoded operator variant.
type Kind int

const (
	// KindShowText carries a decoded string payload (Tj or TJ).
	KindShowText Kind = iota
	// KindNewLine marks an explicit line advance (T*, or Td/TD with a
	// vertical displacement magnitude above the line threshold).
	KindNewLine
	// KindBeginText marks the start of a text block (BT).
	KindBeginText
)

// Operator is a single decoded content-stream instruction in document order.
// Offset is the byte offset of the operator keyword within the stream buffer.
type Operator struct {
	Offset int
	Kind   Kind
	Text   string
}

// lineAdvanceThreshold is the vertical displacement, in user-space units,
// above which a Td/TD operator is treated as a line break.
const lineAdvanceThreshold = 1.0
