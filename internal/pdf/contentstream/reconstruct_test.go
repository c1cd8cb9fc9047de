package contentstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconstructSingleLine(t *testing.T) {
	text := ExtractText([]byte("BT (Hello ) Tj (World) Tj ET"))
	assert.Equal(t, "Hello World", text)
}

func TestReconstructLineBreaks(t *testing.T) {
	t.Run("TStar", func(t *testing.T) {
		text := ExtractText([]byte("BT (first) Tj T* (second) Tj ET"))
		assert.Equal(t, "first\nsecond", text)
	})

	t.Run("VerticalTd", func(t *testing.T) {
		text := ExtractText([]byte("BT (first) Tj 0 -14 Td (second) Tj ET"))
		assert.Equal(t, "first\nsecond", text)
	})

	t.Run("HorizontalTdDoesNotBreak", func(t *testing.T) {
		text := ExtractText([]byte("BT (left) Tj 200 0 Td ( right) Tj ET"))
		assert.Equal(t, "left right", text)
	})

	t.Run("TextBlockBoundary", func(t *testing.T) {
		text := ExtractText([]byte("BT (block one) Tj ET BT (block two) Tj ET"))
		assert.Equal(t, "block one\nblock two", text)
	})
}

func TestReconstructSortsByOffset(t *testing.T) {
	// Operators fed out of order are restored to document order.
	ops := []Operator{
		{Offset: 40, Kind: KindShowText, Text: "second"},
		{Offset: 10, Kind: KindShowText, Text: "first"},
		{Offset: 30, Kind: KindNewLine},
	}
	assert.Equal(t, "first\nsecond", Reconstruct(ops))
}

func TestReconstructTrimsLines(t *testing.T) {
	text := ExtractText([]byte("BT (  padded  ) Tj T* (next) Tj ET"))
	assert.Equal(t, "padded\nnext", text)
}

func TestReconstructEmptyStream(t *testing.T) {
	assert.Equal(t, "", ExtractText(nil))
	assert.Equal(t, "", ExtractText([]byte("q Q")))
}

func TestReconstructIdempotent(t *testing.T) {
	stream := []byte("BT (a) Tj T* (b) Tj 0 -12 Td (c) Tj ET")
	assert.Equal(t, ExtractText(stream), ExtractText(stream))
}
