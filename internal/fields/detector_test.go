package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectCompanyVariants(t *testing.T) {
	text := "--- Page 1 (612x792) ---\n" +
		"Between [Company Name]\n" +
		"and [Company]"

	got := Detect(text)
	require.Len(t, got, 2)

	assert.Equal(t, TypeCompany, got[0].Type)
	assert.Equal(t, "Company Name", got[0].Label)
	assert.Equal(t, 0, got[0].Line)

	assert.Equal(t, TypeCompany, got[1].Type)
	assert.Equal(t, "Company", got[1].Label)
	assert.Equal(t, 1, got[1].Line)

	assert.Less(t, got[0].ID, got[1].ID)
}

func TestDetectTypedMarkers(t *testing.T) {
	got := Detect("[Address]\n[Date]\n[Name]\n[Title]\n[Signature]")
	require.Len(t, got, 5)

	assert.Equal(t, TypeAddress, got[0].Type)
	assert.Equal(t, TypeDate, got[1].Type)
	assert.Equal(t, TypeName, got[2].Type)
	assert.Equal(t, TypeTitle, got[3].Type)
	assert.Equal(t, TypeSignature, got[4].Type)
}

func TestDetectGenericMarkers(t *testing.T) {
	t.Run("UnderscoreRun", func(t *testing.T) {
		got := Detect("Signed: __________")
		require.Len(t, got, 1)
		assert.Equal(t, TypeGeneric, got[0].Type)
		assert.Equal(t, "Blank", got[0].Label)
	})

	t.Run("ShortUnderscoreRunIgnored", func(t *testing.T) {
		assert.Empty(t, Detect("foo_bar"))
	})

	t.Run("EmptyBrackets", func(t *testing.T) {
		got := Detect("Agree? [ ]")
		require.Len(t, got, 1)
		assert.Equal(t, TypeGeneric, got[0].Type)
	})

	t.Run("BracketedUnderscores", func(t *testing.T) {
		got := Detect("Amount: [____]")
		require.Len(t, got, 1)
		assert.Equal(t, TypeGeneric, got[0].Type)
	})

	t.Run("InsertCatchAll", func(t *testing.T) {
		got := Detect("[Insert governing law]")
		require.Len(t, got, 1)
		assert.Equal(t, TypeGeneric, got[0].Type)
		assert.Equal(t, "governing law", got[0].Label)
	})
}

func TestDetectMultipleHitsPerLine(t *testing.T) {
	got := Detect("[Name], [Title] at [Company]")
	require.Len(t, got, 3)

	// Table order within the line, not text position.
	assert.Equal(t, TypeCompany, got[0].Type)
	assert.Equal(t, TypeName, got[1].Type)
	assert.Equal(t, TypeTitle, got[2].Type)
	assert.Equal(t, []int{1, 2, 3}, []int{got[0].ID, got[1].ID, got[2].ID})
}

func TestDetectTableOrderBeatsTextPosition(t *testing.T) {
	// An underscore run before a typed marker must not jump the queue.
	got := Detect("______ [Date]")
	require.Len(t, got, 2)

	assert.Equal(t, TypeDate, got[0].Type)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, TypeGeneric, got[1].Type)
	assert.Equal(t, "Blank", got[1].Label)
	assert.Equal(t, 2, got[1].ID)
}

func TestDetectSpecificBeatsCatchAll(t *testing.T) {
	// [Date] must resolve as a date field, not via the blank patterns.
	got := Detect("[Date] and [Insert Date of Signing]")
	require.Len(t, got, 2)
	assert.Equal(t, TypeDate, got[0].Type)
	assert.Equal(t, TypeGeneric, got[1].Type)
	assert.Equal(t, "Date of Signing", got[1].Label)
}

func TestDetectPageAndLineIndexes(t *testing.T) {
	text := "--- Page 1 (612x792) ---\n" +
		"intro\n" +
		"[Name]\n" +
		"--- Page 2 (612x792) ---\n" +
		"[Date]"

	got := Detect(text)
	require.Len(t, got, 2)

	assert.Equal(t, 0, got[0].Page)
	assert.Equal(t, 1, got[0].Line)
	assert.Equal(t, 1, got[1].Page)
	assert.Equal(t, 0, got[1].Line)
}

func TestDetectOCRBanner(t *testing.T) {
	got := Detect("--- Page 4 ---\n[Signature]")
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Page)
}

func TestDetectIsPure(t *testing.T) {
	text := "--- Page 1 (612x792) ---\n[Company Name]\n______"
	assert.Equal(t, Detect(text), Detect(text))
	assert.Empty(t, Detect(""))
}
