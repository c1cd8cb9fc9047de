package cabinet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		path string
		want Kind
	}{
		{"cabinet/contract.pdf", KindPDF},
		{"cabinet/SCAN.PDF", KindPDF},
		{"photo.jpg", KindImage},
		{"photo.jpeg", KindImage},
		{"scan.tiff", KindImage},
		{"scan.tif", KindImage},
		{"shot.png", KindImage},
		{"report.docx", KindDocx},
		{"legacy.doc", KindDocx},
		{"notes.txt", KindText},
		{"readme.md", KindText},
		{"data.csv", KindText},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			got, err := Classify(tc.path)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClassifyRejectsUnknownTypes(t *testing.T) {
	for _, path := range []string{"movie.mp4", "archive.zip", "binary.exe", "noextension"} {
		_, err := Classify(path)
		assert.ErrorIs(t, err, ErrUnsupportedType, path)
	}
}
