package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslatedPath(t *testing.T) {
	testCases := []struct {
		name string
		path string
		lang string
		want string
	}{
		{name: "text file", path: "out/book.txt", lang: "en", want: "out/book_translated_en.txt"},
		{name: "docx file", path: "book.docx", lang: "fr", want: "book_translated_fr.docx"},
		{name: "no extension", path: "book", lang: "en", want: "book_translated_en"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TranslatedPath(tc.path, tc.lang))
		})
	}
}

func TestWriteTextJoinsWithPageBreaks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")

	err := WriteText(path, []string{"page one", "page two", "page three"}, "utf-8")
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	got := string(raw)
	assert.Equal(t, "page one"+PageBreakDelimiter+"page two"+PageBreakDelimiter+"page three", got)
	assert.Equal(t, 2, strings.Count(got, "--- PAGE BREAK ---"))
}

func TestWriteTextSinglePageHasNoDelimiter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")

	require.NoError(t, WriteText(path, []string{"only page"}, "utf-8"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "only page", string(raw))
}

func TestWriteTextRejectsUnknownEncoding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	err := WriteText(path, []string{"x"}, "no-such-encoding")
	assert.Error(t, err)
}

func TestReadTextSampleRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	pages := []string{"مرحبا بالعالم", "second page"}

	require.NoError(t, WriteText(path, pages, "utf-8"))

	sample, err := ReadTextSample(path, "utf-8", 500)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(pages, PageBreakDelimiter), sample)
}

func TestReadTextSampleTruncatesAtRuneBoundary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, WriteText(path, []string{"مرحبا بالعالم"}, "utf-8"))

	sample, err := ReadTextSample(path, "utf-8", 5)
	require.NoError(t, err)
	assert.Equal(t, "مرحبا", sample)
}

func TestWriteTextNonUTF8Encoding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")

	require.NoError(t, WriteText(path, []string{"café"}, "ISO-8859-1"))

	sample, err := ReadTextSample(path, "ISO-8859-1", 100)
	require.NoError(t, err)
	assert.Equal(t, "café", sample)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{'c', 'a', 'f', 0xE9}, raw)
}
