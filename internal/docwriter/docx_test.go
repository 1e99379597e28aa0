package docwriter

import (
	"archive/zip"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readvision/readvision/internal/config"
)

func readDocumentXML(t *testing.T, path string) string {
	t.Helper()

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	names := make(map[string]bool, len(zr.File))
	for _, f := range zr.File {
		names[f.Name] = true
	}
	assert.True(t, names["[Content_Types].xml"])
	assert.True(t, names["_rels/.rels"])
	require.True(t, names["word/document.xml"])

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(data)
	}
	return ""
}

func TestDocxPath(t *testing.T) {
	assert.Equal(t, "out/book.docx", DocxPath("out/book.txt"))
	assert.Equal(t, "book.docx", DocxPath("book"))
}

func TestWritePagedDocumentRTL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.docx")
	w := New(config.DirectionRTL)

	err := w.WritePagedDocument(path, []string{"النص الأول", "النص الثاني"}, []int{1, 2})
	require.NoError(t, err)

	doc := readDocumentXML(t, path)

	assert.Contains(t, doc, "<w:bidi/>")
	assert.Contains(t, doc, `<w:jc w:val="right"/>`)
	assert.Contains(t, doc, ">Page 1<")
	assert.Contains(t, doc, ">Page 2<")
	assert.Contains(t, doc, "النص الأول")

	// Title page, then one break between the two content pages.
	assert.Equal(t, 2, strings.Count(doc, `<w:br w:type="page"/>`))
}

func TestWritePagedDocumentLTR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.docx")
	w := New(config.DirectionLTR)

	err := w.WritePagedDocument(path, []string{"hello world"}, []int{1})
	require.NoError(t, err)

	doc := readDocumentXML(t, path)

	assert.NotContains(t, doc, "<w:bidi/>")
	assert.Contains(t, doc, `<w:jc w:val="left"/>`)
	assert.Contains(t, doc, "hello world")
}

func TestWritePagedDocumentTitlePage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.docx")
	w := New(config.DirectionLTR)

	require.NoError(t, w.WritePagedDocument(path, []string{"abc", "de"}, []int{1, 2}))

	doc := readDocumentXML(t, path)

	assert.Contains(t, doc, "OCR Extracted Text")
	assert.Contains(t, doc, "Source: report")
	assert.Contains(t, doc, "Total pages: 2")
	assert.Contains(t, doc, "Total characters: 5")
	assert.Contains(t, doc, "Text direction: LTR")
}

func TestWritePagedDocumentUsesBackendPageNumbers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.docx")
	w := New(config.DirectionLTR)

	require.NoError(t, w.WritePagedDocument(path, []string{"a", "b"}, []int{4, 7}))

	doc := readDocumentXML(t, path)
	assert.Contains(t, doc, ">Page 4<")
	assert.Contains(t, doc, ">Page 7<")
	assert.NotContains(t, doc, ">Page 1<")
}

func TestWritePagedDocumentSplitsParagraphsBeforeCleaning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.docx")
	w := New(config.DirectionLTR)

	// The cleaner collapses newlines, so paragraph boundaries must be taken
	// from the raw page text before each paragraph is cleaned.
	require.NoError(t, w.WritePagedDocument(path, []string{"first  para\n\nsecond   para"}, []int{1}))

	doc := readDocumentXML(t, path)
	assert.Contains(t, doc, ">first para<")
	assert.Contains(t, doc, ">second para<")
}

func TestWritePagedDocumentEscapesXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.docx")
	w := New(config.DirectionLTR)

	require.NoError(t, w.WritePagedDocument(path, []string{"a < b & c"}, []int{1}))

	doc := readDocumentXML(t, path)
	assert.Contains(t, doc, "a &lt; b &amp; c")
}

func TestWriteLegacyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.docx")
	w := New(config.DirectionLTR)

	err := w.WriteLegacyDocument(path, "some flat text without page boundaries", 10)
	require.NoError(t, err)

	doc := readDocumentXML(t, path)
	assert.Contains(t, doc, ">Page 1<")
	assert.Contains(t, doc, "some flat text")
}
